package model

import (
	"fmt"
	"sort"
)

// FileRecord holds the immutable metadata and content of one repository file.
// Records are created once per analysis run and never mutated afterwards.
type FileRecord struct {
	Path        string `json:"path"`      // Repo-relative path, unique key.
	Name        string `json:"name"`      // Base filename.
	Extension   string `json:"extension"` // Lowercased extension including the dot.
	Size        int64  `json:"size"`      // Size in bytes.
	LineCount   int    `json:"line_count"`
	Language    string `json:"language"`
	ContentHash string `json:"content_hash"` // SHA-256 hex digest.
	Content     string `json:"-"`            // Full file content; excluded from serialized output.
}

// RepositoryTree maps repo-relative paths to their FileRecords. It is the
// engine's view of a repository snapshot, supplied by an acquisition
// collaborator (local read, clone, unzip).
type RepositoryTree struct {
	Root  string                 `json:"root"`
	Files map[string]*FileRecord `json:"files"`
}

// SourceFiles returns every record in deterministic path order. Language
// filtering happens downstream, in the selector's exclusion pass.
func (t *RepositoryTree) SourceFiles() []*FileRecord {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]*FileRecord, 0, len(paths))
	for _, p := range paths {
		out = append(out, t.Files[p])
	}
	return out
}

// CodeEvidence is an exact (file, line-range) pointer substantiating a
// concept or artifact. StartLine and EndLine are 1-based and inclusive.
type CodeEvidence struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// NewCodeEvidence validates and constructs a CodeEvidence. fileLines is the
// referenced file's current line count; the range must lie within it.
func NewCodeEvidence(filePath string, start, end, fileLines int) (CodeEvidence, error) {
	if start < 1 || end < start {
		return CodeEvidence{}, fmt.Errorf("%w: %s lines %d-%d", ErrEvidenceOutOfRange, filePath, start, end)
	}
	if end > fileLines {
		return CodeEvidence{}, fmt.Errorf("%w: %s lines %d-%d exceed file length %d", ErrEvidenceOutOfRange, filePath, start, end, fileLines)
	}
	return CodeEvidence{FilePath: filePath, StartLine: start, EndLine: end}, nil
}

// Overlaps reports whether the evidence intersects the given line range in
// the same file.
func (e CodeEvidence) Overlaps(filePath string, start, end int) bool {
	return e.FilePath == filePath && e.StartLine <= end && start <= e.EndLine
}

// ConceptCategory classifies an extracted Concept.
type ConceptCategory string

const (
	CategoryArchitecture  ConceptCategory = "architecture"
	CategoryPattern       ConceptCategory = "pattern"
	CategoryDataStructure ConceptCategory = "data_structure"
	CategoryAlgorithm     ConceptCategory = "algorithm"
	CategoryFunction      ConceptCategory = "function"
	CategoryClass         ConceptCategory = "class"
)

// Concept is a categorized, evidence-backed unit of extracted knowledge.
type Concept struct {
	Name        string          `json:"name"`
	Category    ConceptCategory `json:"category"`
	Description string          `json:"description"`
	Evidence    []CodeEvidence  `json:"evidence"`
}

// NewConcept constructs a Concept, rejecting it at creation time if no
// evidence is supplied. Evidence-less concepts are never emitted and then
// filtered; they simply cannot be built.
func NewConcept(name string, category ConceptCategory, description string, evidence []CodeEvidence) (*Concept, error) {
	if len(evidence) == 0 {
		return nil, fmt.Errorf("%w: concept %q", ErrEvidenceMissing, name)
	}
	return &Concept{
		Name:        name,
		Category:    category,
		Description: description,
		Evidence:    evidence,
	}, nil
}

