// Package trace maintains the bidirectional traceability index between
// derived artifacts and the exact code locations backing them. Artifacts
// whose underlying code changes are marked outdated, never silently
// deleted or healed; only explicit revalidation returns them to fresh.
package trace

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"codelens/internal/model"
)

// fileStat is the index's view of one file: its length for range checks
// and its content hash for staleness detection.
type fileStat struct {
	LineCount int
	Hash      string
}

// artifactEntry is the internal record for one registered artifact.
type artifactEntry struct {
	ID           string
	Evidence     []model.CodeEvidence
	Outdated     bool
	StaleReason  string
	RegisteredAt time.Time
	// Hashes holds last_validated_content_hash per referenced file.
	Hashes map[string]string
}

// Index is the traceability index. Single writer per session, concurrent
// readers permitted.
type Index struct {
	mu        sync.RWMutex
	artifacts map[string]*artifactEntry
	reverse   map[string][]string // file path → artifact IDs
	files     map[string]fileStat
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		artifacts: make(map[string]*artifactEntry),
		reverse:   make(map[string][]string),
		files:     make(map[string]fileStat),
	}
}

// NewArtifactID returns a fresh artifact identifier.
func NewArtifactID() string {
	return uuid.NewString()
}

// SetFile records a file's current line count and content hash. Evidence
// registered later is validated against these facts.
func (ix *Index) SetFile(path string, lineCount int, hash string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.files[path] = fileStat{LineCount: lineCount, Hash: hash}
}

// Register inserts an artifact with its evidence. It fails with
// ErrEvidenceMissing for empty evidence and ErrEvidenceOutOfRange when any
// range exceeds the referenced file's recorded length. Forward and reverse
// mappings are inserted atomically: a failed registration changes nothing.
func (ix *Index) Register(artifactID string, evidence []model.CodeEvidence) error {
	if len(evidence) == 0 {
		return fmt.Errorf("%w: artifact %s", model.ErrEvidenceMissing, artifactID)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	// Validate everything before mutating anything.
	hashes := make(map[string]string)
	for _, ev := range evidence {
		stat, ok := ix.files[ev.FilePath]
		if !ok {
			return fmt.Errorf("%w: artifact %s references unknown file %s", model.ErrEvidenceOutOfRange, artifactID, ev.FilePath)
		}
		if ev.StartLine < 1 || ev.EndLine < ev.StartLine || ev.EndLine > stat.LineCount {
			return fmt.Errorf("%w: artifact %s, %s lines %d-%d (file has %d lines)",
				model.ErrEvidenceOutOfRange, artifactID, ev.FilePath, ev.StartLine, ev.EndLine, stat.LineCount)
		}
		hashes[ev.FilePath] = stat.Hash
	}

	entry := &artifactEntry{
		ID:           artifactID,
		Evidence:     append([]model.CodeEvidence(nil), evidence...),
		RegisteredAt: time.Now().UTC(),
		Hashes:       hashes,
	}
	ix.artifacts[artifactID] = entry
	for path := range hashes {
		ix.reverse[path] = appendUnique(ix.reverse[path], artifactID)
	}
	return nil
}

// Trace returns the evidence registered for an artifact.
func (ix *Index) Trace(artifactID string) ([]model.CodeEvidence, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	entry, ok := ix.artifacts[artifactID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrArtifactNotFound, artifactID)
	}
	return append([]model.CodeEvidence(nil), entry.Evidence...), nil
}

// ArtifactsFor is the reverse lookup: artifacts whose evidence overlaps the
// given line range of the file. Results are sorted.
func (ix *Index) ArtifactsFor(file string, startLine, endLine int) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []string
	for _, id := range ix.reverse[file] {
		entry := ix.artifacts[id]
		for _, ev := range entry.Evidence {
			if ev.Overlaps(file, startLine, endLine) {
				out = append(out, id)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// MarkOutdated records a file's new content hash and flips outdated on
// exactly the artifacts whose evidence references that file, when the hash
// differs from the one recorded at registration. Artifacts referencing only
// other files are untouched. Returns how many artifacts were invalidated.
func (ix *Index) MarkOutdated(file, newHash string) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	stat := ix.files[file]
	stat.Hash = newHash
	ix.files[file] = stat

	flipped := 0
	for _, id := range ix.reverse[file] {
		entry := ix.artifacts[id]
		registered, ok := entry.Hashes[file]
		if !ok || registered == newHash {
			continue
		}
		if !entry.Outdated {
			flipped++
		}
		entry.Outdated = true
		entry.StaleReason = fmt.Sprintf("content of %s changed after registration", file)
	}
	return flipped
}

// Validate reports whether the artifact is fresh: not outdated, and every
// referenced range still within the file's current bounds.
func (ix *Index) Validate(artifactID string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	entry, ok := ix.artifacts[artifactID]
	if !ok || entry.Outdated {
		return false
	}
	for _, ev := range entry.Evidence {
		stat, ok := ix.files[ev.FilePath]
		if !ok || ev.EndLine > stat.LineCount {
			return false
		}
	}
	return true
}

// Revalidate is the only transition from Outdated back to Fresh: the caller
// asserts the artifact was re-checked (or regenerated) against the current
// code. It fails if any evidence range no longer fits the current file
// bounds; on success the per-file hashes are re-recorded.
func (ix *Index) Revalidate(artifactID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	entry, ok := ix.artifacts[artifactID]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrArtifactNotFound, artifactID)
	}
	for _, ev := range entry.Evidence {
		stat, ok := ix.files[ev.FilePath]
		if !ok || ev.EndLine > stat.LineCount {
			return fmt.Errorf("%w: artifact %s, %s lines %d-%d no longer valid",
				model.ErrEvidenceOutOfRange, artifactID, ev.FilePath, ev.StartLine, ev.EndLine)
		}
	}
	for path := range entry.Hashes {
		entry.Hashes[path] = ix.files[path].Hash
	}
	entry.Outdated = false
	entry.StaleReason = ""
	return nil
}

// Outdated reports the artifact's outdated flag; unknown artifacts are
// reported as outdated.
func (ix *Index) Outdated(artifactID string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	entry, ok := ix.artifacts[artifactID]
	if !ok {
		return true
	}
	return entry.Outdated
}

// IDs returns all registered artifact IDs, sorted.
func (ix *Index) IDs() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]string, 0, len(ix.artifacts))
	for id := range ix.artifacts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
