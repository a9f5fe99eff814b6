package model

// FunctionInfo describes a single function or method with its line range.
type FunctionInfo struct {
	Name       string   `json:"name"`
	Signature  string   `json:"signature,omitempty"`
	Parameters []string `json:"parameters,omitempty"`
	Receiver   string   `json:"receiver,omitempty"` // Owning type for methods, if any.
	StartLine  int      `json:"start_line"`
	EndLine    int      `json:"end_line"`
}

// ClassInfo describes a class, struct, or interface with its line range.
type ClassInfo struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind,omitempty"` // class, struct, interface.
	Extends    string   `json:"extends,omitempty"`
	Implements []string `json:"implements,omitempty"`
	StartLine  int      `json:"start_line"`
	EndLine    int      `json:"end_line"`
}

// ImportInfo describes one import/require statement.
type ImportInfo struct {
	Target string `json:"target"` // Module path or file reference as written.
	Line   int    `json:"line"`
}

// FileAnalysis is the Structure Extractor's output for one file: the
// functions, classes, and imports it contains, each carrying line ranges.
// One file's extraction failure never blocks the others.
type FileAnalysis struct {
	Path      string         `json:"path"`
	Language  string         `json:"language"`
	Functions []FunctionInfo `json:"functions,omitempty"`
	Classes   []ClassInfo    `json:"classes,omitempty"`
	Imports   []ImportInfo   `json:"imports,omitempty"`
}

// RelationshipKind labels a directed, evidenced link between two files.
type RelationshipKind string

const (
	RelImports    RelationshipKind = "imports"
	RelCalls      RelationshipKind = "calls"
	RelExtends    RelationshipKind = "extends"
	RelImplements RelationshipKind = "implements"
	RelUses       RelationshipKind = "uses"
)

// Relationship is a directed link between two files with the specific line
// where it was observed. The same (source, target, kind) may appear more
// than once with distinct evidence lines.
type Relationship struct {
	Source       string           `json:"source"`
	Target       string           `json:"target"`
	Kind         RelationshipKind `json:"kind"`
	Symbol       string           `json:"symbol,omitempty"` // Referenced symbol, when known.
	EvidenceLine int              `json:"evidence_line"`
}

// FlowHop is one step of a traced value: where the named symbol appears next.
type FlowHop struct {
	FilePath string `json:"file_path"`
	Symbol   string `json:"symbol"`
	Line     int    `json:"line"`
}

// DataFlow is an ordered sequence of hops showing a named value moving
// across call edges.
type DataFlow struct {
	Name string    `json:"name"`
	Hops []FlowHop `json:"hops"`
}

// PathStep is one (file, function) step of an execution path.
type PathStep struct {
	FilePath string `json:"file_path"`
	Function string `json:"function"`
}

// ExecutionPath is a bounded-depth, cycle-truncated call sequence starting
// from a detected entry point.
type ExecutionPath struct {
	Entry string     `json:"entry"` // Entry file path.
	Steps []PathStep `json:"steps"`
}

// AnalysisSummary aggregates the locally-recovered failures of one analyzer
// run: per-file skips and per-edge drops are never fatal, only counted.
type AnalysisSummary struct {
	FilesAnalyzed  int      `json:"files_analyzed"`
	FilesSkipped   int      `json:"files_skipped"`
	SkippedPaths   []string `json:"skipped_paths,omitempty"`
	EdgesDropped   int      `json:"edges_dropped"`
	EnrichmentUsed bool     `json:"enrichment_used"`
}

// MultiFileAnalysis is the analyzer's complete output for one selection.
type MultiFileAnalysis struct {
	Files          map[string]*FileAnalysis `json:"files"`
	Relationships  []Relationship           `json:"relationships"`
	DataFlows      []DataFlow               `json:"data_flows,omitempty"`
	ExecutionPaths []ExecutionPath          `json:"execution_paths,omitempty"`
	Concepts       []*Concept               `json:"concepts,omitempty"`
	Summary        AnalysisSummary          `json:"summary"`
}
