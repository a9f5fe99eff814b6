package model

import (
	"errors"
	"testing"
)

func TestNewCodeEvidence(t *testing.T) {
	ev, err := NewCodeEvidence("src/app.js", 3, 10, 50)
	if err != nil {
		t.Fatalf("NewCodeEvidence failed: %v", err)
	}
	if ev.FilePath != "src/app.js" || ev.StartLine != 3 || ev.EndLine != 10 {
		t.Errorf("unexpected evidence: %+v", ev)
	}

	cases := []struct {
		name             string
		start, end, file int
	}{
		{"zero start", 0, 5, 50},
		{"end before start", 10, 5, 50},
		{"past end of file", 40, 60, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCodeEvidence("a.go", tc.start, tc.end, tc.file)
			if !errors.Is(err, ErrEvidenceOutOfRange) {
				t.Errorf("want ErrEvidenceOutOfRange, got %v", err)
			}
		})
	}
}

func TestCodeEvidenceOverlaps(t *testing.T) {
	ev := CodeEvidence{FilePath: "a.go", StartLine: 10, EndLine: 20}

	cases := []struct {
		name       string
		file       string
		start, end int
		want       bool
	}{
		{"inside", "a.go", 12, 15, true},
		{"touching start", "a.go", 5, 10, true},
		{"touching end", "a.go", 20, 30, true},
		{"before", "a.go", 1, 9, false},
		{"after", "a.go", 21, 25, false},
		{"other file", "b.go", 12, 15, false},
	}
	for _, tc := range cases {
		if got := ev.Overlaps(tc.file, tc.start, tc.end); got != tc.want {
			t.Errorf("%s: Overlaps(%s, %d, %d) = %v, want %v", tc.name, tc.file, tc.start, tc.end, got, tc.want)
		}
	}
}

func TestNewConceptRequiresEvidence(t *testing.T) {
	_, err := NewConcept("Router", CategoryClass, "routes requests", nil)
	if !errors.Is(err, ErrEvidenceMissing) {
		t.Fatalf("want ErrEvidenceMissing, got %v", err)
	}

	ev := CodeEvidence{FilePath: "router.js", StartLine: 1, EndLine: 5}
	c, err := NewConcept("Router", CategoryClass, "routes requests", []CodeEvidence{ev})
	if err != nil {
		t.Fatalf("NewConcept failed: %v", err)
	}
	if c.Name != "Router" || len(c.Evidence) != 1 {
		t.Errorf("unexpected concept: %+v", c)
	}
}

func TestCombineRelevance(t *testing.T) {
	// Perfect scores across the board total exactly 1.
	if got := CombineRelevance(1, 1, 1, 1); got != 1 {
		t.Errorf("all ones: got %v, want 1", got)
	}
	if got := CombineRelevance(0, 0, 0, 0); got != 0 {
		t.Errorf("all zeros: got %v, want 0", got)
	}

	// Out-of-range components clamp instead of skewing the total.
	if got := CombineRelevance(5, -3, 2, 1.5); got != 1 {
		t.Errorf("clamped: got %v, want 1", got)
	}

	// Weighted combination: name-only hit contributes its 0.3 weight.
	if got := CombineRelevance(1, 0, 0, 0); got != WeightName {
		t.Errorf("name only: got %v, want %v", got, WeightName)
	}
}

func TestSelectionResultPathsAndContains(t *testing.T) {
	sel := &SelectionResult{
		Files: []SelectedFile{
			{File: &FileRecord{Path: "src/main.js"}},
			{File: &FileRecord{Path: "src/router.js"}},
		},
	}

	paths := sel.Paths()
	if len(paths) != 2 || paths[0] != "src/main.js" || paths[1] != "src/router.js" {
		t.Errorf("unexpected paths: %v", paths)
	}
	if !sel.Contains("src/router.js") {
		t.Error("Contains should find src/router.js")
	}
	if sel.Contains("src/missing.js") {
		t.Error("Contains should not find src/missing.js")
	}
}

func TestSourceFilesDeterministicOrder(t *testing.T) {
	// Every record comes back, prose included; filtering is the selector's
	// job, not the tree's.
	tree := &RepositoryTree{
		Files: map[string]*FileRecord{
			"z.go":      {Path: "z.go", Language: "Go"},
			"a.go":      {Path: "a.go", Language: "Go"},
			"README.md": {Path: "README.md", Language: "Markdown"},
		},
	}
	for i := 0; i < 5; i++ {
		recs := tree.SourceFiles()
		if len(recs) != 3 || recs[0].Path != "README.md" || recs[1].Path != "a.go" || recs[2].Path != "z.go" {
			t.Fatalf("iteration %d: unexpected order %v", i, []string{recs[0].Path, recs[1].Path, recs[2].Path})
		}
	}
}
