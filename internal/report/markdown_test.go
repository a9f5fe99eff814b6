package report

import (
	"strings"
	"testing"

	"codelens/internal/graph"
	"codelens/internal/model"
	"codelens/internal/repotree"
	"codelens/internal/snapshot"
)

func testRun() *snapshot.Run {
	g := graph.New()
	g.AddNode("src/a.js")
	g.AddNode("src/b.js")
	g.AddEdge(model.Relationship{Source: "src/a.js", Target: "src/b.js", Kind: model.RelImports, Symbol: "./b", EvidenceLine: 1})
	g.AddEdge(model.Relationship{Source: "src/b.js", Target: "src/a.js", Kind: model.RelCalls, Symbol: "boot", EvidenceLine: 2})

	return &snapshot.Run{
		ID:             "run-1",
		RepoRoot:       "/repo",
		Goal:           "understand the app",
		IntentCategory: "learn-feature",
		Stage:          "ready",
		Selection: &model.SelectionResult{
			Scanned:  3,
			Selected: 2,
			Files: []model.SelectedFile{
				{
					File:        &model.FileRecord{Path: "src/a.js"},
					Score:       model.RelevanceScore{Total: 0.4, Role: model.RoleEntryPoint},
					Explanation: "selected: filename match dominated",
				},
			},
		},
		Analysis: &model.MultiFileAnalysis{
			Summary: model.AnalysisSummary{FilesAnalyzed: 2, FilesSkipped: 1, SkippedPaths: []string{"src/c.rs"}},
			Relationships: []model.Relationship{
				{Source: "src/a.js", Target: "src/b.js", Kind: model.RelImports, Symbol: "./b", EvidenceLine: 1},
			},
			ExecutionPaths: []model.ExecutionPath{
				{Entry: "src/a.js", Steps: []model.PathStep{
					{FilePath: "src/a.js", Function: "main"},
					{FilePath: "src/b.js", Function: "boot"},
				}},
			},
			DataFlows: []model.DataFlow{
				{Name: "payload", Hops: []model.FlowHop{
					{FilePath: "src/a.js", Symbol: "boot", Line: 2},
					{FilePath: "src/b.js", Symbol: "payload", Line: 1},
				}},
			},
			Concepts: []*model.Concept{
				{
					Name:        "boot",
					Category:    model.CategoryFunction,
					Description: "function boot in src/b.js",
					Evidence:    []model.CodeEvidence{{FilePath: "src/b.js", StartLine: 1, EndLine: 2}},
				},
			},
		},
		Graph: g.Serialize(),
	}
}

func TestMarkdownSections(t *testing.T) {
	tree := repotree.FromContents("/repo", map[string]string{
		"src/a.js": "import './b';\nboot(payload);\n",
		"src/b.js": "export function boot(payload) {\n  return payload;\n}\n",
	})

	md := Markdown(testRun(), tree)

	for _, want := range []string{
		"# Code comprehension report",
		"**Goal:** understand the app",
		"**Detected intent:** learn-feature",
		"## Selected files",
		"| `src/a.js` | 0.40 | entry_point |",
		"## Analysis summary",
		"Files analyzed: 2",
		"## Relationships",
		"`src/a.js` imports `src/b.js`",
		"## Dependency cycles",
		"## Execution paths",
		"### Entry `src/a.js`",
		"1. `main` in `src/a.js`",
		"2. `boot` in `src/b.js`",
		"## Data flows",
		"**payload**",
		"## Concepts",
		"### boot",
		"Evidence: `src/b.js:1-2`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	// Evidence snippet is rendered from the tree with a language fence.
	if !strings.Contains(md, "```javascript\nexport function boot(payload) {") {
		t.Errorf("missing evidence snippet:\n%s", md)
	}
}

func TestMarkdownWithoutTree(t *testing.T) {
	md := Markdown(testRun(), nil)
	if strings.Contains(md, "```javascript") {
		t.Error("no snippets should render without file contents")
	}
	if !strings.Contains(md, "## Concepts") {
		t.Error("concepts section should still render")
	}
}

func TestEvidenceSnippetCapped(t *testing.T) {
	lines := make([]string, 60)
	for i := range lines {
		lines[i] = "line"
	}
	tree := repotree.FromContents("/repo", map[string]string{
		"big.js": strings.Join(lines, "\n"),
	})

	snippet, lang, ok := evidenceSnippet(tree, model.CodeEvidence{FilePath: "big.js", StartLine: 1, EndLine: 60})
	if !ok {
		t.Fatal("snippet should be produced")
	}
	if lang != "javascript" {
		t.Errorf("lang = %q", lang)
	}
	if got := strings.Count(snippet, "\n") + 1; got > 20 {
		t.Errorf("snippet has %d lines, cap is 20", got)
	}
}

func TestFenceLanguage(t *testing.T) {
	cases := []struct{ in, want string }{
		{"JavaScript", "javascript"},
		{"Go", "go"},
		{"Python", "python"},
		{"Fortran", ""},
	}
	for _, tc := range cases {
		if got := fenceLanguage(tc.in); got != tc.want {
			t.Errorf("fenceLanguage(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
