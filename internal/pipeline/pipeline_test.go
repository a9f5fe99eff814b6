package pipeline

import (
	"context"
	"errors"
	"testing"

	"codelens/internal/config"
	"codelens/internal/model"
	"codelens/internal/repotree"
)

func testTree() *model.RepositoryTree {
	return repotree.FromContents("/repo", map[string]string{
		"src/server.js": "import { registerRoutes } from './routes';\n\nfunction main() {\n  registerRoutes(app);\n}\n",
		"src/routes.js": "import { createOrder } from './orders';\n\nexport function registerRoutes(app) {\n  app.post('/orders', (req) => createOrder(req.body));\n}\n",
		"src/orders.js": "export function createOrder(payload) {\n  return payload;\n}\n",
	})
}

func testPipelineConfig() *config.Config {
	cfg := config.Default()
	cfg.Selector.MinSelected = 2
	return cfg
}

func TestRunReachesReady(t *testing.T) {
	p := New(testPipelineConfig(), nil)

	var stages []Stage
	p.SetEventFunc(func(ev Event) { stages = append(stages, ev.Stage) })

	result, err := p.Run(context.Background(), testTree(), "understand how orders are created")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Stage != StageReady {
		t.Fatalf("Stage = %s, want ready", result.Stage)
	}
	if result.Intent == nil || result.Selection == nil || result.Analysis == nil {
		t.Fatal("result missing intermediate outputs")
	}
	if result.Graph == nil || result.Index == nil {
		t.Fatal("result missing graph or traceability index")
	}

	want := []Stage{StageSelecting, StageAnalyzing, StageIndexingEvidence, StageReady}
	if len(stages) != len(want) {
		t.Fatalf("stage events = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, stages[i], want[i])
		}
	}
}

func TestRunRegistersConcepts(t *testing.T) {
	p := New(testPipelineConfig(), nil)
	result, err := p.Run(context.Background(), testTree(), "understand how orders are created")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Artifacts) == 0 {
		t.Fatal("no artifacts registered")
	}
	if len(result.Artifacts) != len(result.Analysis.Concepts) {
		t.Errorf("artifacts = %d, concepts = %d; every concept should be indexed",
			len(result.Artifacts), len(result.Analysis.Concepts))
	}
	for id, name := range result.Artifacts {
		if !result.Index.Validate(id) {
			t.Errorf("artifact %s (%s) does not validate", id, name)
		}
		evidence, err := result.Index.Trace(id)
		if err != nil || len(evidence) == 0 {
			t.Errorf("artifact %s has no traceable evidence: %v", id, err)
		}
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	p := New(testPipelineConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Run(ctx, testTree(), "anything")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if result.Stage != StageFailed {
		t.Errorf("Stage = %s, want failed", result.Stage)
	}
	if result.Err == "" {
		t.Error("cancelled run should carry a user-facing message")
	}
}

func TestRunEmptyRepositoryFailsAtSelection(t *testing.T) {
	p := New(testPipelineConfig(), nil)
	tree := repotree.FromContents("/repo", map[string]string{
		"README.md": "# docs only\n",
	})

	result, err := p.Run(context.Background(), tree, "anything")
	if !errors.Is(err, model.ErrSelectionEmpty) {
		t.Fatalf("want ErrSelectionEmpty, got %v", err)
	}
	if result.Stage != StageFailed {
		t.Errorf("Stage = %s, want failed", result.Stage)
	}
	// Partial output survives failure: scan counts remain inspectable.
	if result.Selection == nil || result.Selection.Scanned != 1 {
		t.Errorf("selection partial result missing: %+v", result.Selection)
	}
}

func TestRunFallbackLanguageReachesReady(t *testing.T) {
	// A repository in a language without dedicated extractor rules must
	// still analyze end to end through the generic fallback.
	p := New(testPipelineConfig(), nil)
	tree := repotree.FromContents("/repo", map[string]string{
		"src/main.rs":   "use crate::orders::submit_order;\n\nfn main() {\n    submit_order(\"order-1\");\n}\n",
		"src/orders.rs": "pub fn submit_order(payload: &str) -> bool {\n    !payload.is_empty()\n}\n",
	})

	result, err := p.Run(context.Background(), tree, "understand how orders are submitted")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Stage != StageReady {
		t.Fatalf("Stage = %s, want ready", result.Stage)
	}
	if result.Analysis.Summary.FilesAnalyzed != 2 || result.Analysis.Summary.FilesSkipped != 0 {
		t.Errorf("extraction accounting wrong: %+v", result.Analysis.Summary)
	}
}

func TestRunNothingAnalyzable(t *testing.T) {
	p := New(testPipelineConfig(), nil)
	tree := repotree.FromContents("/repo", map[string]string{
		"a.js": "   \n",
		"b.js": "\t\n",
	})

	result, err := p.Run(context.Background(), tree, "anything")
	if !errors.Is(err, model.ErrNoAnalyzableFiles) {
		t.Fatalf("want ErrNoAnalyzableFiles, got %v", err)
	}
	if result.Stage != StageFailed {
		t.Errorf("Stage = %s, want failed", result.Stage)
	}
	if result.Selection == nil || len(result.Selection.Files) == 0 {
		t.Error("selection should be preserved on analysis failure")
	}
	if result.Analysis == nil || result.Analysis.Summary.FilesSkipped != 2 {
		t.Errorf("analysis partial result missing: %+v", result.Analysis)
	}
}

func TestSummarize(t *testing.T) {
	tree := repotree.FromContents("/repo", map[string]string{
		"src/a.js":  "let a;\n",
		"src/b.js":  "let b;\n",
		"docs/x.md": "# x\n",
		"main.js":   "boot();\n",
	})
	got := summarize(tree)
	want := "4 files. Top-level entries: docs/, main.js, src/"
	if got != want {
		t.Errorf("summarize = %q, want %q", got, want)
	}
}
