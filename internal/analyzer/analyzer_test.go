package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codelens/internal/config"
	"codelens/internal/extract"
	"codelens/internal/model"
	"codelens/internal/repotree"
)

func testAnalyzer() *Analyzer {
	return New(extract.NewHeuristic(), config.AnalyzerConfig{
		MaxConcurrency: 2,
		MaxFlowHops:    8,
		MaxPathDepth:   10,
		MaxPaths:       20,
	})
}

// selectAll builds a SelectionResult covering every file in the tree, in
// path order, with the given role applied to all of them.
func selectAll(tree *model.RepositoryTree, role model.FileRole) *model.SelectionResult {
	sel := &model.SelectionResult{}
	for _, rec := range tree.SourceFiles() {
		sel.Files = append(sel.Files, model.SelectedFile{
			File:  rec,
			Score: model.RelevanceScore{Total: 0.5, Role: role},
		})
	}
	sel.Selected = len(sel.Files)
	return sel
}

func webAppTree() *model.RepositoryTree {
	return repotree.FromContents("/repo", map[string]string{
		"src/server.js": strings.Join([]string{
			`import { registerRoutes } from './routes';`,
			``,
			`function main() {`,
			`  registerRoutes(app);`,
			`}`,
		}, "\n"),
		"src/routes.js": strings.Join([]string{
			`import { createOrder } from './orders';`,
			``,
			`export function registerRoutes(app) {`,
			`  app.post('/orders', (req) => createOrder(req.body));`,
			`}`,
		}, "\n"),
		"src/orders.js": strings.Join([]string{
			`import { saveRecord } from './storage';`,
			``,
			`export function createOrder(payload) {`,
			`  return saveRecord(payload);`,
			`}`,
		}, "\n"),
		"src/storage.js": strings.Join([]string{
			`export function saveRecord(payload) {`,
			`  return db.insert(payload);`,
			`}`,
		}, "\n"),
	})
}

func TestAnalyzeImportEdges(t *testing.T) {
	tree := webAppTree()
	res, err := testAnalyzer().Analyze(context.Background(), tree, selectAll(tree, model.RoleCoreLogic), &model.Intent{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if res.Analysis.Summary.FilesAnalyzed != 4 {
		t.Errorf("FilesAnalyzed = %d, want 4", res.Analysis.Summary.FilesAnalyzed)
	}

	var found bool
	for _, rel := range res.Analysis.Relationships {
		if rel.Kind == model.RelImports && rel.Source == "src/routes.js" && rel.Target == "src/orders.js" {
			found = true
			if rel.EvidenceLine != 1 {
				t.Errorf("import evidence line = %d, want 1", rel.EvidenceLine)
			}
		}
	}
	if !found {
		t.Errorf("missing imports edge routes.js -> orders.js in %+v", res.Analysis.Relationships)
	}
}

func TestAnalyzeCallEdges(t *testing.T) {
	tree := webAppTree()
	res, err := testAnalyzer().Analyze(context.Background(), tree, selectAll(tree, model.RoleCoreLogic), &model.Intent{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	var found bool
	for _, rel := range res.Analysis.Relationships {
		if rel.Kind == model.RelCalls && rel.Source == "src/routes.js" && rel.Target == "src/orders.js" && rel.Symbol == "createOrder" {
			found = true
			if rel.EvidenceLine != 4 {
				t.Errorf("call evidence line = %d, want 4", rel.EvidenceLine)
			}
		}
	}
	if !found {
		t.Errorf("missing calls edge for createOrder in %+v", res.Analysis.Relationships)
	}
}

func TestAnalyzeGraphMatchesRelationships(t *testing.T) {
	tree := webAppTree()
	res, err := testAnalyzer().Analyze(context.Background(), tree, selectAll(tree, model.RoleCoreLogic), &model.Intent{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if res.Graph.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4", res.Graph.NodeCount())
	}
	if res.Graph.EdgeCount() != len(res.Analysis.Relationships)-res.Graph.DroppedEdges() {
		t.Errorf("graph edges (%d) + dropped (%d) != relationships (%d)",
			res.Graph.EdgeCount(), res.Graph.DroppedEdges(), len(res.Analysis.Relationships))
	}
	if res.Analysis.Summary.EdgesDropped != res.Graph.DroppedEdges() {
		t.Errorf("summary EdgesDropped = %d, graph says %d",
			res.Analysis.Summary.EdgesDropped, res.Graph.DroppedEdges())
	}
}

func TestAnalyzeDataFlows(t *testing.T) {
	tree := webAppTree()
	res, err := testAnalyzer().Analyze(context.Background(), tree, selectAll(tree, model.RoleCoreLogic), &model.Intent{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// createOrder(payload) seeds a flow named after the parameter.
	var payload *model.DataFlow
	for i := range res.Analysis.DataFlows {
		if res.Analysis.DataFlows[i].Name == "payload" {
			payload = &res.Analysis.DataFlows[i]
			break
		}
	}
	if payload == nil {
		t.Fatalf("no payload flow in %+v", res.Analysis.DataFlows)
	}
	if len(payload.Hops) < 2 {
		t.Fatalf("flow has %d hops, want at least call site and parameter", len(payload.Hops))
	}
	if payload.Hops[0].FilePath == payload.Hops[1].FilePath {
		t.Errorf("first two hops should cross files: %+v", payload.Hops[:2])
	}
}

func TestAnalyzeExecutionPaths(t *testing.T) {
	tree := webAppTree()
	res, err := testAnalyzer().Analyze(context.Background(), tree, selectAll(tree, model.RoleCoreLogic), &model.Intent{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// server.js defines main, so it is an entry point; the walk should
	// reach at least one more file through the calls edges.
	var entry *model.ExecutionPath
	for i := range res.Analysis.ExecutionPaths {
		if res.Analysis.ExecutionPaths[i].Entry == "src/server.js" {
			entry = &res.Analysis.ExecutionPaths[i]
			break
		}
	}
	if entry == nil {
		t.Fatalf("no path from src/server.js in %+v", res.Analysis.ExecutionPaths)
	}
	if len(entry.Steps) < 2 {
		t.Errorf("path has %d steps, single-step paths should be dropped", len(entry.Steps))
	}
	if entry.Steps[0].Function != "main" {
		t.Errorf("first step = %+v, want main", entry.Steps[0])
	}
}

func TestAnalyzeConceptsCarryEvidence(t *testing.T) {
	tree := webAppTree()
	res, err := testAnalyzer().Analyze(context.Background(), tree, selectAll(tree, model.RoleCoreLogic), &model.Intent{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(res.Analysis.Concepts) == 0 {
		t.Fatal("no concepts extracted")
	}
	for _, c := range res.Analysis.Concepts {
		if len(c.Evidence) == 0 {
			t.Errorf("concept %q has no evidence", c.Name)
		}
		for _, ev := range c.Evidence {
			rec, ok := tree.Files[ev.FilePath]
			if !ok {
				t.Errorf("concept %q cites unknown file %s", c.Name, ev.FilePath)
				continue
			}
			if ev.StartLine < 1 || ev.EndLine > rec.LineCount {
				t.Errorf("concept %q evidence %s:%d-%d outside file (%d lines)",
					c.Name, ev.FilePath, ev.StartLine, ev.EndLine, rec.LineCount)
			}
		}
	}
}

func TestAnalyzeFallbackLanguages(t *testing.T) {
	// Languages without dedicated extractor rules go through the generic
	// fallback instead of being skipped.
	tree := repotree.FromContents("/repo", map[string]string{
		"src/main.rs": strings.Join([]string{
			`use crate::orders::submit_order;`,
			``,
			`fn main() {`,
			`    submit_order("order-1");`,
			`}`,
		}, "\n"),
		"src/orders.rs": strings.Join([]string{
			`pub fn submit_order(payload: &str) -> bool {`,
			`    !payload.is_empty()`,
			`}`,
		}, "\n"),
	})
	res, err := testAnalyzer().Analyze(context.Background(), tree, selectAll(tree, model.RoleCoreLogic), &model.Intent{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if res.Analysis.Summary.FilesAnalyzed != 2 || res.Analysis.Summary.FilesSkipped != 0 {
		t.Fatalf("extraction accounting wrong: %+v", res.Analysis.Summary)
	}
	var found bool
	for _, rel := range res.Analysis.Relationships {
		if rel.Kind == model.RelCalls && rel.Source == "src/main.rs" && rel.Target == "src/orders.rs" && rel.Symbol == "submit_order" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing calls edge for submit_order in %+v", res.Analysis.Relationships)
	}
}

func TestAnalyzeSkipsUnparsableFiles(t *testing.T) {
	tree := repotree.FromContents("/repo", map[string]string{
		"src/app.js":   "export function boot(config) { return config; }\n",
		"src/empty.js": "   \n\t\n",
	})
	res, err := testAnalyzer().Analyze(context.Background(), tree, selectAll(tree, model.RoleCoreLogic), &model.Intent{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if res.Analysis.Summary.FilesAnalyzed != 1 {
		t.Errorf("FilesAnalyzed = %d, want 1", res.Analysis.Summary.FilesAnalyzed)
	}
	if res.Analysis.Summary.FilesSkipped != 1 || len(res.Analysis.Summary.SkippedPaths) != 1 {
		t.Errorf("skip accounting wrong: %+v", res.Analysis.Summary)
	}
	if res.Analysis.Summary.SkippedPaths[0] != "src/empty.js" {
		t.Errorf("SkippedPaths = %v", res.Analysis.Summary.SkippedPaths)
	}
}

func TestAnalyzeNothingAnalyzable(t *testing.T) {
	tree := repotree.FromContents("/repo", map[string]string{
		"a.js": "   \n",
		"b.js": "\t\n",
	})
	res, err := testAnalyzer().Analyze(context.Background(), tree, selectAll(tree, model.RoleCoreLogic), &model.Intent{})
	if !errors.Is(err, model.ErrNoAnalyzableFiles) {
		t.Fatalf("want ErrNoAnalyzableFiles, got %v", err)
	}
	// Partial result survives: the summary still explains what happened.
	if res == nil || res.Analysis == nil {
		t.Fatal("failed analysis must still return the partial result")
	}
	if res.Analysis.Summary.FilesSkipped != 2 {
		t.Errorf("FilesSkipped = %d, want 2", res.Analysis.Summary.FilesSkipped)
	}
}

func TestResolveImportTargetRelative(t *testing.T) {
	analysis := &model.MultiFileAnalysis{Files: map[string]*model.FileAnalysis{
		"src/utils/format.js": {Path: "src/utils/format.js"},
		"src/app.js":          {Path: "src/app.js"},
	}}

	hits, kind := resolveImportTarget("src/app.js", "./utils/format", analysis)
	if len(hits) != 1 || hits[0] != "src/utils/format.js" {
		t.Errorf("hits = %v", hits)
	}
	if kind != model.RelImports {
		t.Errorf("kind = %s, want imports", kind)
	}

	hits, _ = resolveImportTarget("src/app.js", "./missing", analysis)
	if len(hits) != 0 {
		t.Errorf("unresolvable import produced %v", hits)
	}
}

func TestCallsSymbol(t *testing.T) {
	cases := []struct {
		line, name string
		want       bool
	}{
		{"  createOrder(payload)", "createOrder", true},
		{"  return createOrder (payload)", "createOrder", true},
		{"  recreateOrder(payload)", "createOrder", false},
		{"  createOrderId = 5", "createOrder", false},
		{"  createOrder", "createOrder", false},
	}
	for _, tc := range cases {
		if got := callsSymbol(tc.line, tc.name); got != tc.want {
			t.Errorf("callsSymbol(%q, %q) = %v, want %v", tc.line, tc.name, got, tc.want)
		}
	}
}
