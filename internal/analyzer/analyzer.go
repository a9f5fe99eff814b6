// Package analyzer jointly analyzes a selected set of files: it recovers
// inter-file relationships, builds the dependency graph, traces data flows
// and execution paths, and extracts evidence-backed concepts. Per-file
// extraction failures are recovered locally; the analyzer only fails as a
// whole when nothing at all could be analyzed.
package analyzer

import (
	"context"
	"log"
	"sort"
	"sync"

	"codelens/internal/config"
	"codelens/internal/extract"
	"codelens/internal/graph"
	"codelens/internal/model"
)

// Analyzer runs the multi-file analysis over a completed selection.
type Analyzer struct {
	extractor extract.Extractor
	cfg       config.AnalyzerConfig
}

// New creates an Analyzer with the given structure extractor and bounds.
func New(extractor extract.Extractor, cfg config.AnalyzerConfig) *Analyzer {
	return &Analyzer{extractor: extractor, cfg: cfg}
}

// Result bundles the analysis output with the constructed graph. The graph
// is kept alongside MultiFileAnalysis so callers can serialize or traverse
// it without rebuilding.
type Result struct {
	Analysis *model.MultiFileAnalysis
	Graph    *graph.DependencyGraph
}

// Analyze extracts structure from every selected file in parallel, then
// runs the single-threaded cross-file passes over the completed set.
// One file's failure never blocks the others; only a fully failed
// extraction pass returns ErrNoAnalyzableFiles.
func (a *Analyzer) Analyze(ctx context.Context, tree *model.RepositoryTree, selection *model.SelectionResult, in *model.Intent) (*Result, error) {
	analysis := &model.MultiFileAnalysis{
		Files: make(map[string]*model.FileAnalysis),
	}

	analyses, skipped := a.extractAll(ctx, tree, selection)
	for _, fa := range analyses {
		analysis.Files[fa.Path] = fa
	}
	analysis.Summary.FilesAnalyzed = len(analyses)
	analysis.Summary.FilesSkipped = len(skipped)
	analysis.Summary.SkippedPaths = skipped

	if len(analyses) == 0 {
		// Distinct analyzer-level status, not a panic or a partial crash:
		// the caller keeps the selection and reports this stage as failed.
		return &Result{Analysis: analysis, Graph: graph.New()}, model.ErrNoAnalyzableFiles
	}

	// Cross-file passes share one graph/evidence structure and therefore
	// run single-threaded over the completed FileAnalysis set.
	rels := a.detectRelationships(tree, analysis)
	analysis.Relationships = rels

	g := graph.New()
	for path := range analysis.Files {
		g.AddNode(path)
	}
	for _, rel := range rels {
		if !g.AddEdge(rel) {
			log.Printf("analyzer: dropped edge %s -> %s (%s): endpoint outside analyzed set", rel.Source, rel.Target, rel.Kind)
		}
	}
	analysis.Summary.EdgesDropped = g.DroppedEdges()

	analysis.DataFlows = a.traceDataFlows(tree, analysis, g)
	analysis.ExecutionPaths = a.traceExecutionPaths(selection, analysis, g)

	patterns := a.detectPatterns(tree, selection, analysis, g)
	analysis.Concepts = a.extractConcepts(tree, analysis, g, patterns)

	return &Result{Analysis: analysis, Graph: g}, nil
}

// extractAll runs the structure extractor over every selected file through
// a bounded worker pool. Extraction is embarrassingly parallel: no shared
// mutable state is touched until all workers finish.
func (a *Analyzer) extractAll(ctx context.Context, tree *model.RepositoryTree, selection *model.SelectionResult) ([]*model.FileAnalysis, []string) {
	concurrency := a.cfg.MaxConcurrency
	if concurrency < 1 {
		concurrency = 4
	}

	sem := make(chan struct{}, concurrency)
	var mu sync.Mutex
	var analyses []*model.FileAnalysis
	var skipped []string

	var wg sync.WaitGroup
	for _, sf := range selection.Files {
		select {
		case <-ctx.Done():
			// Cooperative cancellation: stop handing out work; in-flight
			// extractions run to completion.
			mu.Lock()
			skipped = append(skipped, sf.File.Path)
			mu.Unlock()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(rec *model.FileRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			fa, err := a.extractor.Extract(rec.Path, rec.Content, rec.Language)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("analyzer: skip %s: %v", rec.Path, err)
				skipped = append(skipped, rec.Path)
				return
			}
			analyses = append(analyses, fa)
		}(sf.File)
	}
	wg.Wait()

	sort.Slice(analyses, func(i, j int) bool { return analyses[i].Path < analyses[j].Path })
	sort.Strings(skipped)
	return analyses, skipped
}

// orderedPaths returns the analyzed file paths sorted for deterministic
// iteration across all cross-file passes.
func orderedPaths(analysis *model.MultiFileAnalysis) []string {
	paths := make([]string, 0, len(analysis.Files))
	for p := range analysis.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
