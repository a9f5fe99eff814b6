// Package pipeline orchestrates one comprehension request:
// Selecting → Analyzing → IndexingEvidence → Ready. Stages run strictly in
// order over the prior stage's complete output; any stage may end in Failed
// while preserving whatever earlier stages already produced. Cancellation
// is cooperative at stage boundaries only.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"codelens/internal/analyzer"
	"codelens/internal/config"
	"codelens/internal/enrich"
	"codelens/internal/extract"
	"codelens/internal/graph"
	"codelens/internal/intent"
	"codelens/internal/model"
	"codelens/internal/selector"
	"codelens/internal/trace"
)

// Stage is the request state machine's position.
type Stage string

const (
	StageIdle             Stage = "idle"
	StageSelecting        Stage = "selecting"
	StageAnalyzing        Stage = "analyzing"
	StageIndexingEvidence Stage = "indexing_evidence"
	StageReady            Stage = "ready"
	StageFailed           Stage = "failed"
)

// Event reports a stage transition to observers (progress bar, websocket).
type Event struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// EventFunc receives pipeline events. It is called synchronously; keep it
// fast.
type EventFunc func(Event)

// Pipeline wires the selector, analyzer, and traceability index together.
// Independent pipelines share no mutable state and may run concurrently.
type Pipeline struct {
	cfg     *config.Config
	parser  *intent.Parser
	sel     *selector.Selector
	an      *analyzer.Analyzer
	oracle  enrich.Oracle // nil disables enrichment
	onEvent EventFunc
}

// New builds a pipeline from configuration. oracle may be nil.
func New(cfg *config.Config, oracle enrich.Oracle) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		parser: intent.NewParser(cfg.IntentKeywords),
		sel:    selector.New(cfg.Selector, cfg.RolePatterns),
		an:     analyzer.New(extract.NewHeuristic(), cfg.Analyzer),
		oracle: oracle,
	}
}

// SetEventFunc registers the event observer.
func (p *Pipeline) SetEventFunc(fn EventFunc) {
	p.onEvent = fn
}

// Result carries everything the pipeline produced, including partial output
// when a stage failed. Stage tells how far the run got; Err holds the
// user-facing failure message when Stage is failed.
type Result struct {
	Stage     Stage                    `json:"stage"`
	Err       string                   `json:"error,omitempty"`
	Intent    *model.Intent            `json:"intent,omitempty"`
	Selection *model.SelectionResult   `json:"selection,omitempty"`
	Analysis  *model.MultiFileAnalysis `json:"analysis,omitempty"`
	Graph     *graph.DependencyGraph   `json:"-"`
	Index     *trace.Index             `json:"-"`
	// Artifacts maps registered artifact IDs to the concept they back.
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// Run executes the full pipeline for one repository snapshot and goal.
// The returned Result is never nil; the error mirrors Result.Err for the
// two user-visible failures (empty repository, nothing analyzable).
func (p *Pipeline) Run(ctx context.Context, tree *model.RepositoryTree, goal string) (*Result, error) {
	result := &Result{Stage: StageIdle}

	// --- Selecting ---
	if err := p.enter(ctx, result, StageSelecting, "scoring files against intent"); err != nil {
		return result, err
	}

	in := p.parser.Parse(goal)
	in, enriched := p.enrichIntent(ctx, tree, in)
	result.Intent = in

	selection, err := p.sel.Select(tree, in)
	result.Selection = selection
	if err != nil {
		return p.fail(result, fmt.Errorf("repository has no source files to learn from: %w", err))
	}

	// --- Analyzing ---
	if err := p.enter(ctx, result, StageAnalyzing, fmt.Sprintf("analyzing %d files", selection.Selected)); err != nil {
		return result, err
	}

	ares, err := p.an.Analyze(ctx, tree, selection, in)
	result.Analysis = ares.Analysis
	result.Graph = ares.Graph
	if ares.Analysis != nil {
		ares.Analysis.Summary.EnrichmentUsed = enriched
	}
	if err != nil {
		if errors.Is(err, model.ErrNoAnalyzableFiles) {
			return p.fail(result, fmt.Errorf("none of the selected files could be analyzed: %w", err))
		}
		return p.fail(result, err)
	}

	// --- IndexingEvidence ---
	if err := p.enter(ctx, result, StageIndexingEvidence, "registering concept evidence"); err != nil {
		return result, err
	}

	ix := trace.NewIndex()
	for path, rec := range tree.Files {
		ix.SetFile(path, rec.LineCount, rec.ContentHash)
	}
	artifacts := make(map[string]string, len(ares.Analysis.Concepts))
	for _, concept := range ares.Analysis.Concepts {
		id := trace.NewArtifactID()
		if err := ix.Register(id, concept.Evidence); err != nil {
			// Concepts were built with validated evidence, so a rejection
			// here means the tree changed mid-run; skip and log.
			log.Printf("pipeline: could not index %q: %v", concept.Name, err)
			continue
		}
		artifacts[id] = concept.Name
	}
	result.Index = ix
	result.Artifacts = artifacts

	result.Stage = StageReady
	p.emit(Event{Stage: StageReady, Message: fmt.Sprintf("%d concepts indexed", len(artifacts))})
	return result, nil
}

// enrichIntent consults the optional keyword oracle, merging its free-text
// suggestions into the rule-derived keyword set. Failures fall back
// silently; the user never sees an enrichment error. The bool reports
// whether enrichment actually contributed keywords.
func (p *Pipeline) enrichIntent(ctx context.Context, tree *model.RepositoryTree, in *model.Intent) (*model.Intent, bool) {
	if p.oracle == nil || !p.cfg.Enrichment.Enabled {
		return in, false
	}
	timeout := time.Duration(p.cfg.Enrichment.TimeoutSeconds) * time.Second
	extra, err := enrich.Keywords(ctx, p.oracle, in.Goal, summarize(tree), timeout)
	if err != nil {
		log.Printf("pipeline: %v (using rule-derived keywords)", err)
		return in, false
	}
	if len(extra) == 0 {
		return in, false
	}
	return intent.WithEnrichment(in, extra), true
}

// enter performs the cooperative cancellation check at a stage boundary
// and records the transition.
func (p *Pipeline) enter(ctx context.Context, result *Result, stage Stage, msg string) error {
	select {
	case <-ctx.Done():
		result.Stage = StageFailed
		result.Err = "cancelled before " + string(stage)
		p.emit(Event{Stage: StageFailed, Message: result.Err})
		return ctx.Err()
	default:
	}
	result.Stage = stage
	p.emit(Event{Stage: stage, Message: msg})
	return nil
}

// fail marks the run failed while keeping all partial results in place.
func (p *Pipeline) fail(result *Result, err error) (*Result, error) {
	result.Stage = StageFailed
	result.Err = err.Error()
	p.emit(Event{Stage: StageFailed, Message: result.Err})
	return result, err
}

func (p *Pipeline) emit(ev Event) {
	if p.onEvent != nil {
		p.onEvent(ev)
	}
}

// summarize produces the short repository description handed to the
// enrichment oracle: top-level entries and a file count. Free text in, free
// text out; nothing structured crosses this boundary.
func summarize(tree *model.RepositoryTree) string {
	top := make(map[string]bool)
	for path := range tree.Files {
		if i := strings.Index(path, "/"); i >= 0 {
			top[path[:i]+"/"] = true
		} else {
			top[path] = true
		}
	}
	entries := make([]string, 0, len(top))
	for e := range top {
		entries = append(entries, e)
	}
	sort.Strings(entries)
	if len(entries) > 25 {
		entries = entries[:25]
	}
	return fmt.Sprintf("%d files. Top-level entries: %s", len(tree.Files), strings.Join(entries, ", "))
}
