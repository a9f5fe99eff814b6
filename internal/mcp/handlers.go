package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"codelens/internal/pipeline"
	"codelens/internal/repotree"
	"codelens/internal/snapshot"
)

// handleSelectFiles runs only the selection stage and formats the scored
// files for agent consumption.
func (s *Server) handleSelectFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	goal, err := request.RequireString("goal")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: goal"), nil
	}

	result, _ := s.run(ctx, path, goal)
	if result.Selection == nil {
		return mcp.NewToolResultError(result.Err), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scanned %d files, excluded %d, selected %d:\n",
		result.Selection.Scanned, result.Selection.Excluded, result.Selection.Selected))
	for _, sf := range result.Selection.Files {
		sb.WriteString(fmt.Sprintf("\n%s (score %.2f, role %s)\n  %s\n",
			sf.File.Path, sf.Score.Total, sf.Score.Role, sf.Explanation))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleAnalyzeRepo runs the full pipeline and persists the result.
func (s *Server) handleAnalyzeRepo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}
	goal, err := request.RequireString("goal")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: goal"), nil
	}

	result, runErr := s.run(ctx, path, goal)
	if runErr != nil && result.Analysis == nil {
		return mcp.NewToolResultError(result.Err), nil
	}

	run := snapshot.FromResult(path, goal, result)
	if err := s.store.Save(ctx, run); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving run: %v", err)), nil
	}
	if s.concepts != nil && result.Analysis != nil {
		if err := s.concepts.Add(ctx, result.Artifacts, result.Analysis.Concepts); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("indexing concepts: %v", err)), nil
		}
	}

	summary := result.Analysis.Summary
	return mcp.NewToolResultText(fmt.Sprintf(
		"Run %s complete: %d files analyzed, %d skipped, %d relationships, %d data flows, %d execution paths, %d concepts.",
		run.ID, summary.FilesAnalyzed, summary.FilesSkipped,
		len(result.Analysis.Relationships), len(result.Analysis.DataFlows),
		len(result.Analysis.ExecutionPaths), len(result.Analysis.Concepts),
	)), nil
}

// handleGetDependencyGraph formats a persisted run's graph.
func (s *Server) handleGetDependencyGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := request.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: run_id"), nil
	}
	run, err := s.store.Get(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found", runID)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Dependency graph: %d files, %d relationships.\n",
		len(run.Graph.Nodes), len(run.Graph.Edges)))
	for _, edge := range run.Graph.Edges {
		sb.WriteString(fmt.Sprintf("  %s -[%s]-> %s", edge.Source, edge.Kind, edge.Target))
		if edge.Symbol != "" {
			sb.WriteString(" (" + edge.Symbol + ")")
		}
		sb.WriteString("\n")
	}
	if len(run.Graph.Cycles) > 0 {
		sb.WriteString(fmt.Sprintf("\n%d dependency cycle(s):\n", len(run.Graph.Cycles)))
		for _, cycle := range run.Graph.Cycles {
			sb.WriteString("  " + strings.Join(cycle, " -> ") + "\n")
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetConcepts formats a persisted run's concepts with evidence and
// staleness.
func (s *Server) handleGetConcepts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := request.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: run_id"), nil
	}
	run, err := s.store.Get(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found", runID)), nil
	}
	if run.Analysis == nil || len(run.Analysis.Concepts) == 0 {
		return mcp.NewToolResultText("No concepts were extracted in this run."), nil
	}

	ix := run.Index()
	byName := make(map[string]string, len(run.Artifacts))
	for id, name := range run.Artifacts {
		byName[name] = id
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d concept(s):\n", len(run.Analysis.Concepts)))
	for _, c := range run.Analysis.Concepts {
		id := byName[c.Name]
		sb.WriteString(fmt.Sprintf("\n[%s] %s", c.Category, c.Name))
		if id != "" {
			sb.WriteString(" (artifact " + id)
			if ix.Outdated(id) {
				sb.WriteString(", OUTDATED")
			}
			sb.WriteString(")")
		}
		sb.WriteString("\n  " + c.Description + "\n")
		for _, ev := range c.Evidence {
			sb.WriteString(fmt.Sprintf("  evidence: %s:%d-%d\n", ev.FilePath, ev.StartLine, ev.EndLine))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleTraceArtifact resolves one artifact to its evidence ranges.
func (s *Server) handleTraceArtifact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := request.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: run_id"), nil
	}
	artifactID, err := request.RequireString("artifact_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: artifact_id"), nil
	}

	run, err := s.store.Get(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found", runID)), nil
	}
	ix := run.Index()
	evidence, err := ix.Trace(artifactID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("artifact %q not found", artifactID)), nil
	}

	var sb strings.Builder
	name := run.Artifacts[artifactID]
	if name != "" {
		sb.WriteString("Artifact backs concept: " + name + "\n")
	}
	if ix.Outdated(artifactID) {
		sb.WriteString("Status: OUTDATED (underlying code changed since registration)\n")
	} else {
		sb.WriteString("Status: fresh\n")
	}
	for _, ev := range evidence {
		sb.WriteString(fmt.Sprintf("  %s:%d-%d\n", ev.FilePath, ev.StartLine, ev.EndLine))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSearchConcepts performs semantic search over indexed concepts.
func (s *Server) handleSearchConcepts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.concepts == nil {
		return mcp.NewToolResultError("semantic search is not configured; set an embeddings API key"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	limit := request.GetInt("limit", 10)

	matches, err := s.concepts.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("No matching concepts. Run analyze_repo first to index a repository."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d concept(s):\n", len(matches)))
	for i, m := range matches {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Concept: %s [%s]\n", m.Name, m.Category))
		if m.FilePath != "" {
			sb.WriteString("File: " + m.FilePath + "\n")
		}
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", m.Similarity*100))
		sb.WriteString("\n" + m.Description + "\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// run loads a repository and executes the pipeline for a goal.
func (s *Server) run(ctx context.Context, path, goal string) (*pipeline.Result, error) {
	tree, err := repotree.Load(path, repotree.Options{Exclude: s.cfg.Selector.Denylist})
	if err != nil {
		return &pipeline.Result{Stage: pipeline.StageFailed, Err: err.Error()}, err
	}
	pipe := pipeline.New(s.cfg, s.oracle)
	return pipe.Run(ctx, tree, goal)
}
