package mcp

import "github.com/mark3labs/mcp-go/mcp"

// selectFilesTool defines the select_files MCP tool.
var selectFilesTool = mcp.NewTool("select_files",
	mcp.WithDescription("Select the files most relevant to a learning goal, with a relevance explanation for each."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the repository root"),
	),
	mcp.WithString("goal",
		mcp.Required(),
		mcp.Description("Natural language learning goal, e.g. 'I want to learn how routing works'"),
	),
)

// analyzeRepoTool defines the analyze_repo MCP tool.
var analyzeRepoTool = mcp.NewTool("analyze_repo",
	mcp.WithDescription("Run the full analysis for a learning goal: file selection, cross-file relationships, dependency graph, data flows, execution paths, and concepts. Returns the run ID used by the other tools."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the repository root"),
	),
	mcp.WithString("goal",
		mcp.Required(),
		mcp.Description("Natural language learning goal"),
	),
)

// getDependencyGraphTool defines the get_dependency_graph MCP tool.
var getDependencyGraphTool = mcp.NewTool("get_dependency_graph",
	mcp.WithDescription("Get the dependency graph of a completed run, including any dependency cycles."),
	mcp.WithString("run_id",
		mcp.Required(),
		mcp.Description("ID of a completed analysis run"),
	),
)

// getConceptsTool defines the get_concepts MCP tool.
var getConceptsTool = mcp.NewTool("get_concepts",
	mcp.WithDescription("Get the concepts extracted by a completed run, each with its code evidence and staleness flag."),
	mcp.WithString("run_id",
		mcp.Required(),
		mcp.Description("ID of a completed analysis run"),
	),
)

// traceArtifactTool defines the trace_artifact MCP tool.
var traceArtifactTool = mcp.NewTool("trace_artifact",
	mcp.WithDescription("Trace an artifact back to the exact file and line ranges that back it."),
	mcp.WithString("run_id",
		mcp.Required(),
		mcp.Description("ID of a completed analysis run"),
	),
	mcp.WithString("artifact_id",
		mcp.Required(),
		mcp.Description("Artifact ID from get_concepts"),
	),
)

// searchConceptsTool defines the search_concepts MCP tool.
var searchConceptsTool = mcp.NewTool("search_concepts",
	mcp.WithDescription("Search indexed concepts semantically across all runs."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
)
