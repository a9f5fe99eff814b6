// Package mcp exposes the comprehension engine to AI agents over the
// Model Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"codelens/internal/conceptindex"
	"codelens/internal/config"
	"codelens/internal/enrich"
	"codelens/internal/snapshot"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes analysis tools.
type Server struct {
	cfg      *config.Config
	store    *snapshot.Store
	concepts *conceptindex.Index // nil when no embedder is configured
	oracle   enrich.Oracle       // nil disables intent enrichment
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(cfg *config.Config, store *snapshot.Store, concepts *conceptindex.Index, oracle enrich.Oracle) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		concepts: concepts,
		oracle:   oracle,
	}

	s.mcp = server.NewMCPServer(
		"codelens",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(selectFilesTool, s.handleSelectFiles)
	s.mcp.AddTool(analyzeRepoTool, s.handleAnalyzeRepo)
	s.mcp.AddTool(getDependencyGraphTool, s.handleGetDependencyGraph)
	s.mcp.AddTool(getConceptsTool, s.handleGetConcepts)
	s.mcp.AddTool(traceArtifactTool, s.handleTraceArtifact)
	s.mcp.AddTool(searchConceptsTool, s.handleSearchConcepts)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
