// Package graph holds the dependency graph of an analyzed selection:
// nodes are selected files, edges are evidenced relationships. Edge
// insertion enforces node membership so dangling edges never survive
// construction; cycles are permitted and detectable via SCC discovery.
package graph

import (
	"sort"

	"codelens/internal/model"
)

// DependencyGraph is a directed multigraph over selected file paths.
type DependencyGraph struct {
	nodes   map[string]struct{}
	edges   []model.Relationship
	out     map[string][]int // node → indices into edges
	dropped int
}

// New creates an empty graph.
func New() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]struct{}),
		out:   make(map[string][]int),
	}
}

// AddNode inserts a file path as a node. Adding an existing node is a no-op.
func (g *DependencyGraph) AddNode(path string) {
	g.nodes[path] = struct{}{}
}

// HasNode reports whether path is a member of the node set.
func (g *DependencyGraph) HasNode(path string) bool {
	_, ok := g.nodes[path]
	return ok
}

// AddEdge inserts a relationship edge. Edges whose endpoints are not both
// present nodes are dropped, not inserted; the drop is counted so the
// analyzer can log and report it.
func (g *DependencyGraph) AddEdge(rel model.Relationship) bool {
	if !g.HasNode(rel.Source) || !g.HasNode(rel.Target) {
		g.dropped++
		return false
	}
	g.edges = append(g.edges, rel)
	g.out[rel.Source] = append(g.out[rel.Source], len(g.edges)-1)
	return true
}

// Nodes returns the node paths in sorted order.
func (g *DependencyGraph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Edges returns all edges in insertion order.
func (g *DependencyGraph) Edges() []model.Relationship {
	return g.edges
}

// EdgesFrom returns the edges originating at the given node.
func (g *DependencyGraph) EdgesFrom(path string) []model.Relationship {
	idxs := g.out[path]
	out := make([]model.Relationship, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, g.edges[i])
	}
	return out
}

// DroppedEdges returns how many edges were rejected for referencing a
// non-member node.
func (g *DependencyGraph) DroppedEdges() int {
	return g.dropped
}

// NodeCount returns the number of nodes.
func (g *DependencyGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *DependencyGraph) EdgeCount() int { return len(g.edges) }
