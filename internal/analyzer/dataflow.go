package analyzer

import (
	"strings"

	"codelens/internal/graph"
	"codelens/internal/model"
)

// maxDataFlows bounds how many flows one analysis emits; flows beyond the
// cap add little over the graph itself.
const maxDataFlows = 30

// traceDataFlows follows named parameters across calls edges: each calls
// relationship seeds a flow at the call site, continues into the callee's
// parameter, and keeps walking outgoing calls edges whose evidence line
// mentions the tracked name, up to the configured hop bound.
func (a *Analyzer) traceDataFlows(tree *model.RepositoryTree, analysis *model.MultiFileAnalysis, g *graph.DependencyGraph) []model.DataFlow {
	maxHops := a.cfg.MaxFlowHops
	if maxHops < 1 {
		maxHops = 8
	}

	var flows []model.DataFlow
	seen := make(map[string]bool) // value name + origin, to avoid duplicate flows

	for _, src := range orderedPaths(analysis) {
		for _, rel := range g.EdgesFrom(src) {
			if rel.Kind != model.RelCalls {
				continue
			}
			callee := findFunction(analysis, rel.Target, rel.Symbol)
			if callee == nil || len(callee.Parameters) == 0 {
				continue
			}

			for _, param := range callee.Parameters {
				key := rel.Source + "#" + rel.Symbol + "#" + param
				if seen[key] {
					continue
				}
				seen[key] = true

				flow := model.DataFlow{
					Name: param,
					Hops: []model.FlowHop{
						{FilePath: rel.Source, Symbol: rel.Symbol, Line: rel.EvidenceLine},
						{FilePath: rel.Target, Symbol: param, Line: callee.StartLine},
					},
				}
				a.extendFlow(&flow, param, rel.Target, analysis, g, tree, maxHops)

				// A flow that never left the call site tells us nothing.
				if len(flow.Hops) >= 2 {
					flows = append(flows, flow)
				}
				if len(flows) >= maxDataFlows {
					return flows
				}
			}
		}
	}
	return flows
}

// extendFlow continues a flow from the given file: any outgoing calls edge
// whose evidence line mentions the tracked value adds a hop, and the walk
// recurses into that callee until the hop bound or a revisited file.
func (a *Analyzer) extendFlow(flow *model.DataFlow, value, from string, analysis *model.MultiFileAnalysis, g *graph.DependencyGraph, tree *model.RepositoryTree, maxHops int) {
	visited := map[string]bool{from: true}
	current := from

	for len(flow.Hops) < maxHops {
		next := ""
		for _, rel := range g.EdgesFrom(current) {
			if rel.Kind != model.RelCalls || visited[rel.Target] {
				continue
			}
			if !lineMentions(tree, rel.Source, rel.EvidenceLine, value) {
				continue
			}
			flow.Hops = append(flow.Hops, model.FlowHop{
				FilePath: rel.Target,
				Symbol:   rel.Symbol,
				Line:     rel.EvidenceLine,
			})
			next = rel.Target
			break
		}
		if next == "" {
			return
		}
		visited[next] = true
		current = next
	}
}

// lineMentions checks whether the 1-based line of the file contains the
// value name as a whole word.
func lineMentions(tree *model.RepositoryTree, path string, lineNo int, value string) bool {
	rec, ok := tree.Files[path]
	if !ok || lineNo < 1 {
		return false
	}
	lines := strings.Split(rec.Content, "\n")
	if lineNo > len(lines) {
		return false
	}
	line := lines[lineNo-1]

	idx := 0
	for {
		i := strings.Index(line[idx:], value)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(value)
		beforeOK := start == 0 || !isIdentByte(line[start-1])
		afterOK := end == len(line) || !isIdentByte(line[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

// findFunction locates a function by name within one file's analysis.
func findFunction(analysis *model.MultiFileAnalysis, path, name string) *model.FunctionInfo {
	fa, ok := analysis.Files[path]
	if !ok {
		return nil
	}
	for i := range fa.Functions {
		if fa.Functions[i].Name == name {
			return &fa.Functions[i]
		}
	}
	return nil
}
