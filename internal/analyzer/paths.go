package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"codelens/internal/graph"
	"codelens/internal/model"
)

// routeRegistration spots handler/route hookups, a second entry-point
// signal next to main functions and entry_point-role files.
var routeRegistration = regexp.MustCompile(`\.(?i:get|post|put|delete|patch|use|route|handle|handlefunc|addroute)\s*\(`)

// entryPoint is a candidate start for execution tracing.
type entryPoint struct {
	file     string
	function string
}

// traceExecutionPaths finds entry points heuristically and walks calls
// edges from each, bounded in depth; revisiting a (file, function) pair
// truncates that branch instead of looping.
func (a *Analyzer) traceExecutionPaths(selection *model.SelectionResult, analysis *model.MultiFileAnalysis, g *graph.DependencyGraph) []model.ExecutionPath {
	maxDepth := a.cfg.MaxPathDepth
	if maxDepth < 1 {
		maxDepth = 10
	}
	maxPaths := a.cfg.MaxPaths
	if maxPaths < 1 {
		maxPaths = 20
	}

	var paths []model.ExecutionPath
	for _, entry := range findEntryPoints(selection, analysis) {
		if len(paths) >= maxPaths {
			break
		}

		steps := []model.PathStep{{FilePath: entry.file, Function: entry.function}}
		visited := map[string]bool{entry.file + "#" + entry.function: true}
		a.walkCalls(entry.file, entry.function, analysis, g, visited, &steps, maxDepth)

		// A single-step path is just the entry point restated.
		if len(steps) > 1 {
			paths = append(paths, model.ExecutionPath{Entry: entry.file, Steps: steps})
		}
	}
	return paths
}

// walkCalls appends the first unvisited callee at each level, following the
// dominant call chain rather than fanning out into every branch.
func (a *Analyzer) walkCalls(file, function string, analysis *model.MultiFileAnalysis, g *graph.DependencyGraph, visited map[string]bool, steps *[]model.PathStep, depthLeft int) {
	if depthLeft <= 0 {
		return
	}

	fn := findFunction(analysis, file, function)

	for _, rel := range g.EdgesFrom(file) {
		if rel.Kind != model.RelCalls {
			continue
		}
		// When the caller's range is known, only call sites inside it count.
		if fn != nil && fn.EndLine >= fn.StartLine {
			if rel.EvidenceLine < fn.StartLine || rel.EvidenceLine > fn.EndLine {
				continue
			}
		}
		key := rel.Target + "#" + rel.Symbol
		if visited[key] {
			continue
		}
		visited[key] = true
		*steps = append(*steps, model.PathStep{FilePath: rel.Target, Function: rel.Symbol})
		a.walkCalls(rel.Target, rel.Symbol, analysis, g, visited, steps, depthLeft-1)
		return
	}
}

// findEntryPoints combines three heuristics: functions literally named
// main, the selector's entry_point role assignments, and files registering
// routes/handlers.
func findEntryPoints(selection *model.SelectionResult, analysis *model.MultiFileAnalysis) []entryPoint {
	var entries []entryPoint
	seen := make(map[string]bool)

	add := func(file, function string) {
		key := file + "#" + function
		if !seen[key] {
			seen[key] = true
			entries = append(entries, entryPoint{file: file, function: function})
		}
	}

	for _, path := range orderedPaths(analysis) {
		for _, fn := range analysis.Files[path].Functions {
			if fn.Name == "main" {
				add(path, fn.Name)
			}
		}
	}

	for _, sf := range selection.Files {
		if sf.Score.Role != model.RoleEntryPoint {
			continue
		}
		fa, ok := analysis.Files[sf.File.Path]
		if !ok {
			continue
		}
		if len(fa.Functions) > 0 {
			add(sf.File.Path, fa.Functions[0].Name)
		}
		if routeRegistration.MatchString(sf.File.Content) {
			for _, fn := range fa.Functions {
				if strings.Contains(strings.ToLower(fn.Name), "handle") ||
					strings.Contains(strings.ToLower(fn.Name), "route") {
					add(sf.File.Path, fn.Name)
				}
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].file != entries[j].file {
			return entries[i].file < entries[j].file
		}
		return entries[i].function < entries[j].function
	})
	return entries
}
