package analyzer

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"codelens/internal/graph"
	"codelens/internal/model"
)

// Caps per concept source so one large file cannot flood the output.
const (
	maxClassConcepts    = 15
	maxFunctionConcepts = 10
	maxFlowConcepts     = 5
)

// extractConcepts aggregates classes, notable functions, detected patterns,
// and data flows into categorized Concept records. Every concept must carry
// at least one valid CodeEvidence; candidates whose evidence cannot be
// constructed are discarded at creation, never emitted empty.
func (a *Analyzer) extractConcepts(tree *model.RepositoryTree, analysis *model.MultiFileAnalysis, g *graph.DependencyGraph, patterns []detectedPattern) []*model.Concept {
	var concepts []*model.Concept

	emit := func(name string, cat model.ConceptCategory, desc string, evidence []model.CodeEvidence) {
		c, err := model.NewConcept(name, cat, desc, evidence)
		if err != nil {
			log.Printf("analyzer: discard concept %q: %v", name, err)
			return
		}
		concepts = append(concepts, c)
	}

	// Architectural patterns first: they carry the most context.
	for _, p := range patterns {
		var evidence []model.CodeEvidence
		for _, f := range p.files {
			if ev, ok := headEvidence(tree, f); ok {
				evidence = append(evidence, ev)
			}
		}
		emit(p.name, model.CategoryPattern, p.description, evidence)
	}

	// One architecture concept summarizing the graph when cycles or a
	// substantial structure exist.
	if g.EdgeCount() > 0 {
		if ev, ok := headEvidence(tree, g.Nodes()[0]); ok {
			desc := fmt.Sprintf("Dependency structure of %d files connected by %d relationships", g.NodeCount(), g.EdgeCount())
			if cycles := g.Cycles(); len(cycles) > 0 {
				desc += fmt.Sprintf("; %d dependency cycle(s) present", len(cycles))
			}
			emit("Module dependency structure", model.CategoryArchitecture, desc, []model.CodeEvidence{ev})
		}
	}

	concepts = append(concepts, a.classConcepts(tree, analysis)...)
	concepts = append(concepts, a.functionConcepts(tree, analysis, g)...)
	concepts = append(concepts, flowConcepts(tree, analysis)...)

	return concepts
}

// classConcepts turns extracted classes into class/data_structure concepts.
// Plain field-only structures are data structures; anything with behavior
// or inheritance is a class.
func (a *Analyzer) classConcepts(tree *model.RepositoryTree, analysis *model.MultiFileAnalysis) []*model.Concept {
	var out []*model.Concept
	for _, path := range orderedPaths(analysis) {
		for _, cl := range analysis.Files[path].Classes {
			if len(out) >= maxClassConcepts {
				return out
			}
			ev, err := evidenceFor(tree, path, cl.StartLine, cl.EndLine)
			if err != nil {
				log.Printf("analyzer: discard class concept %q: %v", cl.Name, err)
				continue
			}

			cat := model.CategoryClass
			if cl.Kind == "struct" && cl.Extends == "" && len(cl.Implements) == 0 {
				cat = model.CategoryDataStructure
			}
			desc := fmt.Sprintf("%s %s defined in %s", cl.Kind, cl.Name, path)
			if cl.Extends != "" {
				desc += ", extends " + cl.Extends
			}
			c, err := model.NewConcept(cl.Name, cat, desc, []model.CodeEvidence{ev})
			if err != nil {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// functionConcepts picks the most-referenced functions: in-degree on calls
// edges ranks them, so the concepts surface what the codebase actually
// leans on.
func (a *Analyzer) functionConcepts(tree *model.RepositoryTree, analysis *model.MultiFileAnalysis, g *graph.DependencyGraph) []*model.Concept {
	inDegree := make(map[string]int) // file#function
	for _, rel := range g.Edges() {
		if rel.Kind == model.RelCalls {
			inDegree[rel.Target+"#"+rel.Symbol]++
		}
	}

	type candidate struct {
		path  string
		fn    model.FunctionInfo
		score int
	}
	var candidates []candidate
	for _, path := range orderedPaths(analysis) {
		for _, fn := range analysis.Files[path].Functions {
			candidates = append(candidates, candidate{
				path:  path,
				fn:    fn,
				score: inDegree[path+"#"+fn.Name],
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].path != candidates[j].path {
			return candidates[i].path < candidates[j].path
		}
		return candidates[i].fn.Name < candidates[j].fn.Name
	})

	var out []*model.Concept
	for _, cand := range candidates {
		if len(out) >= maxFunctionConcepts {
			break
		}
		// Functions nothing calls are only notable if nothing is called at all.
		if cand.score == 0 && len(out) > 0 {
			break
		}
		ev, err := evidenceFor(tree, cand.path, cand.fn.StartLine, cand.fn.EndLine)
		if err != nil {
			continue
		}
		desc := fmt.Sprintf("function %s in %s", cand.fn.Name, cand.path)
		if cand.score > 0 {
			desc += fmt.Sprintf(", called from %d site(s) across the selection", cand.score)
		}
		c, err := model.NewConcept(cand.fn.Name, model.CategoryFunction, desc, []model.CodeEvidence{ev})
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// flowConcepts promotes multi-hop data flows to algorithm concepts, with
// one evidence range per hop.
func flowConcepts(tree *model.RepositoryTree, analysis *model.MultiFileAnalysis) []*model.Concept {
	var out []*model.Concept
	for _, flow := range analysis.DataFlows {
		if len(out) >= maxFlowConcepts {
			break
		}
		if len(flow.Hops) < 3 {
			continue
		}
		var evidence []model.CodeEvidence
		var files []string
		for _, hop := range flow.Hops {
			ev, err := evidenceFor(tree, hop.FilePath, hop.Line, hop.Line)
			if err != nil {
				continue
			}
			evidence = append(evidence, ev)
			files = append(files, hop.FilePath)
		}
		desc := fmt.Sprintf("value %q flows across %s", flow.Name, strings.Join(dedupeStrings(files), " -> "))
		c, err := model.NewConcept("Data flow: "+flow.Name, model.CategoryAlgorithm, desc, evidence)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// evidenceFor builds validated evidence against the file's real line count.
func evidenceFor(tree *model.RepositoryTree, path string, start, end int) (model.CodeEvidence, error) {
	rec, ok := tree.Files[path]
	if !ok {
		return model.CodeEvidence{}, fmt.Errorf("%w: unknown file %s", model.ErrEvidenceOutOfRange, path)
	}
	if end > rec.LineCount {
		end = rec.LineCount
	}
	return model.NewCodeEvidence(path, start, end, rec.LineCount)
}

// headEvidence is the first few lines of a file, used when a concept spans
// a whole file rather than one construct.
func headEvidence(tree *model.RepositoryTree, path string) (model.CodeEvidence, bool) {
	rec, ok := tree.Files[path]
	if !ok || rec.LineCount == 0 {
		return model.CodeEvidence{}, false
	}
	end := 10
	if end > rec.LineCount {
		end = rec.LineCount
	}
	ev, err := model.NewCodeEvidence(path, 1, end, rec.LineCount)
	if err != nil {
		return model.CodeEvidence{}, false
	}
	return ev, true
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
