package graph

import "sort"

// Cycles returns the strongly connected components with more than one
// member, i.e. the dependency cycles of the graph. Cycles are informational,
// never an error. Components and their members are sorted for deterministic
// output.
func (g *DependencyGraph) Cycles() [][]string {
	var comps [][]string
	for _, comp := range g.StronglyConnected() {
		if len(comp) > 1 {
			comps = append(comps, comp)
		}
	}
	return comps
}

// StronglyConnected computes the strongly connected components using
// Tarjan's algorithm (iterative, so deep graphs cannot blow the stack).
func (g *DependencyGraph) StronglyConnected() [][]string {
	nodes := g.Nodes()

	index := make(map[string]int, len(nodes))
	lowlink := make(map[string]int, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	var stack []string
	next := 0

	// Deduplicated successor lists; the multigraph may carry parallel edges.
	succs := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		seen := make(map[string]bool)
		for _, e := range g.EdgesFrom(n) {
			if !seen[e.Target] {
				seen[e.Target] = true
				succs[n] = append(succs[n], e.Target)
			}
		}
		sort.Strings(succs[n])
	}

	var comps [][]string

	type frame struct {
		node string
		succ int
	}

	for _, start := range nodes {
		if _, visited := index[start]; visited {
			continue
		}

		callStack := []frame{{node: start}}
		index[start] = next
		lowlink[start] = next
		next++
		stack = append(stack, start)
		onStack[start] = true

		for len(callStack) > 0 {
			f := &callStack[len(callStack)-1]
			if f.succ < len(succs[f.node]) {
				w := succs[f.node][f.succ]
				f.succ++
				if _, visited := index[w]; !visited {
					index[w] = next
					lowlink[w] = next
					next++
					stack = append(stack, w)
					onStack[w] = true
					callStack = append(callStack, frame{node: w})
				} else if onStack[w] {
					if index[w] < lowlink[f.node] {
						lowlink[f.node] = index[w]
					}
				}
				continue
			}

			// Node finished: pop a component if this is a root.
			if lowlink[f.node] == index[f.node] {
				var comp []string
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, w)
					if w == f.node {
						break
					}
				}
				sort.Strings(comp)
				comps = append(comps, comp)
			}

			done := f.node
			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := &callStack[len(callStack)-1]
				if lowlink[done] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[done]
				}
			}
		}
	}

	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}
