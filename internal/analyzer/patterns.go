package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"codelens/internal/graph"
	"codelens/internal/model"
)

// detectedPattern is an architectural pattern spanning multiple files,
// found by a rule-based matcher over roles, naming, and the graph.
type detectedPattern struct {
	name        string
	description string
	files       []string
}

// triadRule names a three-part pattern and the token each part answers to.
type triadRule struct {
	name   string
	parts  [3]string // matched against roles and path tokens
	byRole bool
}

var triadRules = []triadRule{
	{name: "MVC architecture", parts: [3]string{"model", "view", "controller"}, byRole: true},
	{name: "Model-Repository-Service layering", parts: [3]string{"model", "repository", "service"}},
	{name: "Handler-Service-Store layering", parts: [3]string{"handler", "service", "store"}},
}

// detectPatterns applies the triad matchers. A pattern is only reported
// when each part has at least one file and at least two of the parts are
// connected in the dependency graph — three conventionally named but
// unrelated files are not an architecture.
func (a *Analyzer) detectPatterns(tree *model.RepositoryTree, selection *model.SelectionResult, analysis *model.MultiFileAnalysis, g *graph.DependencyGraph) []detectedPattern {
	roleByPath := make(map[string]model.FileRole, len(selection.Files))
	for _, sf := range selection.Files {
		roleByPath[sf.File.Path] = sf.Score.Role
	}

	var patterns []detectedPattern
	for _, rule := range triadRules {
		var partFiles [3][]string
		for _, path := range orderedPaths(analysis) {
			for i, token := range rule.parts {
				if matchesPart(path, roleByPath[path], token, rule.byRole) {
					partFiles[i] = append(partFiles[i], path)
				}
			}
		}
		if len(partFiles[0]) == 0 || len(partFiles[1]) == 0 || len(partFiles[2]) == 0 {
			continue
		}

		files := uniqueFiles(partFiles)
		if !anyConnected(files, g) {
			continue
		}

		patterns = append(patterns, detectedPattern{
			name: rule.name,
			description: fmt.Sprintf("%s spanning %s, %s, and %s components",
				rule.name, rule.parts[0], rule.parts[1], rule.parts[2]),
			files: files,
		})
	}
	return patterns
}

// matchesPart checks one file against one triad part, by selector role
// when the rule says so, and by path token either way.
func matchesPart(path string, role model.FileRole, token string, byRole bool) bool {
	if byRole && string(role) == token {
		return true
	}
	lower := strings.ToLower(path)
	return strings.Contains(lower, token)
}

// anyConnected reports whether at least one graph edge links two files of
// the candidate set.
func anyConnected(files []string, g *graph.DependencyGraph) bool {
	inSet := make(map[string]bool, len(files))
	for _, f := range files {
		inSet[f] = true
	}
	for _, f := range files {
		for _, rel := range g.EdgesFrom(f) {
			if inSet[rel.Target] && rel.Target != f {
				return true
			}
		}
	}
	return false
}

func uniqueFiles(parts [3][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range parts {
		for _, f := range part {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Strings(out)
	return out
}
