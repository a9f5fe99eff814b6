package analyzer

import (
	"path/filepath"
	"sort"
	"strings"

	"codelens/internal/model"
)

// detectRelationships resolves import statements against the analyzed set
// and matches extracted symbol names across files. Every edge carries the
// line where the relationship was observed.
func (a *Analyzer) detectRelationships(tree *model.RepositoryTree, analysis *model.MultiFileAnalysis) []model.Relationship {
	var rels []model.Relationship

	defs := buildSymbolIndex(analysis)

	for _, src := range orderedPaths(analysis) {
		fa := analysis.Files[src]

		rels = append(rels, resolveImports(src, fa, analysis)...)
		rels = append(rels, matchInheritance(src, fa, defs)...)
		rels = append(rels, a.matchCalls(tree, src, fa, defs)...)
	}

	return rels
}

// symbolIndex maps a symbol name to the files defining it.
type symbolIndex map[string][]string

// maxDefiners drops symbols defined in too many files: they are almost
// always generic names (New, String, handler) whose matches would be noise.
const maxDefiners = 3

func buildSymbolIndex(analysis *model.MultiFileAnalysis) symbolIndex {
	idx := make(symbolIndex)
	for _, path := range orderedPaths(analysis) {
		fa := analysis.Files[path]
		for _, fn := range fa.Functions {
			if usableSymbol(fn.Name) {
				idx[fn.Name] = append(idx[fn.Name], path)
			}
		}
		for _, cl := range fa.Classes {
			if usableSymbol(cl.Name) {
				idx[cl.Name] = append(idx[cl.Name], path)
			}
		}
	}
	for name, files := range idx {
		if len(files) > maxDefiners {
			delete(idx, name)
		}
	}
	return idx
}

// usableSymbol filters out names too short or too generic to match safely.
func usableSymbol(name string) bool {
	if len(name) < 4 {
		return false
	}
	switch strings.ToLower(name) {
	case "main", "init", "test", "setup", "new", "name", "data", "init_", "index":
		return false
	}
	return true
}

// resolveImports maps each import statement onto files present in the
// analyzed set: a target resolving to a single file yields an imports edge;
// a target resolving to a directory of analyzed files yields uses edges.
// Unresolvable targets (stdlib, third-party) produce nothing.
func resolveImports(src string, fa *model.FileAnalysis, analysis *model.MultiFileAnalysis) []model.Relationship {
	var rels []model.Relationship
	for _, imp := range fa.Imports {
		targets, kind := resolveImportTarget(src, imp.Target, analysis)
		for _, target := range targets {
			if target == src {
				continue
			}
			rels = append(rels, model.Relationship{
				Source:       src,
				Target:       target,
				Kind:         kind,
				Symbol:       imp.Target,
				EvidenceLine: imp.Line,
			})
		}
	}
	return rels
}

// resolveImportTarget finds the analyzed files an import target refers to.
// Relative targets are resolved against the importing file's directory;
// module-style targets match by path suffix, the same fuzzy containment the
// reverse-dependency expansion uses.
func resolveImportTarget(src, target string, analysis *model.MultiFileAnalysis) ([]string, model.RelationshipKind) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, model.RelImports
	}

	// Relative import: ./utils, ../lib/helpers.
	if strings.HasPrefix(target, ".") {
		base := filepath.ToSlash(filepath.Join(filepath.Dir(src), target))
		base = strings.TrimPrefix(base, "./")
		if hit := findBySuffix(base, analysis); len(hit) > 0 {
			return hit, model.RelImports
		}
		return nil, model.RelImports
	}

	// Module-style import: match the trailing path segments against
	// analyzed file paths (directory match → uses, file match → imports).
	normalized := strings.ReplaceAll(target, ".", "/")
	if hits := findBySuffix(normalized, analysis); len(hits) == 1 {
		return hits, model.RelImports
	} else if len(hits) > 1 {
		return hits, model.RelUses
	}
	if hits := findBySuffix(target, analysis); len(hits) == 1 {
		return hits, model.RelImports
	} else if len(hits) > 1 {
		return hits, model.RelUses
	}
	return nil, model.RelImports
}

// findBySuffix returns analyzed files whose path (sans extension) ends with
// the given base, or which live directly under it as a directory.
func findBySuffix(base string, analysis *model.MultiFileAnalysis) []string {
	base = strings.Trim(base, "/")
	if base == "" {
		return nil
	}
	var hits []string
	for _, path := range orderedPaths(analysis) {
		noExt := strings.TrimSuffix(path, filepath.Ext(path))
		if noExt == base || strings.HasSuffix(noExt, "/"+base) {
			hits = append(hits, path)
			continue
		}
		// Directory target: src/utils matches src/utils/format.js and the
		// conventional index module.
		if strings.HasPrefix(path, base+"/") || strings.HasSuffix(filepath.ToSlash(filepath.Dir(path)), base) {
			hits = append(hits, path)
		}
	}
	sort.Strings(hits)
	return hits
}

// matchInheritance emits extends/implements edges from extracted class
// declarations whose parent or interface is defined in another analyzed file.
func matchInheritance(src string, fa *model.FileAnalysis, defs symbolIndex) []model.Relationship {
	var rels []model.Relationship
	for _, cl := range fa.Classes {
		if cl.Extends != "" {
			for _, def := range defs[baseSymbol(cl.Extends)] {
				if def != src {
					rels = append(rels, model.Relationship{
						Source: src, Target: def, Kind: model.RelExtends,
						Symbol: cl.Extends, EvidenceLine: cl.StartLine,
					})
				}
			}
		}
		for _, iface := range cl.Implements {
			for _, def := range defs[baseSymbol(iface)] {
				if def != src {
					rels = append(rels, model.Relationship{
						Source: src, Target: def, Kind: model.RelImplements,
						Symbol: iface, EvidenceLine: cl.StartLine,
					})
				}
			}
		}
	}
	return rels
}

// baseSymbol strips qualifiers: pkg.Type → Type, Name::Space → Space.
func baseSymbol(name string) string {
	if i := strings.LastIndexAny(name, ".:"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// matchCalls scans each file's content for call sites of symbols defined
// in other analyzed files, emitting a calls edge per observed line.
func (a *Analyzer) matchCalls(tree *model.RepositoryTree, src string, fa *model.FileAnalysis, defs symbolIndex) []model.Relationship {
	rec, ok := tree.Files[src]
	if !ok {
		return nil
	}

	// Symbols defined locally never produce cross-file call edges.
	local := make(map[string]bool)
	for _, fn := range fa.Functions {
		local[fn.Name] = true
	}
	for _, cl := range fa.Classes {
		local[cl.Name] = true
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		if !local[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var rels []model.Relationship
	lines := strings.Split(rec.Content, "\n")
	for i, line := range lines {
		for _, name := range names {
			if !callsSymbol(line, name) {
				continue
			}
			for _, def := range defs[name] {
				if def == src {
					continue
				}
				rels = append(rels, model.Relationship{
					Source: src, Target: def, Kind: model.RelCalls,
					Symbol: name, EvidenceLine: i + 1,
				})
			}
		}
	}
	return rels
}

// callsSymbol reports whether the line invokes or instantiates the symbol:
// the name followed by an opening paren (or preceded by "new"), with a
// non-identifier character before it so substrings do not match.
func callsSymbol(line, name string) bool {
	idx := 0
	for {
		i := strings.Index(line[idx:], name)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(name)

		boundedBefore := start == 0 || !isIdentByte(line[start-1])
		if boundedBefore && end < len(line) {
			rest := strings.TrimLeft(line[end:], " ")
			if strings.HasPrefix(rest, "(") {
				return true
			}
		}
		idx = start + 1
		if idx >= len(line) {
			return false
		}
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
