// Package extract is the per-language structure extractor collaborator:
// given one file's content it returns the functions, classes, and imports
// with their line ranges. Extractors are pluggable; the shipped ones are
// heuristic line-scanners, deliberately tolerant of code that would not
// compile. Deep syntax parsing is out of scope.
package extract

import (
	"fmt"
	"strings"

	"codelens/internal/model"
)

// Extractor parses one file into a FileAnalysis. An error means this file
// could not be processed; callers skip the file and continue.
type Extractor interface {
	Extract(path, content, language string) (*model.FileAnalysis, error)
}

// Heuristic is the default Extractor: regex/line-scan rules per language,
// with a generic table for languages that have no dedicated rules.
type Heuristic struct {
	rules    map[string]*languageRules
	fallback *languageRules
}

// NewHeuristic creates the default extractor with rules for the supported
// languages plus the generic fallback.
func NewHeuristic() *Heuristic {
	return &Heuristic{rules: builtinRules(), fallback: genericRules()}
}

// Supports reports whether the extractor has dedicated rules for the
// language. Languages it does not support still extract, through the
// generic fallback table.
func (h *Heuristic) Supports(language string) bool {
	_, ok := h.rules[language]
	return ok
}

// Extract scans the file line by line against the language's rules.
func (h *Heuristic) Extract(path, content, language string) (*model.FileAnalysis, error) {
	rules, ok := h.rules[language]
	if !ok {
		rules = h.fallback
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("extract %s: empty file", path)
	}

	lines := strings.Split(content, "\n")
	fa := &model.FileAnalysis{Path: path, Language: language}

	// First pass: record each construct's start line.
	type construct struct {
		kind  int // 0 = function, 1 = class
		fn    model.FunctionInfo
		class model.ClassInfo
		start int
	}
	var constructs []construct

	for i, line := range lines {
		lineNo := i + 1

		for _, ir := range rules.imports {
			if m := ir.re.FindStringSubmatch(line); m != nil {
				fa.Imports = append(fa.Imports, model.ImportInfo{
					Target: importTarget(m, ir.group),
					Line:   lineNo,
				})
			}
		}

		if fn, ok := rules.matchFunction(line, lineNo); ok {
			constructs = append(constructs, construct{kind: 0, fn: fn, start: lineNo})
			continue
		}
		if cl, ok := rules.matchClass(line, lineNo); ok {
			constructs = append(constructs, construct{kind: 1, class: cl, start: lineNo})
		}
	}

	// Second pass: close each construct's range at the next same-or-shallower
	// construct, or end of file. Exact block ends would need real parsing;
	// this bound is sufficient for evidence ranges.
	for idx := range constructs {
		end := len(lines)
		if idx+1 < len(constructs) {
			end = constructs[idx+1].start - 1
		}
		if end < constructs[idx].start {
			end = constructs[idx].start
		}
		switch constructs[idx].kind {
		case 0:
			fn := constructs[idx].fn
			fn.EndLine = end
			fa.Functions = append(fa.Functions, fn)
		case 1:
			cl := constructs[idx].class
			cl.EndLine = end
			fa.Classes = append(fa.Classes, cl)
		}
	}

	return fa, nil
}

func importTarget(m []string, group int) string {
	if group < len(m) {
		return strings.Trim(strings.TrimSpace(m[group]), "\"'`;()")
	}
	return strings.TrimSpace(m[0])
}
