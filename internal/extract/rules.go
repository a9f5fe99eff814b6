package extract

import (
	"regexp"
	"strings"

	"codelens/internal/model"
)

// importRule matches one import statement form; group is the submatch index
// holding the import target.
type importRule struct {
	re    *regexp.Regexp
	group int
}

// funcRule matches a function definition. nameGroup/paramsGroup/recvGroup
// index the captured name, parameter list, and receiver type (0 = absent).
type funcRule struct {
	re          *regexp.Regexp
	nameGroup   int
	paramsGroup int
	recvGroup   int
}

// classRule matches a class/struct/interface definition.
type classRule struct {
	re              *regexp.Regexp
	kind            string
	nameGroup       int
	extendsGroup    int
	implementsGroup int
}

// languageRules bundles the tables for one language.
type languageRules struct {
	imports []importRule
	funcs   []funcRule
	classes []classRule
}

func (r *languageRules) matchFunction(line string, lineNo int) (model.FunctionInfo, bool) {
	for _, fr := range r.funcs {
		m := fr.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fn := model.FunctionInfo{
			Name:      m[fr.nameGroup],
			Signature: strings.TrimSpace(line),
			StartLine: lineNo,
		}
		if fr.paramsGroup > 0 && fr.paramsGroup < len(m) {
			fn.Parameters = splitParams(m[fr.paramsGroup])
		}
		if fr.recvGroup > 0 && fr.recvGroup < len(m) {
			fn.Receiver = m[fr.recvGroup]
		}
		return fn, true
	}
	return model.FunctionInfo{}, false
}

func (r *languageRules) matchClass(line string, lineNo int) (model.ClassInfo, bool) {
	for _, cr := range r.classes {
		m := cr.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		cl := model.ClassInfo{
			Name:      m[cr.nameGroup],
			Kind:      cr.kind,
			StartLine: lineNo,
		}
		if cr.extendsGroup > 0 && cr.extendsGroup < len(m) {
			cl.Extends = strings.TrimSpace(m[cr.extendsGroup])
		}
		if cr.implementsGroup > 0 && cr.implementsGroup < len(m) && strings.TrimSpace(m[cr.implementsGroup]) != "" {
			for _, impl := range strings.Split(m[cr.implementsGroup], ",") {
				cl.Implements = append(cl.Implements, strings.TrimSpace(impl))
			}
		}
		return cl, true
	}
	return model.ClassInfo{}, false
}

// splitParams breaks a raw parameter list into bare parameter names,
// dropping type annotations and defaults.
func splitParams(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var names []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" || p == "self" || p == "cls" {
			continue
		}
		// Strip defaults ("x = 1") and type annotations ("x: int", "x int").
		if eq := strings.Index(p, "="); eq >= 0 {
			p = strings.TrimSpace(p[:eq])
		}
		if colon := strings.Index(p, ":"); colon >= 0 {
			p = strings.TrimSpace(p[:colon])
		}
		if sp := strings.IndexByte(p, ' '); sp >= 0 {
			p = p[:sp]
		}
		p = strings.TrimLeft(p, "*&.")
		if p != "" && isIdentifier(p) {
			names = append(names, p)
		}
	}
	return names
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}

// builtinRules returns the rule tables for the supported languages. The
// same table serves close dialects (TypeScript reuses JavaScript rules).
func builtinRules() map[string]*languageRules {
	goRules := &languageRules{
		imports: []importRule{
			{re: regexp.MustCompile(`^\s*import\s+(?:\w+\s+)?"([^"]+)"`), group: 1},
			{re: regexp.MustCompile(`^\s+(?:\w+\s+)?"([^"]+)"\s*$`), group: 1},
		},
		funcs: []funcRule{
			{re: regexp.MustCompile(`^func\s+\((\w+)\s+\*?(\w+)\)\s+(\w+)\s*\(([^)]*)\)`), nameGroup: 3, paramsGroup: 4, recvGroup: 2},
			{re: regexp.MustCompile(`^func\s+(\w+)\s*\(([^)]*)\)`), nameGroup: 1, paramsGroup: 2},
		},
		classes: []classRule{
			{re: regexp.MustCompile(`^type\s+(\w+)\s+struct\b`), kind: "struct", nameGroup: 1},
			{re: regexp.MustCompile(`^type\s+(\w+)\s+interface\b`), kind: "interface", nameGroup: 1},
		},
	}

	jsRules := &languageRules{
		imports: []importRule{
			{re: regexp.MustCompile(`^\s*import\s+.*\s+from\s+['"]([^'"]+)['"]`), group: 1},
			{re: regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`), group: 1},
			{re: regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`), group: 1},
		},
		funcs: []funcRule{
			{re: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*(\w+)\s*\(([^)]*)`), nameGroup: 1, paramsGroup: 2},
			{re: regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?\(([^)]*)\)\s*=>`), nameGroup: 1, paramsGroup: 2},
			{re: regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?function\b\s*\(([^)]*)`), nameGroup: 1, paramsGroup: 2},
		},
		classes: []classRule{
			{re: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?class\s+(\w+)(?:\s+extends\s+([\w.]+))?(?:\s+implements\s+([\w.,\s]+))?`), kind: "class", nameGroup: 1, extendsGroup: 2, implementsGroup: 3},
			{re: regexp.MustCompile(`^\s*(?:export\s+)?interface\s+(\w+)(?:\s+extends\s+([\w.,\s]+))?`), kind: "interface", nameGroup: 1, extendsGroup: 2},
		},
	}

	pyRules := &languageRules{
		imports: []importRule{
			{re: regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\b`), group: 1},
			{re: regexp.MustCompile(`^\s*import\s+([\w.]+)`), group: 1},
		},
		funcs: []funcRule{
			{re: regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)\s*\(([^)]*)`), nameGroup: 1, paramsGroup: 2},
		},
		classes: []classRule{
			{re: regexp.MustCompile(`^\s*class\s+(\w+)(?:\s*\(\s*([\w.,\s]*)\s*\))?\s*:`), kind: "class", nameGroup: 1, extendsGroup: 2},
		},
	}

	javaRules := &languageRules{
		imports: []importRule{
			{re: regexp.MustCompile(`^\s*import\s+(?:static\s+)?([\w.]+)\s*;`), group: 1},
		},
		funcs: []funcRule{
			{re: regexp.MustCompile(`^\s*(?:public|private|protected)\s+(?:static\s+)?(?:final\s+)?[\w<>\[\]]+\s+(\w+)\s*\(([^)]*)`), nameGroup: 1, paramsGroup: 2},
		},
		classes: []classRule{
			{re: regexp.MustCompile(`^\s*(?:public\s+|abstract\s+|final\s+)*class\s+(\w+)(?:\s+extends\s+([\w<>.]+))?(?:\s+implements\s+([\w<>.,\s]+))?`), kind: "class", nameGroup: 1, extendsGroup: 2, implementsGroup: 3},
			{re: regexp.MustCompile(`^\s*(?:public\s+)?interface\s+(\w+)(?:\s+extends\s+([\w<>.,\s]+))?`), kind: "interface", nameGroup: 1, extendsGroup: 2},
		},
	}

	rubyRules := &languageRules{
		imports: []importRule{
			{re: regexp.MustCompile(`^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`), group: 1},
		},
		funcs: []funcRule{
			{re: regexp.MustCompile(`^\s*def\s+(?:self\.)?(\w+[?!]?)\s*(?:\(([^)]*)\))?`), nameGroup: 1, paramsGroup: 2},
		},
		classes: []classRule{
			{re: regexp.MustCompile(`^\s*class\s+(\w+)(?:\s*<\s*([\w:]+))?`), kind: "class", nameGroup: 1, extendsGroup: 2},
			{re: regexp.MustCompile(`^\s*module\s+(\w+)`), kind: "module", nameGroup: 1},
		},
	}

	return map[string]*languageRules{
		"Go":         goRules,
		"JavaScript": jsRules,
		"TypeScript": jsRules,
		"Vue":        jsRules,
		"Svelte":     jsRules,
		"Python":     pyRules,
		"Java":       javaRules,
		"Kotlin":     javaRules,
		"C#":         javaRules,
		"Ruby":       rubyRules,
	}
}

// genericRules is the fallback table for languages without a dedicated
// entry (Rust, C, C++, PHP, Swift, Scala, Dart, Elixir, Lua, Perl, Shell,
// and anything new the tree walker learns to recognize). The patterns
// cover the import and definition forms those languages share; a file
// that matches nothing still analyzes, it just contributes no structure.
func genericRules() *languageRules {
	return &languageRules{
		imports: []importRule{
			{re: regexp.MustCompile(`^\s*#include\s*["<]([^">]+)[">]`), group: 1},
			{re: regexp.MustCompile(`^\s*(?:use|alias)\s+([\w.:\\]+)`), group: 1},
			{re: regexp.MustCompile(`^\s*import\s+['"]?([\w./:-]+)['"]?`), group: 1},
			{re: regexp.MustCompile(`require(?:_once)?\s*\(?\s*['"]([^'"]+)['"]`), group: 1},
			{re: regexp.MustCompile(`^\s*source\s+([\w./-]+)`), group: 1},
		},
		funcs: []funcRule{
			{re: regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+(\w+)(?:<[^>]*>)?\s*\(([^)]*)`), nameGroup: 1, paramsGroup: 2},
			{re: regexp.MustCompile(`^\s*(?:public\s+|private\s+|internal\s+|static\s+|override\s+)*func\s+(\w+)\s*\(([^)]*)`), nameGroup: 1, paramsGroup: 2},
			{re: regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+|static\s+|local\s+)*function\s+(\w+)\s*\(([^)]*)`), nameGroup: 1, paramsGroup: 2},
			{re: regexp.MustCompile(`^\s*(?:override\s+|private\s+)*defp?\s+(\w+[?!]?)\s*(?:\(([^)]*))?`), nameGroup: 1, paramsGroup: 2},
			{re: regexp.MustCompile(`^\s*sub\s+(\w+)`), nameGroup: 1},
			{re: regexp.MustCompile(`^\s*(\w+)\s*\(\)\s*\{`), nameGroup: 1},
			// C-style "type name(params) {" on one line; the trailing brace
			// keeps call sites like "return foo(x)" out.
			{re: regexp.MustCompile(`^\s*(?:[\w*]+\s+)+\*?(\w+)\s*\(([^)]*)\)\s*\{\s*$`), nameGroup: 1, paramsGroup: 2},
		},
		classes: []classRule{
			{re: regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+|typedef\s+)?struct\s+(\w+)`), kind: "struct", nameGroup: 1},
			{re: regexp.MustCompile(`^\s*(?:abstract\s+|final\s+|open\s+|sealed\s+|case\s+)*class\s+(\w+)(?:\s*(?:extends|:)\s*([\w.,<>\s]+))?`), kind: "class", nameGroup: 1, extendsGroup: 2},
			{re: regexp.MustCompile(`^\s*(?:pub\s+)?trait\s+(\w+)`), kind: "trait", nameGroup: 1},
			{re: regexp.MustCompile(`^\s*(?:pub\s+)?enum\s+(\w+)`), kind: "enum", nameGroup: 1},
			{re: regexp.MustCompile(`^\s*(?:public\s+)?interface\s+(\w+)`), kind: "interface", nameGroup: 1},
			{re: regexp.MustCompile(`^\s*protocol\s+(\w+)`), kind: "interface", nameGroup: 1},
			{re: regexp.MustCompile(`^\s*defmodule\s+([\w.]+)`), kind: "module", nameGroup: 1},
		},
	}
}
