package selector

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"codelens/internal/config"
	"codelens/internal/model"
	"codelens/internal/repotree"
)

func testConfig() config.SelectorConfig {
	return config.SelectorConfig{
		Threshold:   0.15,
		MinSelected: 2,
		MaxSelected: 5,
		Denylist:    config.DefaultDenylist,
		SourceDirs:  config.DefaultSourceDirs,
		ContentCap:  10,
	}
}

func testIntent(goal string, keywords ...string) *model.Intent {
	return &model.Intent{Goal: goal, Primary: model.IntentLearnFeature, Keywords: keywords}
}

func routingTree() *model.RepositoryTree {
	return repotree.FromContents("/repo", map[string]string{
		"src/router.js": "export class Router {\n  dispatch(path) {}\n}\n",
		"src/routes.js": "import { Router } from './router';\nconst router = new Router();\nrouter.get('/users', list);\n",
		"src/db.js":     "export function connect(dsn) {}\n",
		"README.md":     "# demo\n",
	})
}

func TestSelectRankedByRelevance(t *testing.T) {
	sel := New(testConfig(), nil)
	in := testIntent("I want to learn how routing works", "routing")

	result, err := sel.Select(routingTree(), in)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if result.Scanned != 4 {
		t.Errorf("Scanned = %d, want 4", result.Scanned)
	}
	if len(result.Files) == 0 {
		t.Fatal("selection is empty")
	}
	// "routing" stems to "rout", which hits both router files by name and
	// content but not db.js by name.
	top := result.Files[0].File.Path
	if top != "src/router.js" && top != "src/routes.js" {
		t.Errorf("top file = %s, want a router file", top)
	}
	if !result.Contains("src/router.js") {
		t.Errorf("router.js missing from selection %v", result.Paths())
	}
}

func TestSelectScoresWithinRange(t *testing.T) {
	sel := New(testConfig(), nil)
	result, err := sel.Select(routingTree(), testIntent("routing", "routing", "dispatch"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	for _, sf := range result.Files {
		if sf.Score.Total < 0 || sf.Score.Total > 1 {
			t.Errorf("%s: Total = %v, out of [0,1]", sf.File.Path, sf.Score.Total)
		}
		if sf.Explanation == "" {
			t.Errorf("%s: missing explanation", sf.File.Path)
		}
	}
}

func TestSelectDeterministic(t *testing.T) {
	sel := New(testConfig(), nil)
	in := testIntent("learn routing", "routing")

	first, err := sel.Select(routingTree(), in)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := sel.Select(routingTree(), in)
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if !reflect.DeepEqual(first.Paths(), again.Paths()) {
			t.Fatalf("selection not deterministic: %v vs %v", first.Paths(), again.Paths())
		}
	}
}

func TestSelectDenylist(t *testing.T) {
	tree := repotree.FromContents("/repo", map[string]string{
		"src/app.js":            "export function boot(config) {}\n",
		"node_modules/lib/x.js": "module.exports = {};\n",
		"vendor/pkg/y.go":       "package pkg\n",
		"dist/bundle.min.js":    "!function(){}();\n",
	})
	sel := New(testConfig(), nil)

	result, err := sel.Select(tree, testIntent("learn the app", "app"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if result.Excluded != 3 {
		t.Errorf("Excluded = %d, want 3", result.Excluded)
	}
	for _, p := range result.Paths() {
		if strings.HasPrefix(p, "node_modules/") || strings.HasPrefix(p, "vendor/") || strings.HasPrefix(p, "dist/") {
			t.Errorf("denylisted path selected: %s", p)
		}
	}
}

func TestSelectIntentOverridesDenylist(t *testing.T) {
	tree := repotree.FromContents("/repo", map[string]string{
		"src/app.js":    "export function boot() {}\n",
		"vendor/dep.js": "export function vendored() {}\n",
	})
	sel := New(testConfig(), nil)

	// Asking about vendor code lifts the vendor exclusion.
	in := testIntent("how does the vendor code work", "vendor")
	result, err := sel.Select(tree, in)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if result.Excluded != 0 {
		t.Errorf("Excluded = %d, want 0 when the intent references vendor", result.Excluded)
	}
	if !result.Contains("vendor/dep.js") {
		t.Errorf("vendor file missing from %v", result.Paths())
	}
}

func TestSelectEmptyRepository(t *testing.T) {
	tree := repotree.FromContents("/repo", map[string]string{
		"README.md":   "# docs only\n",
		"config.yaml": "key: value\n",
	})
	sel := New(testConfig(), nil)

	result, err := sel.Select(tree, testIntent("anything", "anything"))
	if !errors.Is(err, model.ErrSelectionEmpty) {
		t.Fatalf("want ErrSelectionEmpty, got %v", err)
	}
	if result == nil || result.Scanned != 2 {
		t.Errorf("result should still report scan counts: %+v", result)
	}
}

func TestSelectFallbackNeverEmpty(t *testing.T) {
	sel := New(testConfig(), nil)

	// A nonsense goal matches nothing; the fallback tiers must still
	// produce a selection.
	result, err := sel.Select(routingTree(), testIntent("qwerty asdf", "qwerty"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(result.Files) == 0 {
		t.Fatal("fallback produced an empty selection")
	}
	if result.FallbackTier == 0 {
		t.Errorf("FallbackTier = 0, want an escalated tier")
	}
	for _, sf := range result.Files {
		if !strings.Contains(sf.Explanation, "fallback") {
			t.Errorf("%s: fallback pick should say so: %q", sf.File.Path, sf.Explanation)
		}
	}
}

func TestSelectRespectsMaxSelected(t *testing.T) {
	contents := make(map[string]string)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		contents["src/"+name+".js"] = "export function " + name + "Handler(handler) { /* handler */ }\n"
	}
	cfg := testConfig()
	cfg.MaxSelected = 3
	cfg.MinSelected = 2
	sel := New(cfg, nil)

	result, err := sel.Select(repotree.FromContents("/repo", contents), testIntent("handlers", "handler"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(result.Files) > 3 {
		t.Errorf("selected %d files, cap is 3", len(result.Files))
	}
}

func TestClassifyRolePatterns(t *testing.T) {
	roles := []config.RolePattern{
		{Pattern: "**/models/**", Role: "model"},
		{Pattern: "**/handlers/**", Role: "controller"},
	}
	sel := New(testConfig(), roles)

	cases := []struct {
		path, stem string
		want       model.FileRole
	}{
		{"src/models/user.js", "user", model.RoleModel},
		{"src/handlers/auth.js", "auth", model.RoleController},
		{"src/main.js", "main", model.RoleEntryPoint},
		{"src/misc.js", "misc", model.RoleUnclassified},
	}
	for _, tc := range cases {
		if got := sel.classify(tc.path, tc.stem); got != tc.want {
			t.Errorf("classify(%s) = %s, want %s", tc.path, got, tc.want)
		}
	}
}

func TestStemKeyword(t *testing.T) {
	cases := []struct{ in, want string }{
		{"routing", "rout"},
		{"handlers", "handl"},
		{"queries", "quer"},
		{"caches", "cach"},
		{"parser", "pars"},
		{"cached", "cach"},
		{"models", "model"},
		{"db", "db"},       // too short to stem
		{"uses", "uses"},   // stem would drop below four chars
	}
	for _, tc := range cases {
		if got := stemKeyword(tc.in); got != tc.want {
			t.Errorf("stemKeyword(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
