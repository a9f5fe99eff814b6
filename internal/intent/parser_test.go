package intent

import (
	"reflect"
	"testing"

	"codelens/internal/model"
)

func testParser() *Parser {
	return NewParser(map[string][]string{
		"learn-feature":              {"feature", "service", "handler"},
		"architecture-understanding": {"main", "config", "router"},
		"backend-flow":               {"api", "route", "controller"},
	})
}

func TestParseClassifiesCategories(t *testing.T) {
	cases := []struct {
		goal string
		want model.IntentCategory
	}{
		{"I want to understand how the authentication feature works", model.IntentLearnFeature},
		{"prepare me for an interview about this codebase", model.IntentInterviewPrep},
		{"give me an overview of the architecture and structure", model.IntentArchitectureUnderstanding},
		{"generate flashcards and study notes", model.IntentGenerateMaterials},
		{"trace a request from the api endpoint to the database", model.IntentBackendFlow},
		{"how does the ui component render the page", model.IntentFrontendFlow},
	}
	for _, tc := range cases {
		in := testParser().Parse(tc.goal)
		if in.Primary != tc.want {
			t.Errorf("Parse(%q).Primary = %s, want %s", tc.goal, in.Primary, tc.want)
		}
		if in.Confidence <= 0 || in.Confidence > 1 {
			t.Errorf("Parse(%q).Confidence = %v, out of range", tc.goal, in.Confidence)
		}
	}
}

func TestParseDefaultsToLearnFeature(t *testing.T) {
	in := testParser().Parse("xyzzy plugh")
	if in.Primary != model.IntentLearnFeature {
		t.Errorf("Primary = %s, want learn-feature", in.Primary)
	}
	if in.Confidence != 0.3 {
		t.Errorf("Confidence = %v, want 0.3 for an unclassifiable goal", in.Confidence)
	}
}

func TestParseDetectsTechnologiesAsWholeWords(t *testing.T) {
	in := testParser().Parse("how is mongodb used here")
	for _, tech := range in.Technologies {
		if tech == "go" {
			t.Error("\"go\" must not match inside \"mongodb\"")
		}
	}
	if len(in.Technologies) != 1 || in.Technologies[0] != "mongodb" {
		t.Errorf("Technologies = %v, want [mongodb]", in.Technologies)
	}

	in = testParser().Parse("show me the go code for the scheduler")
	found := false
	for _, tech := range in.Technologies {
		if tech == "go" {
			found = true
		}
	}
	if !found {
		t.Errorf("standalone \"go\" should be detected, got %v", in.Technologies)
	}
	if in.Primary != model.IntentFocusOnTechnology {
		t.Errorf("Primary = %s, want focus-on-technology", in.Primary)
	}
}

func TestParseAudience(t *testing.T) {
	cases := []struct {
		goal string
		want model.AudienceLevel
	}{
		{"I am new to this, explain the basics", model.AudienceBeginner},
		{"deep dive into the scheduler internals", model.AudienceAdvanced},
		{"how does caching work", model.AudienceIntermediate},
	}
	for _, tc := range cases {
		if got := testParser().Parse(tc.goal).Audience; got != tc.want {
			t.Errorf("Parse(%q).Audience = %s, want %s", tc.goal, got, tc.want)
		}
	}
}

func TestParseKeywordsMergeRuleTable(t *testing.T) {
	in := testParser().Parse("understand how the routing feature works")

	// Goal-derived tokens survive, stopwords do not.
	if !in.HasKeyword("routing") {
		t.Errorf("keywords %v should include \"routing\"", in.Keywords)
	}
	if in.HasKeyword("the") || in.HasKeyword("how") {
		t.Errorf("stopwords leaked into keywords: %v", in.Keywords)
	}
	// The primary category's rule keywords are appended.
	if !in.HasKeyword("handler") {
		t.Errorf("category keywords missing from %v", in.Keywords)
	}

	// No duplicates.
	seen := make(map[string]bool)
	for _, kw := range in.Keywords {
		if seen[kw] {
			t.Errorf("duplicate keyword %q", kw)
		}
		seen[kw] = true
	}
}

func TestWithEnrichmentLeavesOriginalUntouched(t *testing.T) {
	in := testParser().Parse("understand the payment feature")
	before := append([]string(nil), in.Keywords...)

	merged := WithEnrichment(in, []string{"Checkout", "  stripe  ", "", "payment"})

	if !reflect.DeepEqual(in.Keywords, before) {
		t.Errorf("original intent mutated: %v", in.Keywords)
	}
	if !merged.HasKeyword("checkout") || !merged.HasKeyword("stripe") {
		t.Errorf("merged keywords missing enrichment terms: %v", merged.Keywords)
	}
	// "payment" was already present; the merge must not duplicate it.
	count := 0
	for _, kw := range merged.Keywords {
		if kw == "payment" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("payment appears %d times after merge", count)
	}
}

func TestParseSecondaryCategories(t *testing.T) {
	in := testParser().Parse("understand the architecture of the api server")
	if in.Primary != model.IntentArchitectureUnderstanding && in.Primary != model.IntentBackendFlow {
		t.Fatalf("Primary = %s", in.Primary)
	}
	if len(in.Secondary) == 0 {
		t.Error("a goal hitting two categories should carry a secondary")
	}
	for _, sec := range in.Secondary {
		if sec == in.Primary {
			t.Error("secondary must not repeat primary")
		}
	}
}
