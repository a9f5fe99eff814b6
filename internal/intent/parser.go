// Package intent turns a natural-language learning goal into the structured
// Intent the selector scores against. Classification is rule-based over one
// injected keyword table; the optional enrichment oracle only ever adds
// free-text keywords on top.
package intent

import (
	"sort"
	"strings"

	"codelens/internal/model"
)

// categorySignals maps each intent category to the phrases that indicate it
// in a goal. A goal can hit several categories; the strongest hit becomes
// primary and the rest secondary.
var categorySignals = map[model.IntentCategory][]string{
	model.IntentLearnFeature:              {"learn", "understand how", "how does", "feature", "works"},
	model.IntentInterviewPrep:             {"interview", "prepare", "questions", "quiz"},
	model.IntentArchitectureUnderstanding: {"architecture", "structure", "overview", "organized", "design", "big picture"},
	model.IntentGenerateMaterials:         {"flashcard", "material", "study", "notes", "summary"},
	model.IntentFocusOnTechnology:         {"technology", "framework", "library", "using"},
	model.IntentBackendFlow:               {"backend", "api", "server", "database", "endpoint", "request"},
	model.IntentFrontendFlow:              {"frontend", "ui", "component", "page", "render", "browser"},
}

// knownTechnologies are recognized technology terms. A goal mentioning one
// both records the technology and tilts classification toward
// focus-on-technology.
var knownTechnologies = []string{
	"react", "vue", "angular", "svelte", "next", "nuxt",
	"express", "fastify", "django", "flask", "rails", "spring",
	"go", "golang", "python", "typescript", "javascript", "java", "rust", "ruby",
	"postgres", "mysql", "sqlite", "mongodb", "redis",
	"docker", "kubernetes", "graphql", "grpc", "kafka", "rabbitmq",
}

// audienceSignals map phrases to audience levels.
var audienceSignals = map[model.AudienceLevel][]string{
	model.AudienceBeginner: {"beginner", "new to", "basics", "simple", "first time"},
	model.AudienceAdvanced: {"advanced", "deep dive", "internals", "expert", "in depth"},
}

// stopwords are dropped when deriving keywords from the goal text.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"to": true, "for": true, "and": true, "or": true, "is": true, "are": true,
	"how": true, "what": true, "i": true, "me": true, "my": true, "this": true,
	"that": true, "with": true, "about": true, "want": true, "like": true,
	"does": true, "do": true, "it": true, "works": true, "work": true,
	"understand": true, "learn": true, "show": true, "explain": true,
}

// Parser builds Intents from goals using an injected category→keyword table
// (the consolidated rule table; see config.IntentKeywords).
type Parser struct {
	categoryKeywords map[string][]string
}

// NewParser creates a Parser over the given category keyword table.
func NewParser(categoryKeywords map[string][]string) *Parser {
	return &Parser{categoryKeywords: categoryKeywords}
}

// Parse classifies the goal and derives the rule-based keyword set. The
// returned Intent is complete and usable as-is; WithEnrichment produces a
// new Intent if oracle keywords arrive later.
func (p *Parser) Parse(goal string) *model.Intent {
	lower := strings.ToLower(goal)

	// Score each category by signal hits.
	scores := make(map[model.IntentCategory]int)
	for cat, signals := range categorySignals {
		for _, sig := range signals {
			if strings.Contains(lower, sig) {
				scores[cat]++
			}
		}
	}

	techs := detectTechnologies(lower)
	if len(techs) > 0 {
		scores[model.IntentFocusOnTechnology]++
	}

	primary, secondary, confidence := rankCategories(scores)

	keywords := deriveKeywords(lower, techs)
	if cat, ok := p.categoryKeywords[string(primary)]; ok {
		keywords = append(keywords, cat...)
	}
	for _, sec := range secondary {
		if cat, ok := p.categoryKeywords[string(sec)]; ok {
			keywords = append(keywords, cat...)
		}
	}

	return &model.Intent{
		Goal:         goal,
		Primary:      primary,
		Secondary:    secondary,
		Audience:     detectAudience(lower),
		Technologies: techs,
		Confidence:   confidence,
		Keywords:     dedupe(keywords),
	}
}

// WithEnrichment returns a copy of the intent whose keyword set merges the
// oracle-suggested keywords. The original intent is left untouched.
func WithEnrichment(in *model.Intent, extra []string) *model.Intent {
	merged := *in
	kws := make([]string, 0, len(in.Keywords)+len(extra))
	kws = append(kws, in.Keywords...)
	for _, kw := range extra {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			kws = append(kws, kw)
		}
	}
	merged.Keywords = dedupe(kws)
	return &merged
}

// rankCategories picks the primary and secondary categories and a
// confidence score from the signal hit counts. No hits at all defaults to
// learn-feature with low confidence.
func rankCategories(scores map[model.IntentCategory]int) (model.IntentCategory, []model.IntentCategory, float64) {
	if len(scores) == 0 {
		return model.IntentLearnFeature, nil, 0.3
	}

	type catScore struct {
		cat   model.IntentCategory
		score int
	}
	ranked := make([]catScore, 0, len(scores))
	total := 0
	for cat, s := range scores {
		ranked = append(ranked, catScore{cat, s})
		total += s
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].cat < ranked[j].cat
	})

	primary := ranked[0].cat
	var secondary []model.IntentCategory
	for _, cs := range ranked[1:] {
		secondary = append(secondary, cs.cat)
	}

	// Confidence grows with the primary's share of all signal hits and with
	// the absolute hit count, capped below 1.
	share := float64(ranked[0].score) / float64(total)
	confidence := 0.4 + 0.4*share + 0.05*float64(ranked[0].score)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return primary, secondary, confidence
}

func detectTechnologies(lower string) []string {
	var techs []string
	for _, tech := range knownTechnologies {
		if containsWord(lower, tech) {
			techs = append(techs, tech)
		}
	}
	return techs
}

func detectAudience(lower string) model.AudienceLevel {
	for level, signals := range audienceSignals {
		for _, sig := range signals {
			if strings.Contains(lower, sig) {
				return level
			}
		}
	}
	return model.AudienceIntermediate
}

// deriveKeywords tokenizes the goal, drops stopwords and short tokens, and
// appends detected technologies.
func deriveKeywords(lower string, techs []string) []string {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})

	var kws []string
	for _, f := range fields {
		if len(f) < 3 || stopwords[f] {
			continue
		}
		kws = append(kws, f)
	}
	kws = append(kws, techs...)
	return kws
}

// containsWord checks for a whole-word occurrence so "go" does not match
// inside "mongodb".
func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(s[start-1])
		afterOK := end == len(s) || !isWordChar(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func dedupe(kws []string) []string {
	seen := make(map[string]bool, len(kws))
	out := make([]string, 0, len(kws))
	for _, kw := range kws {
		if !seen[kw] {
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}
