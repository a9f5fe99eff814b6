// Package enrich consults an optional language-model oracle for additional
// search keywords. The oracle is advisory only: its output is treated as
// free text, never parsed as structured data, and any timeout or failure
// falls back to the rule-derived keywords without surfacing an error.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codelens/internal/model"
)

// Oracle proposes additional keywords for a learning goal given a short
// repository summary. Implementations must respect the context deadline.
type Oracle interface {
	SuggestKeywords(ctx context.Context, goal, repoSummary string) ([]string, error)
}

// maxSuggestions bounds how many oracle keywords are accepted per call.
const maxSuggestions = 15

// Keywords asks the oracle for suggestions with the given timeout. On any
// error (including timeout) it returns nil and a wrapped
// ErrEnrichmentUnavailable; callers proceed with rule-derived keywords and
// never show this to the user.
func Keywords(ctx context.Context, oracle Oracle, goal, repoSummary string, timeout time.Duration) ([]string, error) {
	if oracle == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := oracle.SuggestKeywords(ctx, goal, repoSummary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrEnrichmentUnavailable, err)
	}
	return ParseKeywordText(strings.Join(raw, "\n")), nil
}

// ParseKeywordText extracts a keyword list from free-form oracle text. It
// accepts newline- or comma-separated lists, strips bullet markers and
// numbering, lowercases, and drops anything that does not look like a short
// identifier-ish term. Deliberately forgiving: the oracle's formatting is
// not trusted, so there is no schema to fail against.
func ParseKeywordText(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ','
	})

	var kws []string
	seen := make(map[string]bool)
	for _, f := range fields {
		kw := cleanKeyword(f)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		kws = append(kws, kw)
		if len(kws) >= maxSuggestions {
			break
		}
	}
	return kws
}

// cleanKeyword strips list decoration and validates one candidate term.
func cleanKeyword(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*•>0123456789.) \t")
	s = strings.Trim(s, `"'`)
	s = strings.ToLower(strings.TrimSpace(s))

	if s == "" || len(s) > 40 {
		return ""
	}
	// Multi-word phrases beyond two words are prose, not keywords.
	if strings.Count(s, " ") > 1 {
		return ""
	}
	for _, r := range s {
		if !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '_' || r == '-' || r == '.' || r == ' ' || r == '/') {
			return ""
		}
	}
	return s
}
