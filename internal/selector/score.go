package selector

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"codelens/internal/model"
)

// entryPointNames are filename stems recognized as application entry points.
var entryPointNames = []string{"main", "index", "app", "server", "application"}

// score computes the four relevance components and their fixed-weight
// combination. Every component and the total land in [0,1].
func (s *Selector) score(rec *model.FileRecord, keywords []string) model.RelevanceScore {
	name := strings.ToLower(rec.Name)
	stem := strings.TrimSuffix(name, rec.Extension)
	dir := strings.ToLower(filepath.ToSlash(filepath.Dir(rec.Path)))
	content := strings.ToLower(rec.Content)

	score := model.RelevanceScore{
		NameMatch:    matchRatio(name, keywords),
		PathMatch:    matchRatio(dir, keywords),
		ContentMatch: s.contentMatch(content, keywords),
		Importance:   s.importance(stem, rec.Path),
		Role:         s.classify(rec.Path, stem),
	}
	score.Total = model.CombineRelevance(score.NameMatch, score.PathMatch, score.ContentMatch, score.Importance)
	return score
}

// matchRatio is the fraction of keywords whose stem occurs in the text,
// weighted so a handful of hits already scores well.
func matchRatio(text string, keywords []string) float64 {
	if len(keywords) == 0 || text == "" || text == "." {
		return 0
	}
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	// Three matched keywords saturate the component.
	ratio := float64(hits) / 3.0
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// contentMatch counts keyword occurrences within the file content, capped
// so one giant file cannot dominate on volume alone.
func (s *Selector) contentMatch(content string, keywords []string) float64 {
	if len(keywords) == 0 || content == "" {
		return 0
	}
	limit := s.cfg.ContentCap
	if limit <= 0 {
		limit = 10
	}
	occurrences := 0
	for _, kw := range keywords {
		occurrences += strings.Count(content, kw)
		if occurrences >= limit {
			occurrences = limit
			break
		}
	}
	return float64(occurrences) / float64(limit)
}

// importance awards bonuses for recognized entry-point filenames and
// placement under recognized important directories.
func (s *Selector) importance(stem, path string) float64 {
	bonus := 0.0
	for _, ep := range entryPointNames {
		if strings.EqualFold(stem, ep) {
			bonus += 0.6
			break
		}
	}
	if strings.Contains(path, "/") {
		first := path[:strings.Index(path, "/")]
		for _, dir := range s.cfg.SourceDirs {
			if strings.EqualFold(first, dir) {
				bonus += 0.4
				break
			}
		}
	}
	if bonus > 1 {
		bonus = 1
	}
	return bonus
}

// classify assigns the file's role: first matching configured pattern wins,
// then the entry-point filename heuristic, then unclassified.
func (s *Selector) classify(path, stem string) model.FileRole {
	for _, rp := range s.roles {
		if matchesAnyGlob(path, []string{rp.Pattern}) {
			return model.FileRole(rp.Role)
		}
	}
	for _, ep := range entryPointNames {
		if strings.EqualFold(stem, ep) {
			return model.RoleEntryPoint
		}
	}
	return model.RoleUnclassified
}

func matchesAnyGlob(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, filepath.Base(normalized)); err == nil && matched {
			return true
		}
		// Directory-prefix patterns like "vendor/**" should also exclude
		// the bare directory match.
		if strings.HasSuffix(pattern, "/**") {
			prefix := strings.TrimSuffix(pattern, "/**")
			if normalized == prefix || strings.HasPrefix(normalized, prefix+"/") {
				return true
			}
		}
	}
	return false
}

// stemAll lowers and stems the keyword set once per selection so scoring
// matches morphological variants ("routing" hits "Router").
func stemAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		st := stemKeyword(strings.ToLower(kw))
		if st != "" && !seen[st] {
			seen[st] = true
			out = append(out, st)
		}
	}
	return out
}

// stemKeyword trims common English suffixes, keeping at least four
// characters so stems stay discriminating.
func stemKeyword(kw string) string {
	for _, suffix := range []string{"ing", "ers", "ies", "es", "er", "ed", "s"} {
		trimmed := strings.TrimSuffix(kw, suffix)
		if trimmed != kw && len(trimmed) >= 4 {
			return trimmed
		}
	}
	return kw
}
