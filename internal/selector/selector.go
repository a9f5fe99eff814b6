// Package selector scores and ranks repository files against a learning
// intent. Selection is deterministic, explainable, and never silently
// empty: for any repository with at least one source file the fallback
// tiers guarantee a result.
package selector

import (
	"fmt"
	"sort"
	"strings"

	"codelens/internal/config"
	"codelens/internal/model"
	"codelens/internal/repotree"
)

// Selector is a pure function object over its injected configuration.
type Selector struct {
	cfg   config.SelectorConfig
	roles []config.RolePattern
}

// New creates a Selector from the selector config and role pattern table.
func New(cfg config.SelectorConfig, roles []config.RolePattern) *Selector {
	return &Selector{cfg: cfg, roles: roles}
}

// Select ranks the tree's files against the intent. The returned result is
// always non-nil; ErrSelectionEmpty accompanies it only when the repository
// contains no source files at all — "few good matches" is resolved through
// the fallback tiers instead.
func (s *Selector) Select(tree *model.RepositoryTree, in *model.Intent) (*model.SelectionResult, error) {
	result := &model.SelectionResult{}

	var candidates []*model.FileRecord
	for _, rec := range tree.SourceFiles() {
		result.Scanned++
		if s.excluded(rec.Path, in) {
			result.Excluded++
			continue
		}
		candidates = append(candidates, rec)
	}

	source := sourceOnly(candidates)
	if len(source) == 0 {
		// Distinct from "no good matches": there is nothing to select from.
		return result, model.ErrSelectionEmpty
	}

	keywords := stemAll(in.Keywords)

	scored := make([]model.SelectedFile, 0, len(source))
	for _, rec := range source {
		score := s.score(rec, keywords)
		scored = append(scored, model.SelectedFile{
			File:        rec,
			Score:       score,
			Explanation: explain(score),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score.Total != scored[j].Score.Total {
			return scored[i].Score.Total > scored[j].Score.Total
		}
		return scored[i].File.Path < scored[j].File.Path
	})

	// Primary threshold pass.
	var picked []model.SelectedFile
	for _, sf := range scored {
		if sf.Score.Total >= s.cfg.Threshold && len(picked) < s.cfg.MaxSelected {
			picked = append(picked, sf)
		}
	}

	// Fallback escalation: explicit, ordered, never silently empty.
	tier := 0
	if len(picked) < s.cfg.MinSelected {
		picked, tier = s.fallback(picked, scored)
	}

	result.Files = picked
	result.Selected = len(picked)
	result.FallbackTier = tier
	return result, nil
}

// fallback escalates through the three tiers until the minimum count is
// reached or candidates run out. Tier 3 engages whenever the set is still
// short: the non-empty guarantee must hold even for intents matching
// nothing.
func (s *Selector) fallback(picked, scored []model.SelectedFile) ([]model.SelectedFile, int) {
	have := make(map[string]bool, len(picked))
	for _, sf := range picked {
		have[sf.File.Path] = true
	}

	add := func(sf model.SelectedFile, tierNote string) bool {
		if have[sf.File.Path] || len(picked) >= s.cfg.MaxSelected {
			return false
		}
		sf.Explanation = tierNote
		picked = append(picked, sf)
		have[sf.File.Path] = true
		return true
	}

	tier := 1
	// Tier 1: recognized entry-point / importance-bonus files.
	for _, sf := range scored {
		if len(picked) >= s.cfg.MinSelected {
			return picked, tier
		}
		if sf.Score.Importance > 0 {
			add(sf, "added by fallback tier 1 (recognized entry point or important directory)")
		}
	}

	tier = 2
	// Tier 2: arbitrary source files under primary source directories
	// (repository root counts as a primary source location).
	for _, sf := range scored {
		if len(picked) >= s.cfg.MinSelected {
			return picked, tier
		}
		if s.underSourceDir(sf.File.Path) {
			add(sf, "added by fallback tier 2 (primary source directory)")
		}
	}

	tier = 3
	// Tier 3: any remaining source file by extension, up to the cap.
	for _, sf := range scored {
		if len(picked) >= s.cfg.MinSelected {
			return picked, tier
		}
		add(sf, "added by fallback tier 3 (source file by extension)")
	}
	return picked, tier
}

// excluded applies the denylist, unless the intent's keyword set explicitly
// references the excluded path (e.g. the user asked about "vendor" code).
func (s *Selector) excluded(path string, in *model.Intent) bool {
	if !matchesAnyGlob(path, s.cfg.Denylist) {
		return false
	}
	lower := strings.ToLower(path)
	for _, seg := range strings.Split(lower, "/") {
		if in.HasKeyword(seg) {
			return false
		}
	}
	return true
}

func (s *Selector) underSourceDir(path string) bool {
	if !strings.Contains(path, "/") {
		return true // repository root
	}
	first := path[:strings.Index(path, "/")]
	for _, dir := range s.cfg.SourceDirs {
		if strings.EqualFold(first, dir) {
			return true
		}
	}
	return false
}

// sourceOnly keeps files in a recognized programming language.
func sourceOnly(recs []*model.FileRecord) []*model.FileRecord {
	var out []*model.FileRecord
	for _, rec := range recs {
		if repotree.IsCodeLanguage(rec.Language) {
			out = append(out, rec)
		}
	}
	return out
}

// explain names the dominating scoring component for the UI layer.
func explain(score model.RelevanceScore) string {
	components := []struct {
		name  string
		value float64
	}{
		{"filename match", model.WeightName * score.NameMatch},
		{"path match", model.WeightPath * score.PathMatch},
		{"content keywords", model.WeightContent * score.ContentMatch},
		{"structural importance", model.WeightImportance * score.Importance},
	}
	best := components[0]
	for _, c := range components[1:] {
		if c.value > best.value {
			best = c
		}
	}
	if best.value == 0 {
		return fmt.Sprintf("low relevance (total %.2f); role %s", score.Total, score.Role)
	}
	return fmt.Sprintf("selected: %s dominated (total %.2f); role %s", best.name, score.Total, score.Role)
}
