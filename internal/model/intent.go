package model

// IntentCategory is the primary classification of a learning goal.
type IntentCategory string

const (
	IntentLearnFeature              IntentCategory = "learn-feature"
	IntentInterviewPrep             IntentCategory = "interview-prep"
	IntentArchitectureUnderstanding IntentCategory = "architecture-understanding"
	IntentGenerateMaterials         IntentCategory = "generate-materials"
	IntentFocusOnTechnology         IntentCategory = "focus-on-technology"
	IntentBackendFlow               IntentCategory = "backend-flow"
	IntentFrontendFlow              IntentCategory = "frontend-flow"
)

// AudienceLevel describes who the derived materials are for.
type AudienceLevel string

const (
	AudienceBeginner     AudienceLevel = "beginner"
	AudienceIntermediate AudienceLevel = "intermediate"
	AudienceAdvanced     AudienceLevel = "advanced"
)

// Intent is the structured representation of a user's natural-language
// learning goal. Created once per request and never mutated afterwards; the
// keyword set merges rule-derived and enrichment-derived keywords at
// construction.
type Intent struct {
	Goal         string           `json:"goal"`
	Primary      IntentCategory   `json:"primary"`
	Secondary    []IntentCategory `json:"secondary,omitempty"`
	Audience     AudienceLevel    `json:"audience"`
	Technologies []string         `json:"technologies,omitempty"`
	Confidence   float64          `json:"confidence"` // in [0,1]
	Keywords     []string         `json:"keywords"`   // lowercased, deduplicated
}

// HasKeyword reports whether the intent's keyword set contains kw
// (already-lowercased comparison).
func (in *Intent) HasKeyword(kw string) bool {
	for _, k := range in.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// FileRole is the selector's classification of a file's likely purpose,
// used for downstream prioritization.
type FileRole string

const (
	RoleEntryPoint   FileRole = "entry_point"
	RoleCoreLogic    FileRole = "core_logic"
	RoleModel        FileRole = "model"
	RoleView         FileRole = "view"
	RoleController   FileRole = "controller"
	RoleUtility      FileRole = "utility"
	RoleUnclassified FileRole = "unclassified"
)

// RelevanceScore holds the per-(file, intent) scoring breakdown. Each
// component is in [0,1] and Total is the fixed linear combination
// 0.3*name + 0.2*path + 0.3*content + 0.2*importance, so Total is also
// always in [0,1].
type RelevanceScore struct {
	NameMatch    float64  `json:"name_match"`
	PathMatch    float64  `json:"path_match"`
	ContentMatch float64  `json:"content_match"`
	Importance   float64  `json:"importance"`
	Total        float64  `json:"total"`
	Role         FileRole `json:"role"`
}

// Relevance weights. Fixed: changing these alters the meaning of every
// persisted score.
const (
	WeightName       = 0.3
	WeightPath       = 0.2
	WeightContent    = 0.3
	WeightImportance = 0.2
)

// CombineRelevance computes the weighted total from the four components,
// clamping each component into [0,1] first.
func CombineRelevance(name, path, content, importance float64) float64 {
	return WeightName*clamp01(name) +
		WeightPath*clamp01(path) +
		WeightContent*clamp01(content) +
		WeightImportance*clamp01(importance)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SelectedFile pairs a file with its score and a human-readable explanation
// naming the dominant scoring component (or the fallback tier that admitted
// the file).
type SelectedFile struct {
	File        *FileRecord    `json:"file"`
	Score       RelevanceScore `json:"score"`
	Explanation string         `json:"explanation"`
}

// SelectionResult is the File Selector's complete output. For a repository
// containing at least one readable source file it is never empty; the only
// empty result is the genuinely-empty-repository case, reported via
// ErrSelectionEmpty by the caller.
type SelectionResult struct {
	Files    []SelectedFile `json:"files"`
	Scanned  int            `json:"scanned"`
	Excluded int            `json:"excluded"`
	Selected int            `json:"selected"`
	// FallbackTier records which escalation tier produced the final set:
	// 0 = primary threshold, 1 = importance bonus, 2 = primary source
	// locations, 3 = any source file.
	FallbackTier int `json:"fallback_tier"`
}

// Paths returns the selected file paths in ranked order.
func (s *SelectionResult) Paths() []string {
	out := make([]string, len(s.Files))
	for i, f := range s.Files {
		out[i] = f.File.Path
	}
	return out
}

// Contains reports whether path is part of the selection.
func (s *SelectionResult) Contains(path string) bool {
	for _, f := range s.Files {
		if f.File.Path == path {
			return true
		}
	}
	return false
}
