package config

// EnrichmentConfig controls the optional keyword-enrichment oracle. The
// oracle is advisory only: it is consulted for free-text keyword lists and
// nothing else, and any failure falls back to rule-derived keywords.
type EnrichmentConfig struct {
	Enabled        bool   `yaml:"enabled" koanf:"enabled"`
	Model          string `yaml:"model" koanf:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	BaseURL        string `yaml:"base_url" koanf:"base_url"` // Optional OpenAI-compatible endpoint.
}

// SelectorConfig holds the File Selector's tunables. The exact threshold and
// cap values are not load-bearing; the fallback tiers guarantee a non-empty
// selection for any reasonable settings.
type SelectorConfig struct {
	Threshold   float64  `yaml:"threshold" koanf:"threshold"`       // Primary relevance cutoff.
	MinSelected int      `yaml:"min_selected" koanf:"min_selected"` // Below this, fallback tiers engage.
	MaxSelected int      `yaml:"max_selected" koanf:"max_selected"` // Hard cap across all tiers.
	Denylist    []string `yaml:"denylist" koanf:"denylist"`         // Path globs excluded unless the intent references them.
	SourceDirs  []string `yaml:"source_dirs" koanf:"source_dirs"`   // Primary source directories for fallback tier 2.
	ContentCap  int      `yaml:"content_cap" koanf:"content_cap"`   // Keyword occurrences counted toward content_match.
}

// AnalyzerConfig bounds the Multi-File Analyzer's traversals.
type AnalyzerConfig struct {
	MaxConcurrency int `yaml:"max_concurrency" koanf:"max_concurrency"` // Structure-extraction worker pool size.
	MaxFlowHops    int `yaml:"max_flow_hops" koanf:"max_flow_hops"`     // Data-flow hop bound.
	MaxPathDepth   int `yaml:"max_path_depth" koanf:"max_path_depth"`   // Execution-path depth bound.
	MaxPaths       int `yaml:"max_paths" koanf:"max_paths"`             // Execution paths emitted per analysis.
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"` // Allow all CORS origins (dev mode).
}

// RolePattern binds a path glob to a file role.
type RolePattern struct {
	Pattern string `yaml:"pattern" koanf:"pattern"`
	Role    string `yaml:"role" koanf:"role"`
}

// Config is the top-level codelens configuration, corresponding to
// .codelens.yml. The intent keyword and role tables live here so the
// selector and analyzer stay testable as pure functions over injected rules.
type Config struct {
	Selector   SelectorConfig   `yaml:"selector" koanf:"selector"`
	Analyzer   AnalyzerConfig   `yaml:"analyzer" koanf:"analyzer"`
	Enrichment EnrichmentConfig `yaml:"enrichment" koanf:"enrichment"`
	Server     ServerConfig     `yaml:"server" koanf:"server"`

	// IntentKeywords maps an intent category identifier (learn-feature, ...)
	// to the keywords its rules contribute.
	IntentKeywords map[string][]string `yaml:"intent_keywords" koanf:"intent_keywords"`

	// RolePatterns maps path globs to file roles (entry_point, model, view,
	// controller, utility, core_logic). First match wins.
	RolePatterns []RolePattern `yaml:"role_patterns" koanf:"role_patterns"`

	// DataDir is where snapshots are stored, relative to the analyzed repo.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`
}
