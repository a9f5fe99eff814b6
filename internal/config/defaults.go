package config

// DefaultDenylist are path globs excluded from selection by default:
// vendored dependencies, build output, VCS metadata. An intent that
// explicitly references one of these terms overrides the exclusion.
var DefaultDenylist = []string{
	"node_modules/**",
	"vendor/**",
	".git/**",
	"dist/**",
	"build/**",
	"out/**",
	"target/**",
	"__pycache__/**",
	".venv/**",
	"*.min.js",
	"*.min.css",
	"*.lock",
	"go.sum",
	"package-lock.json",
	"yarn.lock",
}

// DefaultSourceDirs are the primary source directories used by fallback
// tier 2 and the importance bonus.
var DefaultSourceDirs = []string{"src", "lib", "app", "internal", "pkg", "components", "pages"}

// defaultIntentKeywords is the consolidated rule table: one declarative
// mapping from intent category to its contributed keywords, replacing the
// scattered per-module tables of earlier iterations.
var defaultIntentKeywords = map[string][]string{
	"learn-feature":              {"feature", "service", "handler", "logic", "core"},
	"interview-prep":             {"algorithm", "structure", "util", "core", "service"},
	"architecture-understanding": {"main", "app", "config", "router", "module", "index", "server"},
	"generate-materials":         {"main", "core", "service", "model"},
	"focus-on-technology":        {"config", "setup", "client", "adapter"},
	"backend-flow":               {"api", "route", "controller", "service", "model", "handler", "middleware", "db", "repository"},
	"frontend-flow":              {"component", "page", "view", "hook", "store", "style", "render"},
}

// defaultRolePatterns classifies files by path shape. First match wins;
// unmatched files fall through to unclassified (or entry_point/core_logic
// via the selector's filename heuristics).
var defaultRolePatterns = []RolePattern{
	{Pattern: "**/main.*", Role: "entry_point"},
	{Pattern: "**/index.*", Role: "entry_point"},
	{Pattern: "**/App.*", Role: "entry_point"},
	{Pattern: "**/app.*", Role: "entry_point"},
	{Pattern: "**/models/**", Role: "model"},
	{Pattern: "**/model/**", Role: "model"},
	{Pattern: "**/entities/**", Role: "model"},
	{Pattern: "**/views/**", Role: "view"},
	{Pattern: "**/components/**", Role: "view"},
	{Pattern: "**/pages/**", Role: "view"},
	{Pattern: "**/templates/**", Role: "view"},
	{Pattern: "**/controllers/**", Role: "controller"},
	{Pattern: "**/handlers/**", Role: "controller"},
	{Pattern: "**/routes/**", Role: "controller"},
	{Pattern: "**/api/**", Role: "controller"},
	{Pattern: "**/utils/**", Role: "utility"},
	{Pattern: "**/util/**", Role: "utility"},
	{Pattern: "**/helpers/**", Role: "utility"},
	{Pattern: "**/lib/**", Role: "utility"},
	{Pattern: "**/services/**", Role: "core_logic"},
	{Pattern: "**/service/**", Role: "core_logic"},
	{Pattern: "**/core/**", Role: "core_logic"},
	{Pattern: "**/internal/**", Role: "core_logic"},
}

// Default returns a Config with sensible defaults. Threshold 0.15 and the
// 5/15 fallback bounds are tunable constants, not load-bearing values; any
// setting preserves the non-empty-selection guarantee.
func Default() *Config {
	return &Config{
		Selector: SelectorConfig{
			Threshold:   0.15,
			MinSelected: 5,
			MaxSelected: 15,
			Denylist:    DefaultDenylist,
			SourceDirs:  DefaultSourceDirs,
			ContentCap:  10,
		},
		Analyzer: AnalyzerConfig{
			MaxConcurrency: 4,
			MaxFlowHops:    8,
			MaxPathDepth:   10,
			MaxPaths:       20,
		},
		Enrichment: EnrichmentConfig{
			Enabled:        false,
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 10,
		},
		Server: ServerConfig{
			Port: 8930,
		},
		IntentKeywords: defaultIntentKeywords,
		RolePatterns:   defaultRolePatterns,
		DataDir:        ".codelens",
	}
}
