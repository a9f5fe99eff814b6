package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CODELENS_*). A missing file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// CODELENS_SELECTOR_THRESHOLD -> selector.threshold, etc.
	if err := k.Load(env.Provider("CODELENS_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CODELENS_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validRoles is the set of recognized role identifiers for RolePatterns.
var validRoles = map[string]bool{
	"entry_point":  true,
	"core_logic":   true,
	"model":        true,
	"view":         true,
	"controller":   true,
	"utility":      true,
	"unclassified": true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Selector.Threshold < 0 || c.Selector.Threshold > 1 {
		return fmt.Errorf("selector.threshold must be in [0,1], got %v", c.Selector.Threshold)
	}
	if c.Selector.MinSelected < 1 {
		return fmt.Errorf("selector.min_selected must be at least 1")
	}
	if c.Selector.MaxSelected < c.Selector.MinSelected {
		return fmt.Errorf("selector.max_selected (%d) must be >= min_selected (%d)",
			c.Selector.MaxSelected, c.Selector.MinSelected)
	}
	if c.Analyzer.MaxConcurrency < 0 {
		return fmt.Errorf("analyzer.max_concurrency must be non-negative")
	}
	if c.Analyzer.MaxFlowHops < 1 {
		return fmt.Errorf("analyzer.max_flow_hops must be at least 1")
	}
	if c.Analyzer.MaxPathDepth < 1 {
		return fmt.Errorf("analyzer.max_path_depth must be at least 1")
	}
	if c.Enrichment.Enabled && c.Enrichment.TimeoutSeconds < 1 {
		return fmt.Errorf("enrichment.timeout_seconds must be at least 1 when enrichment is enabled")
	}
	for _, rp := range c.RolePatterns {
		if !validRoles[rp.Role] {
			return fmt.Errorf("invalid role %q for pattern %q", rp.Role, rp.Pattern)
		}
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	return nil
}
