package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".codelens.yml")

	cfg := Default()
	cfg.Selector.Threshold = 0.25
	cfg.Selector.MaxSelected = 20
	cfg.Server.Port = 9001
	cfg.DataDir = "custom-dir"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Selector.Threshold != 0.25 {
		t.Errorf("Threshold = %v, want 0.25", loaded.Selector.Threshold)
	}
	if loaded.Selector.MaxSelected != 20 {
		t.Errorf("MaxSelected = %d, want 20", loaded.Selector.MaxSelected)
	}
	if loaded.Server.Port != 9001 {
		t.Errorf("Port = %d, want 9001", loaded.Server.Port)
	}
	if loaded.DataDir != "custom-dir" {
		t.Errorf("DataDir = %q", loaded.DataDir)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("roundtripped config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Selector.Threshold != 0.15 || cfg.Server.Port != 8930 {
		t.Errorf("defaults not applied: %+v", cfg.Selector)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CODELENS_SELECTOR_THRESHOLD", "0.5")
	t.Setenv("CODELENS_SERVER_PORT", "7000")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Selector.Threshold != 0.5 {
		t.Errorf("Threshold = %v, want env override 0.5", cfg.Selector.Threshold)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Port = %d, want env override 7000", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Selector.Threshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Selector.Threshold = -0.1 }},
		{"zero min selected", func(c *Config) { c.Selector.MinSelected = 0 }},
		{"max below min", func(c *Config) { c.Selector.MaxSelected = 2; c.Selector.MinSelected = 5 }},
		{"negative concurrency", func(c *Config) { c.Analyzer.MaxConcurrency = -1 }},
		{"zero flow hops", func(c *Config) { c.Analyzer.MaxFlowHops = 0 }},
		{"zero path depth", func(c *Config) { c.Analyzer.MaxPathDepth = 0 }},
		{"enrichment without timeout", func(c *Config) { c.Enrichment.Enabled = true; c.Enrichment.TimeoutSeconds = 0 }},
		{"unknown role", func(c *Config) { c.RolePatterns = []RolePattern{{Pattern: "**/x/**", Role: "wizard"}} }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted a broken config")
			}
		})
	}
}
