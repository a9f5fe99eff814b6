package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"codelens/internal/conceptindex"
	"codelens/internal/config"
	"codelens/internal/db"
	"codelens/internal/enrich"
	"codelens/internal/snapshot"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `codelens init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openStore opens the run store under the configured data directory.
func openStore(cfg *config.Config) (*snapshot.Store, *db.DB, error) {
	database, err := db.Open(filepath.Join(cfg.DataDir, "codelens.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return snapshot.NewStore(database), database, nil
}

// newOracle creates the keyword-enrichment oracle if enrichment is enabled
// and an API key is present, nil otherwise.
func newOracle(cfg *config.Config) enrich.Oracle {
	if !cfg.Enrichment.Enabled {
		return nil
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Warning: enrichment is enabled but OPENAI_API_KEY is not set; using rule-derived keywords only")
		return nil
	}
	return enrich.NewOpenAIOracle(apiKey, cfg.Enrichment.Model, cfg.Enrichment.BaseURL)
}

// newConceptIndex creates the semantic concept index when an embeddings API
// key is available, loading any previously persisted index from the data
// directory. Returns nil when search is not configured.
func newConceptIndex(cfg *config.Config) *conceptindex.Index {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}
	embedder := conceptindex.NewOpenAIEmbedder(apiKey, cfg.Enrichment.BaseURL, "")
	ix, err := conceptindex.New(embedder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: concept index unavailable: %v\n", err)
		return nil
	}
	if err := ix.Load(cfg.DataDir); err != nil && verbose {
		fmt.Fprintf(os.Stderr, "No persisted concept index: %v\n", err)
	}
	return ix
}

// persistConceptIndex writes the index back to the data directory.
func persistConceptIndex(cfg *config.Config, ix *conceptindex.Index) {
	if ix == nil {
		return
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: creating data dir: %v\n", err)
		return
	}
	if err := ix.Persist(cfg.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: persisting concept index: %v\n", err)
	}
}
