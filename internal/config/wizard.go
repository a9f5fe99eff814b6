package config

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/manifoldco/promptui"
)

// projectTypeMarkers maps marker files to human-readable project types and
// the source directories worth prioritizing for that ecosystem.
var projectTypeMarkers = map[string]struct {
	Name       string
	SourceDirs []string
}{
	"go.mod":           {Name: "Go", SourceDirs: []string{"cmd", "internal", "pkg"}},
	"package.json":     {Name: "Node.js/TypeScript", SourceDirs: []string{"src", "components", "pages", "app"}},
	"requirements.txt": {Name: "Python", SourceDirs: []string{"src", "app", "lib"}},
	"pyproject.toml":   {Name: "Python", SourceDirs: []string{"src", "app", "lib"}},
	"Cargo.toml":       {Name: "Rust", SourceDirs: []string{"src"}},
	"pom.xml":          {Name: "Java", SourceDirs: []string{"src"}},
	"Gemfile":          {Name: "Ruby", SourceDirs: []string{"app", "lib"}},
}

// detectProjectType checks the given directory for well-known project markers.
func detectProjectType(dir string) (name string, sourceDirs []string) {
	for marker, info := range projectTypeMarkers {
		matches, _ := filepath.Glob(filepath.Join(dir, marker))
		if len(matches) > 0 {
			return info.Name, info.SourceDirs
		}
	}
	return "", nil
}

// RunWizard runs the interactive configuration wizard and saves the result
// to .codelens.yml in the given directory.
func RunWizard(dir string) (*Config, error) {
	fmt.Println("Welcome to codelens! Let's configure your project.")
	fmt.Println()

	cfg := Default()

	if projType, dirs := detectProjectType(dir); projType != "" {
		fmt.Printf("Detected project type: %s\n\n", projType)
		cfg.Selector.SourceDirs = append(dirs, cfg.Selector.SourceDirs...)
	}

	thresholdPrompt := promptui.Prompt{
		Label:   "Relevance threshold (files scoring below are dropped)",
		Default: fmt.Sprintf("%.2f", cfg.Selector.Threshold),
		Validate: func(s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || v < 0 || v > 1 {
				return fmt.Errorf("enter a number between 0 and 1")
			}
			return nil
		},
	}
	thresholdStr, err := thresholdPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("threshold prompt: %w", err)
	}
	cfg.Selector.Threshold, _ = strconv.ParseFloat(thresholdStr, 64)

	capPrompt := promptui.Prompt{
		Label:   "Maximum files per selection",
		Default: strconv.Itoa(cfg.Selector.MaxSelected),
		Validate: func(s string) error {
			v, err := strconv.Atoi(s)
			if err != nil || v < 1 {
				return fmt.Errorf("enter a positive integer")
			}
			return nil
		},
	}
	capStr, err := capPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("cap prompt: %w", err)
	}
	cfg.Selector.MaxSelected, _ = strconv.Atoi(capStr)

	enrichPrompt := promptui.Select{
		Label: "Enable LLM keyword enrichment (requires OPENAI_API_KEY)",
		Items: []string{"no", "yes"},
	}
	enrichIdx, _, err := enrichPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("enrichment prompt: %w", err)
	}
	cfg.Enrichment.Enabled = enrichIdx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, ".codelens.yml")
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	fmt.Printf("\nConfiguration saved to %s\n", path)

	return cfg, nil
}
