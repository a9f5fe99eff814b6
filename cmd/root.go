package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "codelens",
	Short: "Intent-driven multi-file code comprehension",
	Long: `Codelens picks the files that matter for a stated learning goal,
analyzes how they relate across file boundaries, and extracts concepts
that stay traceable to the exact lines of code backing them.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".codelens.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
