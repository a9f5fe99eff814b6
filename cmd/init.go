package cmd

import (
	"github.com/spf13/cobra"

	"codelens/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file interactively",
	Long:  `Runs the interactive wizard, detects the project type, and writes .codelens.yml to the current directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(".")
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
