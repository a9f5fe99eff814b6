package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace [run-id] [artifact-id]",
	Short: "Trace an artifact to the code that backs it",
	Long:  `Resolves an artifact from a saved run to its exact file and line ranges, and reports whether the underlying code has changed since.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, artifactID := args[0], args[1]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, database, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		run, err := store.Get(context.Background(), runID)
		if err != nil {
			return fmt.Errorf("run %q not found", runID)
		}

		ix := run.Index()
		evidence, err := ix.Trace(artifactID)
		if err != nil {
			return err
		}

		if name := run.Artifacts[artifactID]; name != "" {
			fmt.Printf("Concept: %s\n", name)
		}
		if ix.Outdated(artifactID) {
			fmt.Println("Status: OUTDATED (underlying code changed since registration)")
		} else {
			fmt.Println("Status: fresh")
		}
		for _, ev := range evidence {
			fmt.Printf("  %s:%d-%d\n", ev.FilePath, ev.StartLine, ev.EndLine)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
}
