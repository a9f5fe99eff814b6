package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codelens/internal/pipeline"
	"codelens/internal/progress"
	"codelens/internal/repotree"
	"codelens/internal/snapshot"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a repository for a learning goal",
	Long: `Selects the files relevant to the goal, analyzes their cross-file
relationships, and extracts concepts with code evidence. The run is saved
and can be inspected with the runs, trace, and report commands.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("goal", "", "natural language learning goal (required)")
	analyzeCmd.MarkFlagRequired("goal")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]
	goal, _ := cmd.Flags().GetString("goal")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, database, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	tree, err := repotree.Load(path, repotree.Options{Exclude: cfg.Selector.Denylist})
	if err != nil {
		return fmt.Errorf("loading repository: %w", err)
	}

	reporter := progress.NewReporter()
	pipe := pipeline.New(cfg, newOracle(cfg))
	pipe.SetEventFunc(progress.ObservePipeline(reporter))

	result, runErr := pipe.Run(ctx, tree, goal)
	reporter.Finish()

	run := snapshot.FromResult(path, goal, result)
	if err := store.Save(ctx, run); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	if concepts := newConceptIndex(cfg); concepts != nil && result.Analysis != nil {
		if err := concepts.Add(ctx, result.Artifacts, result.Analysis.Concepts); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: indexing concepts: %v\n", err)
		} else {
			persistConceptIndex(cfg, concepts)
		}
	}

	if runErr != nil {
		fmt.Printf("Run %s failed during %s: %s\n", run.ID, result.Stage, result.Err)
		return runErr
	}

	printRunSummary(run, result)
	return nil
}

func printRunSummary(run *snapshot.Run, result *pipeline.Result) {
	sel := result.Selection
	fmt.Printf("Run %s complete.\n\n", run.ID)
	fmt.Printf("Selected %d of %d files (excluded %d):\n", sel.Selected, sel.Scanned, sel.Excluded)
	for _, sf := range sel.Files {
		fmt.Printf("  %-50s %.2f  %s\n", sf.File.Path, sf.Score.Total, sf.Explanation)
	}

	summary := result.Analysis.Summary
	fmt.Printf("\nAnalyzed %d files", summary.FilesAnalyzed)
	if summary.FilesSkipped > 0 {
		fmt.Printf(" (%d skipped)", summary.FilesSkipped)
	}
	fmt.Printf(": %d relationships, %d data flows, %d execution paths, %d concepts.\n",
		len(result.Analysis.Relationships), len(result.Analysis.DataFlows),
		len(result.Analysis.ExecutionPaths), len(result.Analysis.Concepts))

	if cycles := result.Graph.Cycles(); len(cycles) > 0 {
		fmt.Printf("%d dependency cycle(s) detected.\n", len(cycles))
	}
	fmt.Printf("\nInspect with: codelens report %s\n", run.ID)
}
