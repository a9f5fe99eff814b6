package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codelens/internal/model"
	"codelens/internal/report"
	"codelens/internal/repotree"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Render a saved run as a study guide",
	Long:  `Renders a saved analysis run as markdown on stdout, or as a standalone HTML page with highlighted evidence snippets.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().String("html", "", "write an HTML report to this path instead of printing markdown")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	htmlPath, _ := cmd.Flags().GetString("html")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, database, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := store.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("run %q not found", args[0])
	}

	// Reload the tree so evidence snippets show current file content.
	tree, err := repotree.Load(run.RepoRoot, repotree.Options{Exclude: cfg.Selector.Denylist})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not reload %s, report will omit code snippets: %v\n", run.RepoRoot, err)
		tree = &model.RepositoryTree{}
	}

	if htmlPath != "" {
		if err := report.WriteHTML(run, tree, htmlPath); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", htmlPath)
		return nil
	}

	fmt.Print(report.Markdown(run, tree))
	return nil
}
