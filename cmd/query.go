package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Semantically search extracted concepts",
	Long:  `Searches the concept index using a natural language query and returns matching concepts with their backing files.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", 10, "maximum number of results")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	concepts := newConceptIndex(cfg)
	if concepts == nil {
		return fmt.Errorf("semantic search requires OPENAI_API_KEY to be set")
	}
	if concepts.Count() == 0 {
		fmt.Println("Concept index is empty. Run `codelens analyze` first.")
		return nil
	}

	matches, err := concepts.Search(ctx, queryText, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(matches)
	}

	if len(matches) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, m := range matches {
		fmt.Printf("%d. %s [%s] (%.1f%%)\n", i+1, m.Name, m.Category, m.Similarity*100)
		if m.FilePath != "" {
			fmt.Printf("   %s\n", m.FilePath)
		}
		fmt.Printf("   %s\n\n", m.Description)
	}
	return nil
}
