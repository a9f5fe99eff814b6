package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [repo-path]",
	Short: "List saved analysis runs for a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, database, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := store.List(context.Background(), args[0])
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs found. Run `codelens analyze` first.")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  [%s]  %q\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Stage, r.Goal)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
