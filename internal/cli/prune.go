package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dex-arb-watcher/internal/app"
)

var (
	pruneOlderThan string
	pruneDryRun    bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete opportunity records older than a retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pruneOlderThan == "" {
			return fmt.Errorf("--older-than must be provided")
		}

		olderThan, err := time.ParseDuration(pruneOlderThan)
		if err != nil {
			return fmt.Errorf("invalid --older-than value: %w", err)
		}

		opts := app.PruneOptions{
			OlderThan: olderThan,
			DryRun:    pruneDryRun,
		}

		return getApp().Prune(cmd.Context(), opts)
	},
}

func init() {
	pruneCmd.Flags().StringVar(&pruneOlderThan, "older-than", "", "Retention window, e.g. 720h")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Report what would be deleted without deleting")
}
