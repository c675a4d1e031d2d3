package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dex-arb-watcher/internal/app"
)

var (
	showLimit   int
	showBundles bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent opportunities or bundles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Limit:   showLimit,
			Bundles: showBundles,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of records to display")
	showCmd.Flags().BoolVar(&showBundles, "bundles", false, "Show bundles instead of opportunities")
}
