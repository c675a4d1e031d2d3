package cli

import (
	"github.com/spf13/cobra"

	"dex-arb-watcher/internal/app"
)

var (
	scanStatic  bool
	scanPersist bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single detection pass and print the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ScanOptions{
			Static:  scanStatic,
			Persist: scanPersist,
		}
		return getApp().Scan(cmd.Context(), opts)
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanStatic, "static", false, "Use the built-in demo pools instead of the configured reader")
	scanCmd.Flags().BoolVar(&scanPersist, "persist", false, "Write the results to storage")
}
