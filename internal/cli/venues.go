package cli

import (
	"github.com/spf13/cobra"
)

var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "List the configured venue registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Venues()
	},
}
