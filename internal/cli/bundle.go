package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dex-arb-watcher/internal/app"
)

var (
	bundleTxs         []string
	bundleTxsFile     string
	bundleTargetBlock uint64
	bundleSubmit      bool
	bundleJSON        bool
	bundleOutPath     string
	bundleVerifyIndex int
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Build a Merkle bundle over signed transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(bundleTxs) == 0 && bundleTxsFile == "" {
			return fmt.Errorf("provide transactions via --tx or --txs-file")
		}

		opts := app.BundleOptions{
			Txs:         bundleTxs,
			TxsFile:     bundleTxsFile,
			TargetBlock: bundleTargetBlock,
			Submit:      bundleSubmit,
			JSON:        bundleJSON,
			OutPath:     bundleOutPath,
			VerifyIndex: bundleVerifyIndex,
		}

		return getApp().BuildBundle(cmd.Context(), opts)
	},
}

func init() {
	bundleCmd.Flags().StringArrayVar(&bundleTxs, "tx", nil, "Signed transaction (repeatable, order defines the tree)")
	bundleCmd.Flags().StringVar(&bundleTxsFile, "txs-file", "", "File with one signed transaction per line")
	bundleCmd.Flags().Uint64Var(&bundleTargetBlock, "target-block", 0, "Block number to target on submission")
	bundleCmd.Flags().BoolVar(&bundleSubmit, "submit", false, "Submit the bundle to the configured relays")
	bundleCmd.Flags().BoolVar(&bundleJSON, "json", false, "Print the full bundle artifact as JSON")
	bundleCmd.Flags().StringVar(&bundleOutPath, "out", "", "Path to write the bundle JSON")
	bundleCmd.Flags().IntVar(&bundleVerifyIndex, "verify-index", -1, "Re-check the inclusion proof for one transaction index")
}
