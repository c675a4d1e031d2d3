package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"dex-arb-watcher/internal/app"
)

var (
	evaluateAmount   float64
	evaluateReserves string
	evaluateFee      float64
	evaluateGas      float64
	evaluateOptimize bool
	evaluateMaxInput float64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate an arbitrage path given on the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		if evaluateAmount <= 0 {
			return errors.New("--amount must be greater than zero")
		}

		opts := app.EvaluateOptions{
			Amount:   decimal.NewFromFloat(evaluateAmount),
			Reserves: evaluateReserves,
			Fee:      decimal.NewFromFloat(evaluateFee),
			GasCost:  decimal.NewFromFloat(evaluateGas),
			Optimize: evaluateOptimize,
			MaxInput: decimal.NewFromFloat(evaluateMaxInput),
		}

		return getApp().Evaluate(opts)
	},
}

func init() {
	evaluateCmd.Flags().Float64Var(&evaluateAmount, "amount", 1000, "Input amount for the first hop")
	evaluateCmd.Flags().StringVar(&evaluateReserves, "reserves", "", "Hop reserves as in:out pairs, e.g. 500000:500000,495000:505000")
	evaluateCmd.Flags().Float64Var(&evaluateFee, "fee", 0.003, "Fee fraction applied to every hop")
	evaluateCmd.Flags().Float64Var(&evaluateGas, "gas", 5, "Gas cost in units of the traded asset")
	evaluateCmd.Flags().BoolVar(&evaluateOptimize, "optimize", false, "Search for the profit-maximizing input amount")
	evaluateCmd.Flags().Float64Var(&evaluateMaxInput, "max-input", 0, "Upper bound for --optimize (defaults to --amount)")
}
