package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulateReserve1In  float64
	simulateReserve1Out float64
	simulateReserve2In  float64
	simulateReserve2Out float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次跨所价差扫描并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateReserve1In <= 0 || simulateReserve1Out <= 0 || simulateReserve2In <= 0 || simulateReserve2Out <= 0 {
			return errors.New("所有 reserve 参数必须大于 0")
		}

		return getApp().SimulateAlert(
			cmd.Context(),
			decimal.NewFromFloat(simulateReserve1In),
			decimal.NewFromFloat(simulateReserve1Out),
			decimal.NewFromFloat(simulateReserve2In),
			decimal.NewFromFloat(simulateReserve2Out),
		)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateReserve1In, "reserve1-in", 500000, "第一个池子的输入侧储备")
	simulateCmd.Flags().Float64Var(&simulateReserve1Out, "reserve1-out", 500000, "第一个池子的输出侧储备")
	simulateCmd.Flags().Float64Var(&simulateReserve2In, "reserve2-in", 495000, "第二个池子的输入侧储备")
	simulateCmd.Flags().Float64Var(&simulateReserve2Out, "reserve2-out", 505000, "第二个池子的输出侧储备")
}
