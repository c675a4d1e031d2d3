package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"dex-arb-watcher/internal/amm"
)

// EvaluateOptions configure one ad-hoc engine run.
type EvaluateOptions struct {
	Amount   decimal.Decimal
	Reserves string
	Fee      decimal.Decimal
	GasCost  decimal.Decimal
	Optimize bool
	MaxInput decimal.Decimal
}

// Evaluate runs the math engine over a path given entirely on the command
// line, bypassing readers, registry, and storage.
func (a *App) Evaluate(opts EvaluateOptions) error {
	path, err := parseReserves(opts.Reserves, opts.Fee)
	if err != nil {
		return err
	}

	engine := amm.New(decimal.NewFromFloat(a.Config.Engine.MinProfitThreshold))

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer writer.Flush()

	if opts.Optimize {
		maxInput := opts.MaxInput
		if maxInput.Sign() <= 0 {
			maxInput = opts.Amount
		}
		best, err := engine.OptimizeInput(path, maxInput, opts.GasCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(writer, "Best Amount In\tGross Output\tNet Profit\tProfit%\tProfitable")
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%t\n",
			best.AmountIn.String(),
			best.GrossOutput.String(),
			best.NetProfit.String(),
			best.ProfitPercent.String(),
			best.Profitable,
		)
		return nil
	}

	res, err := engine.PathProfit(opts.Amount, path, opts.GasCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(writer, "Amount In\tGross Output\tNet Profit\tProfit%\tProfitable")
	fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%t\n",
		opts.Amount.String(),
		res.GrossOutput.String(),
		res.NetProfit.String(),
		res.ProfitPercent.String(),
		res.Profitable,
	)
	return nil
}

// parseReserves turns "in1:out1,in2:out2,..." into an engine path, every hop
// charged the same fee.
func parseReserves(raw string, fee decimal.Decimal) ([]amm.ReservePair, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("--reserves must be provided, e.g. 500000:500000,495000:505000")
	}

	hops := strings.Split(raw, ",")
	path := make([]amm.ReservePair, 0, len(hops))
	for i, hop := range hops {
		parts := strings.SplitN(strings.TrimSpace(hop), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("hop %d: expected in:out, got %q", i, hop)
		}
		in, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("hop %d: invalid reserve in: %w", i, err)
		}
		out, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("hop %d: invalid reserve out: %w", i, err)
		}
		path = append(path, amm.ReservePair{ReserveIn: in, ReserveOut: out, Fee: fee})
	}
	return path, nil
}
