package amm

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput flags amounts, reserves, fees, or bounds outside their valid range.
	ErrInvalidInput = errors.New("amm: invalid input")
	// ErrInvalidPath flags a trade path with fewer than two hops.
	ErrInvalidPath = errors.New("amm: path requires at least two hops")
)

var (
	decOne     = decimal.NewFromInt(1)
	decTwo     = decimal.NewFromInt(2)
	decHundred = decimal.NewFromInt(100)
)

// DefaultMinProfitThreshold is the default fraction of the input amount a
// round trip must clear, net of costs, to count as profitable (0.1%).
var DefaultMinProfitThreshold = decimal.NewFromFloat(0.001)

// ReservePair is a single constant-product hop, oriented in trade direction:
// the swap consumes ReserveIn-side tokens and pays out ReserveOut-side tokens.
type ReservePair struct {
	ReserveIn  decimal.Decimal
	ReserveOut decimal.Decimal
	Fee        decimal.Decimal
}

// PathResult is the outcome of evaluating one trade path.
type PathResult struct {
	GrossOutput   decimal.Decimal
	NetProfit     decimal.Decimal
	ProfitPercent decimal.Decimal
	Profitable    bool
}

// OptimizeResult pairs the best input amount found with its evaluation.
type OptimizeResult struct {
	AmountIn decimal.Decimal
	PathResult
}

// Engine evaluates x*y=k swap math in arbitrary-precision decimals.
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	minProfitThreshold decimal.Decimal
}

// New constructs an Engine. minProfitThreshold is a fraction of the input
// amount (0.001 = 0.1%); negative values are treated as zero, meaning any
// positive net profit qualifies.
func New(minProfitThreshold decimal.Decimal) *Engine {
	if minProfitThreshold.IsNegative() {
		minProfitThreshold = decimal.Zero
	}
	return &Engine{minProfitThreshold: minProfitThreshold}
}

// NewDefault constructs an Engine with DefaultMinProfitThreshold.
func NewDefault() *Engine {
	return New(DefaultMinProfitThreshold)
}

// MinProfitThreshold reports the configured profitability floor.
func (e *Engine) MinProfitThreshold() decimal.Decimal {
	return e.minProfitThreshold
}

// SwapOutput computes the output amount of a single constant-product swap.
// The fee is charged on the input side before the invariant is applied, so
// the result is always strictly below ReserveOut and is zero only for a zero
// input.
func (e *Engine) SwapOutput(amountIn, reserveIn, reserveOut, fee decimal.Decimal) (decimal.Decimal, error) {
	if err := validateSwap(amountIn, reserveIn, reserveOut, fee); err != nil {
		return decimal.Decimal{}, err
	}
	if amountIn.IsZero() {
		return decimal.Zero, nil
	}

	inAfterFee := amountIn.Mul(decOne.Sub(fee))
	return inAfterFee.Mul(reserveOut).Div(reserveIn.Add(inAfterFee)), nil
}

// PriceImpact reports how far the execution price of a swap lands from the
// pool's pre-trade spot price, as a percentage of the spot price. Larger
// trades against the same reserves produce larger impact. The figure is a
// risk signal; nothing gates on it.
func (e *Engine) PriceImpact(amountIn, reserveIn, reserveOut, fee decimal.Decimal) (decimal.Decimal, error) {
	if err := validateSwap(amountIn, reserveIn, reserveOut, fee); err != nil {
		return decimal.Decimal{}, err
	}
	if amountIn.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: zero amount has no execution price", ErrInvalidInput)
	}

	out, err := e.SwapOutput(amountIn, reserveIn, reserveOut, fee)
	if err != nil {
		return decimal.Decimal{}, err
	}

	spot := reserveOut.Div(reserveIn)
	exec := out.Div(amountIn)
	return spot.Sub(exec).Abs().Div(spot).Mul(decHundred), nil
}

// PathProfit threads an input amount through each hop in order: hop k's
// output becomes hop k+1's input, each hop charging its own fee. The engine
// does not check that the path closes back to the origin asset; callers
// orient the hops.
func (e *Engine) PathProfit(amountIn decimal.Decimal, path []ReservePair, gasCost decimal.Decimal) (PathResult, error) {
	if len(path) < 2 {
		return PathResult{}, fmt.Errorf("%w: got %d", ErrInvalidPath, len(path))
	}
	if amountIn.Sign() <= 0 {
		return PathResult{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if gasCost.IsNegative() {
		return PathResult{}, fmt.Errorf("%w: negative gas cost", ErrInvalidInput)
	}

	current := amountIn
	for i, hop := range path {
		out, err := e.SwapOutput(current, hop.ReserveIn, hop.ReserveOut, hop.Fee)
		if err != nil {
			return PathResult{}, fmt.Errorf("hop %d: %w", i, err)
		}
		current = out
	}

	net := current.Sub(amountIn).Sub(gasCost)
	pct := net.Div(amountIn).Mul(decHundred)

	return PathResult{
		GrossOutput:   current,
		NetProfit:     net,
		ProfitPercent: pct,
		Profitable:    net.Sign() > 0 && pct.GreaterThanOrEqual(e.minProfitThreshold.Mul(decHundred)),
	}, nil
}

const optimizeIterations = 30

var optimizeFloor = decimal.NewFromFloat(0.001)

// OptimizeInput searches (0, maxInput] for the net-profit-maximizing input
// amount. Profit over a fixed path is unimodal in the input, so a bisection
// that probes each midpoint against a slightly larger amount converges on
// the peak. The best candidate seen is returned even when nothing on the
// path is profitable; absence of profit is not an error.
func (e *Engine) OptimizeInput(path []ReservePair, maxInput, gasCost decimal.Decimal) (OptimizeResult, error) {
	if len(path) < 2 {
		return OptimizeResult{}, fmt.Errorf("%w: got %d", ErrInvalidPath, len(path))
	}
	if maxInput.Sign() <= 0 {
		return OptimizeResult{}, fmt.Errorf("%w: max input must be positive", ErrInvalidInput)
	}
	if gasCost.IsNegative() {
		return OptimizeResult{}, fmt.Errorf("%w: negative gas cost", ErrInvalidInput)
	}

	low := optimizeFloor
	if maxInput.LessThan(low) {
		low = maxInput
	}
	high := maxInput
	step := decimal.NewFromFloat(1.1)

	first, err := e.PathProfit(low, path, gasCost)
	if err != nil {
		return OptimizeResult{}, err
	}
	best := OptimizeResult{AmountIn: low, PathResult: first}

	evaluate := func(amount decimal.Decimal) (PathResult, error) {
		res, err := e.PathProfit(amount, path, gasCost)
		if err != nil {
			return PathResult{}, err
		}
		if res.NetProfit.GreaterThan(best.NetProfit) {
			best = OptimizeResult{AmountIn: amount, PathResult: res}
		}
		return res, nil
	}

	for i := 0; i < optimizeIterations; i++ {
		mid := low.Add(high).Div(decTwo)
		if mid.Sign() <= 0 {
			break
		}

		atMid, err := evaluate(mid)
		if err != nil {
			return OptimizeResult{}, err
		}

		probe := mid.Mul(step)
		if probe.GreaterThan(maxInput) {
			probe = maxInput
		}
		atProbe, err := evaluate(probe)
		if err != nil {
			return OptimizeResult{}, err
		}

		if atProbe.NetProfit.GreaterThan(atMid.NetProfit) {
			low = mid
		} else {
			high = mid
		}
	}

	return best, nil
}

func validateSwap(amountIn, reserveIn, reserveOut, fee decimal.Decimal) error {
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return fmt.Errorf("%w: reserves must be positive", ErrInvalidInput)
	}
	if amountIn.IsNegative() {
		return fmt.Errorf("%w: negative amount", ErrInvalidInput)
	}
	if fee.IsNegative() || fee.GreaterThanOrEqual(decOne) {
		return fmt.Errorf("%w: fee outside [0, 1)", ErrInvalidInput)
	}
	return nil
}
