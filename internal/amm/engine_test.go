package amm

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSwapOutputZeroAmount(t *testing.T) {
	e := NewDefault()
	out, err := e.SwapOutput(decimal.Zero, dec("500000"), dec("500000"), dec("0.003"))
	if err != nil {
		t.Fatalf("zero amount should be valid: %v", err)
	}
	if !out.IsZero() {
		t.Fatalf("expected zero output, got %s", out)
	}
}

func TestSwapOutputBounds(t *testing.T) {
	e := NewDefault()
	reserveIn := dec("500000")
	reserveOut := dec("500000")
	fee := dec("0.003")

	for _, amount := range []string{"0.001", "1", "1000", "250000", "10000000"} {
		out, err := e.SwapOutput(dec(amount), reserveIn, reserveOut, fee)
		if err != nil {
			t.Fatalf("amount %s: %v", amount, err)
		}
		if out.Sign() <= 0 {
			t.Fatalf("amount %s: output should be positive, got %s", amount, out)
		}
		if out.GreaterThanOrEqual(reserveOut) {
			t.Fatalf("amount %s: output %s reached reserve %s", amount, out, reserveOut)
		}
	}
}

func TestSwapOutputHonoursInvariant(t *testing.T) {
	e := NewDefault()
	amount := dec("1000")
	reserveIn := dec("500000")
	reserveOut := dec("500000")
	fee := dec("0.003")

	out, err := e.SwapOutput(amount, reserveIn, reserveOut, fee)
	if err != nil {
		t.Fatal(err)
	}

	// out * (reserveIn + inAfterFee) must equal inAfterFee * reserveOut up to
	// division rounding.
	inAfterFee := amount.Mul(dec("0.997"))
	lhs := out.Mul(reserveIn.Add(inAfterFee))
	rhs := inAfterFee.Mul(reserveOut)
	if lhs.Sub(rhs).Abs().GreaterThan(dec("0.000001")) {
		t.Fatalf("invariant violated: %s vs %s", lhs, rhs)
	}
}

func TestSwapOutputMonotonic(t *testing.T) {
	e := NewDefault()
	prev := decimal.Zero
	for _, amount := range []string{"1", "10", "100", "1000", "10000", "100000"} {
		out, err := e.SwapOutput(dec(amount), dec("500000"), dec("400000"), dec("0.003"))
		if err != nil {
			t.Fatalf("amount %s: %v", amount, err)
		}
		if out.LessThan(prev) {
			t.Fatalf("output decreased at amount %s: %s < %s", amount, out, prev)
		}
		prev = out
	}
}

func TestSwapOutputValidation(t *testing.T) {
	e := NewDefault()
	cases := []struct {
		name                   string
		amount, rIn, rOut, fee string
	}{
		{"zero reserve in", "100", "0", "500000", "0.003"},
		{"negative reserve out", "100", "500000", "-1", "0.003"},
		{"negative amount", "-5", "500000", "500000", "0.003"},
		{"negative fee", "100", "500000", "500000", "-0.001"},
		{"fee of one", "100", "500000", "500000", "1"},
		{"fee above one", "100", "500000", "500000", "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.SwapOutput(dec(tc.amount), dec(tc.rIn), dec(tc.rOut), dec(tc.fee))
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPriceImpactGrowsWithTradeSize(t *testing.T) {
	e := NewDefault()
	small, err := e.PriceImpact(dec("100"), dec("500000"), dec("500000"), dec("0.003"))
	if err != nil {
		t.Fatal(err)
	}
	large, err := e.PriceImpact(dec("50000"), dec("500000"), dec("500000"), dec("0.003"))
	if err != nil {
		t.Fatal(err)
	}
	if small.IsNegative() || large.IsNegative() {
		t.Fatalf("impact cannot be negative: %s, %s", small, large)
	}
	if !large.GreaterThan(small) {
		t.Fatalf("expected impact to grow with size: small=%s large=%s", small, large)
	}
}

func TestPriceImpactZeroAmount(t *testing.T) {
	e := NewDefault()
	if _, err := e.PriceImpact(decimal.Zero, dec("500000"), dec("500000"), dec("0.003")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func referencePath() []ReservePair {
	// Buy on the balanced pool, sell into the skewed one. The second hop is
	// the skewed pool reversed so the round trip ends in the origin token.
	return []ReservePair{
		{ReserveIn: dec("500000"), ReserveOut: dec("500000"), Fee: dec("0.003")},
		{ReserveIn: dec("495000"), ReserveOut: dec("505000"), Fee: dec("0.003")},
	}
}

func TestPathProfitReferencePathDeterministic(t *testing.T) {
	amount := dec("1000")
	gas := dec("5")

	first, err := NewDefault().PathProfit(amount, referencePath(), gas)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewDefault().PathProfit(amount, referencePath(), gas)
	if err != nil {
		t.Fatal(err)
	}

	if !first.NetProfit.Equal(second.NetProfit) || !first.GrossOutput.Equal(second.GrossOutput) {
		t.Fatalf("results differ across engines: %s vs %s", first.NetProfit, second.NetProfit)
	}
	if !first.Profitable {
		t.Fatalf("reference path should be profitable, net=%s pct=%s", first.NetProfit, first.ProfitPercent)
	}
	if first.NetProfit.LessThan(dec("5")) || first.NetProfit.GreaterThan(dec("5.1")) {
		t.Fatalf("net profit outside expected band: %s", first.NetProfit)
	}
}

func TestPathProfitMirroredPoolNeverProfits(t *testing.T) {
	e := New(decimal.Zero)
	path := []ReservePair{
		{ReserveIn: dec("500000"), ReserveOut: dec("400000"), Fee: decimal.Zero},
		{ReserveIn: dec("400000"), ReserveOut: dec("500000"), Fee: decimal.Zero},
	}
	res, err := e.PathProfit(dec("1000"), path, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	if res.NetProfit.Sign() > 0 {
		t.Fatalf("round trip through one pool cannot profit, net=%s", res.NetProfit)
	}
	if res.Profitable {
		t.Fatal("mirrored path flagged profitable")
	}
}

func TestSwapReversalReturnsInput(t *testing.T) {
	e := New(decimal.Zero)
	amount := dec("1000")
	reserveIn := dec("500000")
	reserveOut := dec("400000")

	out, err := e.SwapOutput(amount, reserveIn, reserveOut, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}

	// Swap back through the post-trade reserves; with no fee the round trip
	// must return the original amount up to division rounding.
	back, err := e.SwapOutput(out, reserveOut.Sub(out), reserveIn.Add(amount), decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	if back.Sub(amount).Abs().GreaterThan(dec("0.000000001")) {
		t.Fatalf("round trip drifted: sent %s, got back %s", amount, back)
	}
}

func TestPathProfitErrors(t *testing.T) {
	e := NewDefault()

	if _, err := e.PathProfit(dec("1000"), []ReservePair{{ReserveIn: dec("1"), ReserveOut: dec("1")}}, decimal.Zero); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("single hop: expected ErrInvalidPath, got %v", err)
	}
	if _, err := e.PathProfit(decimal.Zero, referencePath(), decimal.Zero); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero amount: expected ErrInvalidInput, got %v", err)
	}
	if _, err := e.PathProfit(dec("-10"), referencePath(), decimal.Zero); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative amount: expected ErrInvalidInput, got %v", err)
	}
	if _, err := e.PathProfit(dec("1000"), referencePath(), dec("-1")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative gas: expected ErrInvalidInput, got %v", err)
	}

	bad := []ReservePair{
		{ReserveIn: dec("500000"), ReserveOut: dec("500000"), Fee: dec("0.003")},
		{ReserveIn: decimal.Zero, ReserveOut: dec("500000"), Fee: dec("0.003")},
	}
	if _, err := e.PathProfit(dec("1000"), bad, decimal.Zero); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad hop: expected ErrInvalidInput, got %v", err)
	}
}

func TestPathProfitUnprofitableIsNotAnError(t *testing.T) {
	e := NewDefault()
	// Same orientation twice: the trade fights the skew and loses.
	path := []ReservePair{
		{ReserveIn: dec("505000"), ReserveOut: dec("495000"), Fee: dec("0.003")},
		{ReserveIn: dec("505000"), ReserveOut: dec("495000"), Fee: dec("0.003")},
	}
	res, err := e.PathProfit(dec("1000"), path, dec("5"))
	if err != nil {
		t.Fatalf("lack of profit must not error: %v", err)
	}
	if res.Profitable {
		t.Fatal("losing path flagged profitable")
	}
	if res.NetProfit.Sign() >= 0 {
		t.Fatalf("expected a loss, net=%s", res.NetProfit)
	}
}

func TestProfitableRequiresThreshold(t *testing.T) {
	strict := New(dec("0.01")) // 1% of input
	res, err := strict.PathProfit(dec("1000"), referencePath(), dec("5"))
	if err != nil {
		t.Fatal(err)
	}
	if res.NetProfit.Sign() <= 0 {
		t.Fatalf("reference path should net positive, got %s", res.NetProfit)
	}
	if res.Profitable {
		t.Fatalf("0.5%% gain must not clear a 1%% threshold, pct=%s", res.ProfitPercent)
	}
}

func TestOptimizeInputBeatsFixedProbe(t *testing.T) {
	e := NewDefault()
	maxInput := dec("50000")

	best, err := e.OptimizeInput(referencePath(), maxInput, dec("5"))
	if err != nil {
		t.Fatal(err)
	}
	if best.AmountIn.GreaterThan(maxInput) {
		t.Fatalf("optimizer exceeded bound: %s > %s", best.AmountIn, maxInput)
	}
	if !best.Profitable {
		t.Fatalf("optimizer should find profit on the reference path, net=%s", best.NetProfit)
	}

	atProbe, err := e.PathProfit(dec("1000"), referencePath(), dec("5"))
	if err != nil {
		t.Fatal(err)
	}
	if best.NetProfit.LessThan(atProbe.NetProfit) {
		t.Fatalf("optimizer found %s, worse than fixed probe %s", best.NetProfit, atProbe.NetProfit)
	}
}

func TestOptimizeInputUnprofitablePath(t *testing.T) {
	e := NewDefault()
	path := []ReservePair{
		{ReserveIn: dec("505000"), ReserveOut: dec("495000"), Fee: dec("0.003")},
		{ReserveIn: dec("505000"), ReserveOut: dec("495000"), Fee: dec("0.003")},
	}
	best, err := e.OptimizeInput(path, dec("10000"), dec("5"))
	if err != nil {
		t.Fatalf("no profit is a result, not an error: %v", err)
	}
	if best.Profitable {
		t.Fatal("losing path flagged profitable")
	}
	if best.AmountIn.Sign() <= 0 {
		t.Fatalf("best amount must stay positive, got %s", best.AmountIn)
	}
}

func TestOptimizeInputValidation(t *testing.T) {
	e := NewDefault()
	if _, err := e.OptimizeInput(referencePath(), decimal.Zero, decimal.Zero); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero bound: expected ErrInvalidInput, got %v", err)
	}
	if _, err := e.OptimizeInput([]ReservePair{}, dec("1000"), decimal.Zero); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("empty path: expected ErrInvalidPath, got %v", err)
	}
	if _, err := e.OptimizeInput(referencePath(), dec("1000"), dec("-1")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative gas: expected ErrInvalidInput, got %v", err)
	}
}
