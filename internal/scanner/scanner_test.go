package scanner

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"dex-arb-watcher/internal/amm"
	"dex-arb-watcher/internal/market"
)

func newScanner() *Scanner {
	return New(amm.NewDefault(), Options{}, zerolog.Nop())
}

func pool(venue, token0, token1 string, r0, r1 int64) market.PoolSnapshot {
	return market.PoolSnapshot{
		Venue:    venue,
		Pair:     venue + ":" + token0 + "/" + token1,
		Token0:   token0,
		Token1:   token1,
		Reserve0: decimal.NewFromInt(r0),
		Reserve1: decimal.NewFromInt(r1),
		Fee:      decimal.NewFromFloat(0.003),
	}
}

func TestDetectSkewedPairOneDirectionWins(t *testing.T) {
	snaps := []market.PoolSnapshot{
		pool("uniswap_v3", "DAI", "USDC", 500000, 500000),
		pool("quickswap", "DAI", "USDC", 505000, 495000),
	}

	opps := newScanner().Detect(snaps)
	if len(opps) != 2 {
		t.Fatalf("expected both directions evaluated, got %d", len(opps))
	}

	profitable := 0
	for _, opp := range opps {
		if opp.DetectedAt.IsZero() {
			t.Fatal("record missing detection time")
		}
		if opp.Dex1 == opp.Dex2 {
			t.Fatalf("venue compared with itself: %+v", opp)
		}
		if opp.Profitable {
			profitable++
			if opp.Dex1 != "uniswap_v3" || opp.Dex2 != "quickswap" {
				t.Fatalf("profit should flow from the balanced venue into the skewed one: %+v", opp)
			}
			if opp.ExpectedProfit.Sign() <= 0 {
				t.Fatalf("profitable record with non-positive profit: %s", opp.ExpectedProfit)
			}
		}
	}
	if profitable != 1 {
		t.Fatalf("exactly one direction should profit from the skew, got %d", profitable)
	}
}

func TestDetectNormalisesOrientation(t *testing.T) {
	straight := []market.PoolSnapshot{
		pool("uniswap_v3", "DAI", "USDC", 500000, 500000),
		pool("quickswap", "DAI", "USDC", 505000, 495000),
	}
	flipped := []market.PoolSnapshot{
		pool("uniswap_v3", "DAI", "USDC", 500000, 500000),
		pool("quickswap", "USDC", "DAI", 495000, 505000),
	}

	a := newScanner().Detect(straight)
	b := newScanner().Detect(flipped)
	if len(a) != len(b) {
		t.Fatalf("orientation changed the comparison count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].ExpectedProfit.Equal(b[i].ExpectedProfit) {
			t.Fatalf("orientation changed direction %d: %s vs %s", i, a[i].ExpectedProfit, b[i].ExpectedProfit)
		}
		if a[i].TokenIn != b[i].TokenIn {
			t.Fatalf("orientation changed the origin token: %s vs %s", a[i].TokenIn, b[i].TokenIn)
		}
	}
}

func TestDetectSkipsSameVenueAndForeignPairs(t *testing.T) {
	snaps := []market.PoolSnapshot{
		pool("quickswap", "DAI", "USDC", 500000, 500000),
		pool("quickswap", "DAI", "USDC", 505000, 495000),
		pool("sushiswap", "WETH", "USDT", 500, 1000000),
	}
	if opps := newScanner().Detect(snaps); len(opps) != 0 {
		t.Fatalf("nothing should be comparable here, got %d records", len(opps))
	}
}

func TestDetectSkipsInvalidReserves(t *testing.T) {
	snaps := []market.PoolSnapshot{
		pool("uniswap_v3", "DAI", "USDC", 500000, 500000),
		pool("quickswap", "DAI", "USDC", 0, 495000),
		pool("sushiswap", "DAI", "USDC", 505000, 495000),
	}
	opps := newScanner().Detect(snaps)
	// The zero-reserve pool drops out of all four of its directions; the two
	// healthy venues still compare both ways.
	if len(opps) != 2 {
		t.Fatalf("expected 2 records from the healthy venues, got %d", len(opps))
	}
	for _, opp := range opps {
		if opp.Dex1 == "quickswap" || opp.Dex2 == "quickswap" {
			t.Fatalf("zero-reserve venue should have been skipped: %+v", opp)
		}
	}
}

func TestBest(t *testing.T) {
	opps := []Opportunity{
		{Dex1: "a", Dex2: "b", ExpectedProfit: decimal.NewFromInt(7), Profitable: true},
		{Dex1: "c", Dex2: "d", ExpectedProfit: decimal.NewFromInt(12), Profitable: false},
		{Dex1: "e", Dex2: "f", ExpectedProfit: decimal.NewFromInt(9), Profitable: true},
	}

	best, ok := Best(opps)
	if !ok {
		t.Fatal("profitable records exist")
	}
	if best.Dex1 != "e" {
		t.Fatalf("expected the 9-profit record, got %+v", best)
	}

	if _, ok := Best(nil); ok {
		t.Fatal("no records means no best")
	}
	if _, ok := Best([]Opportunity{{Profitable: false}}); ok {
		t.Fatal("unprofitable records cannot win")
	}
}
