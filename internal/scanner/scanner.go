package scanner

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"dex-arb-watcher/internal/amm"
	"dex-arb-watcher/internal/market"
)

// Opportunity records one evaluated round trip between two venues. Records
// are emitted for every evaluated direction, profitable or not, and are not
// de-duplicated across scan cycles.
type Opportunity struct {
	Dex1           string          `json:"dex1"`
	Dex2           string          `json:"dex2"`
	TokenIn        string          `json:"token_in"`
	TokenOut       string          `json:"token_out"`
	AmountIn       decimal.Decimal `json:"amount_in"`
	GrossOutput    decimal.Decimal `json:"gross_output"`
	ExpectedProfit decimal.Decimal `json:"expected_profit"`
	ProfitPercent  decimal.Decimal `json:"profit_percentage"`
	GasCost        decimal.Decimal `json:"gas_cost"`
	Profitable     bool            `json:"is_profitable"`
	DetectedAt     time.Time       `json:"detected_at"`
}

// Options tune the probe trade used for every comparison.
type Options struct {
	TradeAmount decimal.Decimal
	GasCost     decimal.Decimal
}

// Scanner runs pairwise venue comparisons over reserve snapshots.
type Scanner struct {
	engine *amm.Engine
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scanner. A zero trade amount falls back to 1000 units and
// a zero gas cost to 5, the conventional probe values.
func New(engine *amm.Engine, opts Options, logger zerolog.Logger) *Scanner {
	if opts.TradeAmount.Sign() <= 0 {
		opts.TradeAmount = decimal.NewFromInt(1000)
	}
	if opts.GasCost.IsZero() {
		opts.GasCost = decimal.NewFromInt(5)
	}
	return &Scanner{
		engine: engine,
		opts:   opts,
		logger: logger.With().Str("component", "scanner").Logger(),
	}
}

// oriented is a snapshot normalised so TokenA/TokenB are in lexicographic
// order regardless of how the venue lists the pair.
type oriented struct {
	venue    string
	tokenA   string
	tokenB   string
	reserveA decimal.Decimal
	reserveB decimal.Decimal
	fee      decimal.Decimal
}

func orient(s market.PoolSnapshot) oriented {
	if s.Token0 <= s.Token1 {
		return oriented{venue: s.Venue, tokenA: s.Token0, tokenB: s.Token1, reserveA: s.Reserve0, reserveB: s.Reserve1, fee: s.Fee}
	}
	return oriented{venue: s.Venue, tokenA: s.Token1, tokenB: s.Token0, reserveA: s.Reserve1, reserveB: s.Reserve0, fee: s.Fee}
}

// Detect compares every venue pair quoting the same token pair, in both
// directions, and returns one record per evaluated direction. Snapshots the
// engine rejects are skipped; Detect itself never fails.
func (s *Scanner) Detect(snapshots []market.PoolSnapshot) []Opportunity {
	groups := make(map[string][]oriented)
	order := make([]string, 0)
	for _, snap := range snapshots {
		o := orient(snap)
		key := o.tokenA + "/" + o.tokenB
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], o)
	}

	now := time.Now().UTC()
	opportunities := make([]Opportunity, 0)
	for _, key := range order {
		pools := groups[key]
		for i := 0; i < len(pools); i++ {
			for j := i + 1; j < len(pools); j++ {
				if pools[i].venue == pools[j].venue {
					continue
				}
				if opp, ok := s.evaluate(pools[i], pools[j], now); ok {
					opportunities = append(opportunities, opp)
				}
				if opp, ok := s.evaluate(pools[j], pools[i], now); ok {
					opportunities = append(opportunities, opp)
				}
			}
		}
	}
	return opportunities
}

// evaluate prices one direction: buy TokenB on first, sell it back on second.
// The second pool's reserves are reversed so the round trip returns to TokenA.
func (s *Scanner) evaluate(first, second oriented, detectedAt time.Time) (Opportunity, bool) {
	path := []amm.ReservePair{
		{ReserveIn: first.reserveA, ReserveOut: first.reserveB, Fee: first.fee},
		{ReserveIn: second.reserveB, ReserveOut: second.reserveA, Fee: second.fee},
	}

	res, err := s.engine.PathProfit(s.opts.TradeAmount, path, s.opts.GasCost)
	if err != nil {
		s.logger.Debug().Err(err).
			Str("dex1", first.venue).
			Str("dex2", second.venue).
			Str("pair", first.tokenA+"/"+first.tokenB).
			Msg("skipping pair with invalid reserves")
		return Opportunity{}, false
	}

	return Opportunity{
		Dex1:           first.venue,
		Dex2:           second.venue,
		TokenIn:        first.tokenA,
		TokenOut:       first.tokenB,
		AmountIn:       s.opts.TradeAmount,
		GrossOutput:    res.GrossOutput,
		ExpectedProfit: res.NetProfit,
		ProfitPercent:  res.ProfitPercent,
		GasCost:        s.opts.GasCost,
		Profitable:     res.Profitable,
		DetectedAt:     detectedAt,
	}, true
}

// Best picks the profitable opportunity with the highest expected profit.
func Best(opportunities []Opportunity) (Opportunity, bool) {
	var best Opportunity
	found := false
	for _, opp := range opportunities {
		if !opp.Profitable {
			continue
		}
		if !found || opp.ExpectedProfit.GreaterThan(best.ExpectedProfit) {
			best = opp
			found = true
		}
	}
	return best, found
}
