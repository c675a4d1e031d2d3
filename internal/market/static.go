package market

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Static serves a fixed snapshot set. It backs offline scans and tests.
type Static struct {
	pools []PoolSnapshot
}

// NewStatic wraps a snapshot list in a reader.
func NewStatic(pools []PoolSnapshot) *Static {
	return &Static{pools: pools}
}

// Snapshots returns a copy of the fixture pools stamped with the current time.
func (s *Static) Snapshots(ctx context.Context) ([]PoolSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]PoolSnapshot, len(s.pools))
	for i, p := range s.pools {
		p.ObservedAt = now
		out[i] = p
	}
	return out, nil
}

// Name identifies the reader in logs.
func (s *Static) Name() string {
	return "static"
}

var defaultFee = decimal.NewFromFloat(0.003)

// DemoPools returns the built-in fixture set: a USDC/WETH pair quoted on two
// venues with a small skew between them, plus two unrelated pools.
func DemoPools() []PoolSnapshot {
	return []PoolSnapshot{
		{
			Venue:    "uniswap_v3",
			Pair:     "0x45dda9cb7c25131df268515131f647d726f50608",
			Token0:   "USDC",
			Token1:   "WETH",
			Reserve0: decimal.NewFromInt(1500000),
			Reserve1: decimal.NewFromInt(750),
			Fee:      defaultFee,
		},
		{
			Venue:    "quickswap",
			Pair:     "0x853ee4b2a13f8a742d64c8f088be7ba2131f670d",
			Token0:   "USDC",
			Token1:   "WETH",
			Reserve0: decimal.NewFromInt(1480000),
			Reserve1: decimal.NewFromInt(740),
			Fee:      defaultFee,
		},
		{
			Venue:    "quickswap",
			Pair:     "0x6e7a5fafcec6bb1e78bae2a1f0b612012bf14827",
			Token0:   "USDC",
			Token1:   "WMATIC",
			Reserve0: decimal.NewFromInt(2000000),
			Reserve1: decimal.NewFromInt(1500000),
			Fee:      defaultFee,
		},
		{
			Venue:    "sushiswap",
			Pair:     "0xcd353f79d9fade311fc3119b841e1f456b54e858",
			Token0:   "WETH",
			Token1:   "USDT",
			Reserve0: decimal.NewFromInt(500),
			Reserve1: decimal.NewFromInt(1000000),
			Fee:      defaultFee,
		},
	}
}

var _ ReserveReader = (*Static)(nil)
