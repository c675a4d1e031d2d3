package market

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PoolSnapshot is one venue's reserve pair for a token pair at a point in
// time. Reserve0 backs Token0 and Reserve1 backs Token1, both in human units.
type PoolSnapshot struct {
	Venue      string
	Pair       string
	Token0     string
	Token1     string
	Reserve0   decimal.Decimal
	Reserve1   decimal.Decimal
	Fee        decimal.Decimal
	ObservedAt time.Time
}

// ReserveReader produces the reserve snapshots a scan cycle works on.
type ReserveReader interface {
	Snapshots(ctx context.Context) ([]PoolSnapshot, error)
	Name() string
}
