package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpportunityRecord represents one persisted venue-pair evaluation.
type OpportunityRecord struct {
	ID             int64
	Dex1           string
	Dex2           string
	TokenIn        string
	TokenOut       string
	AmountIn       decimal.Decimal
	GrossOutput    decimal.Decimal
	ExpectedProfit decimal.Decimal
	ProfitPercent  decimal.Decimal
	GasCost        decimal.Decimal
	Profitable     bool
	DetectedAt     time.Time
	CreatedAt      time.Time
}

// BundleRecord captures an assembled transaction bundle for auditing.
type BundleRecord struct {
	ID          int64
	MerkleRoot  string
	HashAlgo    string
	TxCount     int
	TargetBlock int64
	Relays      []string
	Submitted   bool
	CreatedAt   time.Time
}
