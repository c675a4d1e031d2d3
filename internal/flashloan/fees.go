// Package flashloan prices borrowed capital against detected opportunities.
package flashloan

import (
	"github.com/shopspring/decimal"

	"dex-arb-watcher/internal/scanner"
)

// Providers with a published fee schedule.
const (
	ProviderAaveV3   = "aave_v3"
	ProviderBalancer = "balancer"
)

// ProviderAddresses maps known providers to their Polygon pool contracts.
var ProviderAddresses = map[string]string{
	ProviderAaveV3:   "0x794a61358D6845594F94dc1DB02A252b5b4814aD",
	ProviderBalancer: "0xBA12222222228d8Ba445958a75a0704d566BF2C8",
}

var (
	feeAaveV3  = decimal.NewFromFloat(0.0005)
	feeDefault = decimal.NewFromFloat(0.0009)
)

// Known reports whether provider has a published fee schedule. Unknown
// providers still work, they are just priced at the conservative default.
func Known(provider string) bool {
	_, ok := ProviderAddresses[provider]
	return ok
}

// EstimateFee returns the fee charged for borrowing amount from provider.
// Aave V3 charges 5 bps, Balancer lends for free but wants the exact amount
// back. An empty provider means Aave V3.
func EstimateFee(provider string, amount decimal.Decimal) decimal.Decimal {
	if provider == "" {
		provider = ProviderAaveV3
	}
	switch provider {
	case ProviderAaveV3:
		return amount.Mul(feeAaveV3)
	case ProviderBalancer:
		return decimal.Zero
	default:
		return amount.Mul(feeDefault)
	}
}

// Viable re-checks an opportunity assuming its probe amount is borrowed from
// provider: the expected profit must cover gas plus the loan fee. The all-in
// cost is returned alongside the verdict.
func Viable(opp scanner.Opportunity, provider string) (bool, decimal.Decimal) {
	fee := EstimateFee(provider, opp.AmountIn)
	cost := opp.GasCost.Add(fee)
	return opp.ExpectedProfit.GreaterThan(cost), cost
}
