package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"dex-arb-watcher/internal/market"
	"dex-arb-watcher/internal/service"
)

// ScanOptions configure a one-shot detection pass.
type ScanOptions struct {
	Static  bool
	Persist bool
}

// Scan runs a single detection pass over the configured reserve source and
// prints every evaluated direction. With Persist the records also go through
// the storage leg, as one cycle of the running service would.
func (a *App) Scan(ctx context.Context, opts ScanOptions) error {
	reader := a.newReader()
	if opts.Static {
		reader = market.NewStatic(market.DemoPools())
	}
	registry := a.newRegistry()
	scan := a.newScanner()

	snapshots, err := reader.Snapshots(ctx)
	if err != nil {
		return fmt.Errorf("read reserves: %w", err)
	}

	active := registry.Active(a.Config.Venues.Chain, a.Config.Venues.MinPriority, a.Config.Venues.Max)
	allowed := make(map[string]struct{}, len(active))
	for _, v := range active {
		allowed[v.Identifier] = struct{}{}
	}
	filtered := snapshots[:0]
	for _, snap := range snapshots {
		if _, ok := allowed[snap.Venue]; ok {
			filtered = append(filtered, snap)
		}
	}

	opportunities := scan.Detect(filtered)
	if len(opportunities) == 0 {
		fmt.Fprintln(os.Stdout, "no venue pairs to compare")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Detected (UTC)\tRoute\tPair\tAmount In\tNet Profit\tProfit%\tGas\tProfitable")
	for _, opp := range opportunities {
		fmt.Fprintf(
			writer,
			"%s\t%s->%s\t%s/%s\t%s\t%s\t%s\t%s\t%t\n",
			opp.DetectedAt.UTC().Format(time.RFC3339),
			opp.Dex1,
			opp.Dex2,
			opp.TokenIn,
			opp.TokenOut,
			formatDecimal(opp.AmountIn, 2),
			formatDecimal(opp.ExpectedProfit, 6),
			formatDecimal(opp.ProfitPercent, 4),
			formatDecimal(opp.GasCost, 2),
			opp.Profitable,
		)
	}
	writer.Flush()

	if !opts.Persist {
		return nil
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("database not configured; cannot persist scan results")
	}
	if closeStore != nil {
		defer closeStore()
	}

	inserted, err := store.InsertOpportunities(ctx, service.ToRecords(opportunities))
	if err != nil {
		return fmt.Errorf("persist scan results: %w", err)
	}
	a.Logger.Info().Int64("inserted", inserted).Msg("scan results persisted")
	return nil
}
