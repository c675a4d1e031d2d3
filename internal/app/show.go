package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"dex-arb-watcher/internal/storage"
)

type opportunityLister interface {
	ListRecentOpportunities(ctx context.Context, limit int) ([]storage.OpportunityRecord, error)
}

type bundleLister interface {
	ListRecentBundles(ctx context.Context, limit int) ([]storage.BundleRecord, error)
}

// Show prints recent opportunity records, or recent bundles when requested.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show records")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if opts.Bundles {
		return showBundles(ctx, store, opts.Limit)
	}
	return showOpportunities(ctx, store, opts.Limit)
}

func showOpportunities(ctx context.Context, store opportunityLister, limit int) error {
	records, err := store.ListRecentOpportunities(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no opportunities found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Detected (UTC)\tRoute\tPair\tAmount In\tNet Profit\tProfit%\tGas\tProfitable")

	for _, rec := range records {
		fmt.Fprintf(
			writer,
			"%s\t%s->%s\t%s/%s\t%s\t%s\t%s\t%s\t%t\n",
			rec.DetectedAt.UTC().Format(time.RFC3339),
			rec.Dex1,
			rec.Dex2,
			rec.TokenIn,
			rec.TokenOut,
			formatDecimal(rec.AmountIn, 2),
			formatDecimal(rec.ExpectedProfit, 6),
			formatDecimal(rec.ProfitPercent, 4),
			formatDecimal(rec.GasCost, 2),
			rec.Profitable,
		)
	}

	writer.Flush()
	return nil
}

func showBundles(ctx context.Context, store bundleLister, limit int) error {
	bundles, err := store.ListRecentBundles(ctx, limit)
	if err != nil {
		return err
	}
	if len(bundles) == 0 {
		fmt.Fprintln(os.Stdout, "no bundles found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Created (UTC)\tID\tRoot\tAlgo\tTxs\tTarget Block\tRelays\tSubmitted")

	for _, rec := range bundles {
		fmt.Fprintf(
			writer,
			"%s\t%d\t%s\t%s\t%d\t%d\t%s\t%t\n",
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.ID,
			truncateHash(rec.MerkleRoot),
			rec.HashAlgo,
			rec.TxCount,
			rec.TargetBlock,
			strings.Join(rec.Relays, ","),
			rec.Submitted,
		)
	}

	writer.Flush()
	return nil
}

func truncateHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:8] + ".." + h[len(h)-8:]
}
