package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"dex-arb-watcher/internal/bundle"
	"dex-arb-watcher/internal/metrics"
	"dex-arb-watcher/internal/relay"
	"dex-arb-watcher/internal/storage"
)

// BuildBundle assembles a Merkle bundle over the given signed transactions,
// records it for auditing when a database is configured, and optionally hands
// it to the configured relays.
func (a *App) BuildBundle(ctx context.Context, opts BundleOptions) error {
	txs := opts.Txs
	if opts.TxsFile != "" {
		fileTxs, err := readTxsFile(opts.TxsFile)
		if err != nil {
			return err
		}
		txs = append(txs, fileTxs...)
	}
	if len(txs) == 0 {
		return errors.New("at least one transaction is required")
	}

	builder, err := bundle.NewBuilder(a.Config.Bundle.HashAlgo, a.Config.Relay.Endpoints)
	if err != nil {
		return err
	}

	b, err := builder.Build(txs)
	if err != nil {
		return fmt.Errorf("build bundle: %w", err)
	}
	metrics.BundlesBuilt.Inc()

	a.Logger.Info().
		Str("merkle_root", b.MerkleRoot).
		Str("hash_algo", b.HashAlgo).
		Int("txs", len(b.Txs)).
		Msg("bundle built")

	if opts.VerifyIndex >= 0 {
		ok, err := bundle.Verify(b, opts.VerifyIndex)
		if err != nil {
			return fmt.Errorf("verify proof: %w", err)
		}
		fmt.Fprintf(os.Stdout, "proof for tx %d valid: %t\n", opts.VerifyIndex, ok)
	}

	var bundleID int64
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}
	if store != nil {
		bundleID, err = store.InsertBundle(ctx, storage.BundleRecord{
			MerkleRoot:  b.MerkleRoot,
			HashAlgo:    b.HashAlgo,
			TxCount:     len(b.Txs),
			TargetBlock: int64(opts.TargetBlock),
			Relays:      b.Relays,
		})
		if err != nil {
			return fmt.Errorf("record bundle: %w", err)
		}
	}

	if err := writeBundle(b, opts.JSON, opts.OutPath); err != nil {
		return err
	}

	if !opts.Submit {
		return nil
	}
	if opts.TargetBlock == 0 {
		return errors.New("--target-block is required when submitting")
	}

	submitter := relay.NewHTTPSubmitter(relay.Options{
		Endpoints:     a.Config.Relay.Endpoints,
		Timeout:       a.Config.Relay.RequestTimeout,
		MaxRetries:    a.Config.Relay.MaxRetries,
		RetryInterval: a.Config.Relay.RetryInterval,
	}, a.Logger)

	metrics.RelaySubmissions.Inc()
	if err := submitter.Submit(ctx, b, opts.TargetBlock); err != nil {
		metrics.RelayErrors.Inc()
		return fmt.Errorf("submit bundle: %w", err)
	}

	if store != nil && bundleID != 0 {
		if err := store.MarkBundleSubmitted(ctx, bundleID); err != nil {
			a.Logger.Error().Err(err).Int64("bundle_id", bundleID).Msg("failed to mark bundle submitted")
		}
	}
	return nil
}

// readTxsFile loads one signed transaction per line, skipping blanks.
func readTxsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open txs file: %w", err)
	}
	defer file.Close()

	var txs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		txs = append(txs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read txs file: %w", err)
	}
	return txs, nil
}

// writeBundle emits the artifact: a summary by default, full JSON on request.
func writeBundle(b *bundle.Bundle, fullJSON bool, path string) error {
	if !fullJSON && path == "" {
		fmt.Fprintf(os.Stdout, "root: %s\nalgo: %s\ntxs: %d\nproofs: %d\n", b.MerkleRoot, b.HashAlgo, len(b.Txs), len(b.Proofs))
		return nil
	}

	payload, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	if path == "" {
		fmt.Fprintln(os.Stdout, string(payload))
		return nil
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, append(payload, '\n'), 0o644)
}
