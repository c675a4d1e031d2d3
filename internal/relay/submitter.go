// Package relay delivers transaction bundles to MEV relay endpoints.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"dex-arb-watcher/internal/bundle"
)

// Submitter delivers a bundle for inclusion at a target block.
type Submitter interface {
	Submit(ctx context.Context, b *bundle.Bundle, targetBlock uint64) error
	Name() string
}

// Options parameterise the HTTP submitter.
type Options struct {
	Endpoints     []string
	Timeout       time.Duration
	MaxRetries    uint64
	RetryInterval time.Duration
}

// HTTPSubmitter POSTs eth_sendBundle calls to every configured relay.
type HTTPSubmitter struct {
	opts   Options
	client *http.Client
	logger zerolog.Logger
}

// NewHTTPSubmitter constructs a submitter. Zero timeout defaults to 10s and
// zero retries to 3 attempts after the first.
func NewHTTPSubmitter(opts Options, logger zerolog.Logger) *HTTPSubmitter {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}

	return &HTTPSubmitter{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger.With().Str("component", "relay").Logger(),
	}
}

// Name identifies the submitter implementation.
func (s *HTTPSubmitter) Name() string {
	return "http"
}

type sendBundleParams struct {
	Txs             []string `json:"txs"`
	BlockNumber     string   `json:"blockNumber"`
	MinTimestamp    int64    `json:"minTimestamp"`
	MaxTimestamp    int64    `json:"maxTimestamp"`
	ReplacementUUID *string  `json:"replacementUuid"`
}

type rpcRequest struct {
	JSONRPC string             `json:"jsonrpc"`
	ID      int                `json:"id"`
	Method  string             `json:"method"`
	Params  []sendBundleParams `json:"params"`
}

type rpcResponse struct {
	Error *rpcError `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Submit sends the bundle to every endpoint and succeeds only when all of
// them accepted it. Per-endpoint failures are retried with exponential
// backoff, then joined into the returned error.
func (s *HTTPSubmitter) Submit(ctx context.Context, b *bundle.Bundle, targetBlock uint64) error {
	if len(s.opts.Endpoints) == 0 {
		return errors.New("no relay endpoints configured")
	}

	payload := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_sendBundle",
		Params: []sendBundleParams{{
			Txs:         b.Txs,
			BlockNumber: fmt.Sprintf("0x%x", targetBlock),
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal bundle payload: %w", err)
	}

	var errs []error
	for _, endpoint := range s.opts.Endpoints {
		if err := s.submitOne(ctx, endpoint, body); err != nil {
			s.logger.Warn().Err(err).Str("relay", endpoint).Msg("relay submission failed")
			errs = append(errs, fmt.Errorf("relay %s: %w", endpoint, err))
			continue
		}
		s.logger.Info().
			Str("relay", endpoint).
			Uint64("target_block", targetBlock).
			Int("txs", len(b.Txs)).
			Msg("bundle accepted")
	}
	return errors.Join(errs...)
}

func (s *HTTPSubmitter) submitOne(ctx context.Context, endpoint string, body []byte) error {
	bo := backoff.NewExponentialBackOff()
	if s.opts.RetryInterval > 0 {
		bo.InitialInterval = s.opts.RetryInterval
	}
	return backoff.Retry(func() error {
		return s.post(ctx, endpoint, body)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, s.opts.MaxRetries), ctx))
}

func (s *HTTPSubmitter) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return relayHTTPError(resp.StatusCode, payload)
	}

	// A 200 can still carry a JSON-RPC rejection; retrying those cannot help.
	var rpcRes rpcResponse
	if err := json.Unmarshal(payload, &rpcRes); err == nil && rpcRes.Error != nil {
		return backoff.Permanent(fmt.Errorf("relay rejected bundle (%d): %s", rpcRes.Error.Code, rpcRes.Error.Message))
	}
	return nil
}

func relayHTTPError(status int, payload []byte) error {
	var rpcRes rpcResponse
	if err := json.Unmarshal(payload, &rpcRes); err == nil && rpcRes.Error != nil {
		return fmt.Errorf("relay error (%d): %s", status, rpcRes.Error.Message)
	}
	if len(payload) > 0 {
		return fmt.Errorf("relay error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("relay error (%d)", status)
}

var _ Submitter = (*HTTPSubmitter)(nil)
