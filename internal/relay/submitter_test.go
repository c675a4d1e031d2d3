package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"dex-arb-watcher/internal/bundle"
)

func testBundle(t *testing.T) *bundle.Bundle {
	t.Helper()
	builder, err := bundle.NewBuilder("", nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	b, err := builder.Build([]string{"0xaa", "0xbb"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b
}

func acceptBundle(w http.ResponseWriter) {
	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": map[string]any{}})
}

func TestSubmitSendsWellFormedPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		acceptBundle(w)
	}))
	defer srv.Close()

	sub := NewHTTPSubmitter(Options{Endpoints: []string{srv.URL}}, testLogger())
	if err := sub.Submit(context.Background(), testBundle(t), 436); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if got["jsonrpc"] != "2.0" || got["method"] != "eth_sendBundle" {
		t.Fatalf("bad envelope: %#v", got)
	}
	params, ok := got["params"].([]any)
	if !ok || len(params) != 1 {
		t.Fatalf("params should hold one bundle object: %#v", got["params"])
	}
	p := params[0].(map[string]any)
	if p["blockNumber"] != "0x1b4" {
		t.Fatalf("blockNumber = %v, want 0x1b4", p["blockNumber"])
	}
	if txs := p["txs"].([]any); len(txs) != 2 {
		t.Fatalf("txs not carried: %#v", p["txs"])
	}
	for _, key := range []string{"minTimestamp", "maxTimestamp", "replacementUuid"} {
		if _, present := p[key]; !present {
			t.Fatalf("payload missing %s: %#v", key, p)
		}
	}
	if p["replacementUuid"] != nil {
		t.Fatalf("replacementUuid should be null, got %v", p["replacementUuid"])
	}
}

func TestSubmitRetriesUntilAccepted(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}
		acceptBundle(w)
	}))
	defer srv.Close()

	sub := NewHTTPSubmitter(Options{
		Endpoints:     []string{srv.URL},
		MaxRetries:    5,
		RetryInterval: time.Millisecond,
	}, testLogger())

	if err := sub.Submit(context.Background(), testBundle(t), 1); err != nil {
		t.Fatalf("Submit should recover after retries: %v", err)
	}
	if n := attempts.Load(); n != 3 {
		t.Fatalf("attempts = %d, want 3", n)
	}
}

func TestSubmitDoesNotRetryRPCRejection(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32000, "message": "bundle already included"},
		})
	}))
	defer srv.Close()

	sub := NewHTTPSubmitter(Options{
		Endpoints:     []string{srv.URL},
		RetryInterval: time.Millisecond,
	}, testLogger())

	err := sub.Submit(context.Background(), testBundle(t), 1)
	if err == nil || !strings.Contains(err.Error(), "bundle already included") {
		t.Fatalf("rejection should surface the relay message, got %v", err)
	}
	if n := attempts.Load(); n != 1 {
		t.Fatalf("rejections must not be retried, attempts = %d", n)
	}
}

func TestSubmitJoinsPartialFailures(t *testing.T) {
	var goodHit atomic.Int32
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		goodHit.Add(1)
		acceptBundle(w)
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no thanks", http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	sub := NewHTTPSubmitter(Options{
		Endpoints:     []string{good.URL, bad.URL},
		MaxRetries:    1,
		RetryInterval: time.Millisecond,
	}, testLogger())

	err := sub.Submit(context.Background(), testBundle(t), 1)
	if err == nil {
		t.Fatal("one failing relay must fail the submission")
	}
	if !strings.Contains(err.Error(), bad.URL) {
		t.Fatalf("error should name the failing relay: %v", err)
	}
	if goodHit.Load() == 0 {
		t.Fatal("healthy relay should still have been tried")
	}
}

func TestSubmitNoEndpoints(t *testing.T) {
	sub := NewHTTPSubmitter(Options{}, testLogger())
	if err := sub.Submit(context.Background(), testBundle(t), 1); err == nil {
		t.Fatal("missing endpoints should be an error")
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
