package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestHandlerHealthz(t *testing.T) {
	srv := httptest.NewServer(handler(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Fatalf("healthz body = %q", body)
	}
}

func TestHandlerExposesInstruments(t *testing.T) {
	ScanCycles.Inc()
	OpportunitiesFound.WithLabelValues("true").Inc()

	srv := httptest.NewServer(handler(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics body: %v", err)
	}
	text := string(body)
	for _, name := range []string{
		"arbwatcher_scan_cycles_total",
		"arbwatcher_opportunities_total",
		"arbwatcher_scan_duration_seconds",
	} {
		if !strings.Contains(text, name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}
}

func TestServeDisabledWithoutAddr(t *testing.T) {
	// Must return immediately instead of binding anything.
	Serve(context.Background(), "", nil, zerolog.Nop())
}
