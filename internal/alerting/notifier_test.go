package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func sampleNote() Notification {
	return Notification{
		Detected:     time.Now(),
		Dex1:         "uniswap_v3",
		Dex2:         "quickswap",
		TokenIn:      "DAI",
		TokenOut:     "USDC",
		AmountIn:     decimal.NewFromInt(1000),
		NetProfit:    decimal.RequireFromString("5.048"),
		ProfitPct:    decimal.RequireFromString("0.505"),
		ThresholdPct: decimal.RequireFromString("0.5"),
		GasCost:      decimal.NewFromInt(5),
		Channels:     []string{"telegram"},
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("路径应包含 sendMessage, 实际 %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("解析请求体失败: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())

	if err := notifier.Notify(context.Background(), sampleNote()); err != nil {
		t.Fatalf("Telegram Notify 应成功: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("chat_id 不正确: %#v", received)
	}
	text := received["text"]
	if !strings.Contains(text, "uniswap_v3 -> quickswap") {
		t.Fatalf("消息应包含路由: %q", text)
	}
	if !strings.Contains(text, "5.048") {
		t.Fatalf("消息应包含净利润: %q", text)
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())

	if err := notifier.Notify(context.Background(), sampleNote()); err == nil {
		t.Fatal("ok=false 应报错")
	}
}

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) Notify(context.Context, Notification) error {
	s.calls++
	return s.err
}

func TestMultiNotifierAggregates(t *testing.T) {
	okChan := &stubNotifier{}
	badChan := &stubNotifier{err: errors.New("channel down")}

	multi := NewMultiNotifier(okChan, badChan)
	err := multi.Notify(context.Background(), sampleNote())
	if err == nil || !strings.Contains(err.Error(), "channel down") {
		t.Fatalf("失败通道应聚合进错误: %v", err)
	}
	if okChan.calls != 1 || badChan.calls != 1 {
		t.Fatalf("所有通道都应被调用: %d/%d", okChan.calls, badChan.calls)
	}

	if err := NewMultiNotifier(okChan).Notify(context.Background(), sampleNote()); err != nil {
		t.Fatalf("健康通道不应报错: %v", err)
	}
}

func TestNopNotifier(t *testing.T) {
	if err := (Nop{}).Notify(context.Background(), sampleNote()); err != nil {
		t.Fatalf("Nop 不应报错: %v", err)
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
