package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification 封装一次套利告警上下文。
type Notification struct {
	Detected      time.Time
	Dex1          string
	Dex2          string
	TokenIn       string
	TokenOut      string
	AmountIn      decimal.Decimal
	NetProfit     decimal.Decimal
	ProfitPct     decimal.Decimal
	ThresholdPct  decimal.Decimal
	GasCost       decimal.Decimal
	Channels      []string
	FlashloanNote string
}

// Notifier 定义告警输送接口。
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 告警器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram 返回 ok=false")
		}
	}

	n.logger.Info().Time("detected", note.Detected).
		Str("route", note.Dex1+"->"+note.Dex2).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("告警已发送 (Telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[DEX Arb Alert]\n")
	builder.WriteString(fmt.Sprintf("Detected: %s UTC\n", note.Detected.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("Route: %s -> %s\n", note.Dex1, note.Dex2))
	builder.WriteString(fmt.Sprintf("Pair: %s/%s\n", note.TokenIn, note.TokenOut))
	builder.WriteString(fmt.Sprintf("Amount in: %s %s\n", note.AmountIn.String(), note.TokenIn))
	builder.WriteString(fmt.Sprintf("Net profit: %s (%s%%, threshold %s%%)\n", note.NetProfit.StringFixed(3), note.ProfitPct.StringFixed(3), note.ThresholdPct.StringFixed(3)))
	builder.WriteString(fmt.Sprintf("Gas: %s\n", note.GasCost.String()))
	if note.FlashloanNote != "" {
		builder.WriteString(fmt.Sprintf("Flashloan: %s\n", note.FlashloanNote))
	}
	if len(note.Channels) > 0 {
		builder.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(note.Channels, ",")))
	}
	return builder.String()
}

// MultiNotifier 依次调用多个通道，失败的通道聚合成一个错误。
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier 组合多个告警通道。
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Notify fans the notification out to every channel.
func (m *MultiNotifier) Notify(ctx context.Context, note Notification) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop 丢弃所有告警，用于未配置告警通道的场景。
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Notification) error { return nil }

var (
	_ Notifier = (*TelegramNotifier)(nil)
	_ Notifier = (*MultiNotifier)(nil)
	_ Notifier = Nop{}
)
