package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"dex-arb-watcher/internal/market"
	"dex-arb-watcher/internal/service"
)

// SimulateAlert 使用给定的两组池子储备模拟一次完整的扫描与告警流程。
func (a *App) SimulateAlert(ctx context.Context, reserve1In, reserve1Out, reserve2In, reserve2Out decimal.Decimal) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting 未启用")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	fee := decimal.NewFromFloat(0.003)
	reader := market.NewStatic([]market.PoolSnapshot{
		{Venue: "uniswap_v3", Pair: "sim-1", Token0: "TOKEN_A", Token1: "TOKEN_B", Reserve0: reserve1In, Reserve1: reserve1Out, Fee: fee},
		{Venue: "quickswap", Pair: "sim-2", Token0: "TOKEN_A", Token1: "TOKEN_B", Reserve0: reserve2In, Reserve1: reserve2Out, Fee: fee},
	})

	svc := service.New(a.Config, nil, reader, a.newRegistry(), a.newScanner(), nil, notifier, nil, a.Logger)

	cycle := time.Now().UTC().Truncate(a.Config.Scheduler.Interval)
	return svc.ProcessCycle(ctx, cycle)
}
