package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"dex-arb-watcher/internal/alerting"
	"dex-arb-watcher/internal/amm"
	"dex-arb-watcher/internal/config"
	"dex-arb-watcher/internal/feed"
	"dex-arb-watcher/internal/market"
	"dex-arb-watcher/internal/metrics"
	"dex-arb-watcher/internal/scanner"
	"dex-arb-watcher/internal/scheduler"
	"dex-arb-watcher/internal/service"
	"dex-arb-watcher/internal/storage"
	"dex-arb-watcher/internal/venue"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// newReader selects the reserve source: on-chain pair contracts when pairs are
// configured, the built-in fixture set otherwise.
func (a *App) newReader() market.ReserveReader {
	if len(a.Config.Ethereum.Pairs) > 0 {
		pairs := make([]market.PairConfig, len(a.Config.Ethereum.Pairs))
		for i, p := range a.Config.Ethereum.Pairs {
			pairs[i] = market.PairConfig{
				Venue:     p.Venue,
				Address:   p.Address,
				Token0:    p.Token0,
				Token1:    p.Token1,
				Decimals0: int(p.Decimals0),
				Decimals1: int(p.Decimals1),
				Fee:       decimal.NewFromFloat(p.Fee),
			}
		}
		return market.NewChain(market.ChainOptions{
			RPCURL:  a.Config.Ethereum.RPCURL,
			Timeout: a.Config.Ethereum.RequestTimeout,
			Pairs:   pairs,
		}, a.Logger)
	}

	a.Logger.Warn().Msg("ethereum.pairs not configured; using built-in demo pools")
	return market.NewStatic(market.DemoPools())
}

// newRegistry builds the caller-owned venue registry: the built-in set patched
// by configured custom venues and enable/disable overrides.
func (a *App) newRegistry() *venue.Registry {
	registry := venue.Default()
	for _, v := range a.Config.Venues.Custom {
		registry.Register(v)
	}
	registry.SetEnabledBulk(a.Config.Venues.Enable, true)
	registry.SetEnabledBulk(a.Config.Venues.Disable, false)
	return registry
}

func (a *App) newScanner() *scanner.Scanner {
	engine := amm.New(decimal.NewFromFloat(a.Config.Engine.MinProfitThreshold))
	return scanner.New(engine, scanner.Options{
		TradeAmount: decimal.NewFromFloat(a.Config.Scanner.TradeAmount),
		GasCost:     decimal.NewFromFloat(a.Config.Scanner.GasCost),
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) newPublisher() feed.Publisher {
	if !a.Config.Feed.Enabled {
		return feed.Nop{}
	}
	return feed.NewRedisPublisher(feed.Options{
		Addr:      a.Config.Feed.Addr,
		DB:        a.Config.Feed.DB,
		Username:  a.Config.Feed.Username,
		Password:  a.Config.Feed.Password,
		Stream:    a.Config.Feed.Stream,
		LatestKey: a.Config.Feed.LatestKey,
		MaxLen:    a.Config.Feed.MaxLen,
	}, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running watcher service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:       a.Config.Scheduler.Interval,
		AlignToCycle:   a.Config.Scheduler.AlignToCycle,
		RunImmediately: a.Config.Scheduler.RunImmediately,
		StartupDelay:   a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	reader := a.newReader()
	registry := a.newRegistry()
	scan := a.newScanner()
	notifier := a.newNotifier()
	publisher := a.newPublisher()
	defer publisher.Close()

	metrics.Serve(ctx, a.Config.Metrics.Addr, nil, a.Logger)

	var oppStore storage.OpportunityStore
	if store != nil {
		oppStore = store
	}

	svc := service.New(a.Config, sched, reader, registry, scan, oppStore, notifier, publisher, a.Logger)

	a.Logger.Info().
		Str("reader", reader.Name()).
		Int("venues", registry.Len()).
		Msg("starting watcher service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("watcher service stopped")
	return nil
}

// ExportOptions hold parameters for exporting historical opportunities.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit   int
	Bundles bool
}

// PruneOptions configure the retention job.
type PruneOptions struct {
	OlderThan time.Duration
	DryRun    bool
}

// BundleOptions configure one bundle build. VerifyIndex < 0 skips the
// self-check.
type BundleOptions struct {
	Txs         []string
	TxsFile     string
	TargetBlock uint64
	Submit      bool
	JSON        bool
	OutPath     string
	VerifyIndex int
}
