package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"dex-arb-watcher/internal/alerting"
	"dex-arb-watcher/internal/config"
	"dex-arb-watcher/internal/feed"
	"dex-arb-watcher/internal/flashloan"
	"dex-arb-watcher/internal/market"
	"dex-arb-watcher/internal/metrics"
	"dex-arb-watcher/internal/scanner"
	"dex-arb-watcher/internal/scheduler"
	"dex-arb-watcher/internal/storage"
	"dex-arb-watcher/internal/venue"
)

// Service orchestrates reading reserves, scanning, persistence, and alerting.
type Service struct {
	scheduler *scheduler.Scheduler
	reader    market.ReserveReader
	registry  *venue.Registry
	scanner   *scanner.Scanner
	store     storage.OpportunityStore
	notifier  alerting.Notifier
	publisher feed.Publisher
	logger    zerolog.Logger

	threshold decimal.Decimal
	channels  []string
	alertsOn  bool
	cooldown  time.Duration
	lastAlert time.Time

	flashloanOn       bool
	flashloanProvider string

	venueChain       string
	venueMinPriority int
	venueMax         int

	locker  storage.AdvisoryLocker
	lockKey int64
}

// New constructs the watcher service.
func New(cfg *config.Config, sched *scheduler.Scheduler, reader market.ReserveReader, registry *venue.Registry, scan *scanner.Scanner, store storage.OpportunityStore, notifier alerting.Notifier, publisher feed.Publisher, logger zerolog.Logger) *Service {
	threshold := decimal.Zero
	if cfg.Alerting.Enabled && cfg.Alerting.ThresholdPct > 0 {
		threshold = decimal.NewFromFloat(cfg.Alerting.ThresholdPct)
	}

	if publisher == nil {
		publisher = feed.Nop{}
	}

	var locker storage.AdvisoryLocker
	if l, ok := store.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:         sched,
		reader:            reader,
		registry:          registry,
		scanner:           scan,
		store:             store,
		notifier:          notifier,
		publisher:         publisher,
		logger:            logger.With().Str("component", "service").Logger(),
		threshold:         threshold,
		channels:          cfg.Alerting.Channels,
		alertsOn:          cfg.Alerting.Enabled,
		cooldown:          cfg.Alerting.Cooldown,
		flashloanOn:       cfg.Flashloan.Enabled,
		flashloanProvider: cfg.Flashloan.Provider,
		venueChain:        cfg.Venues.Chain,
		venueMinPriority:  cfg.Venues.MinPriority,
		venueMax:          cfg.Venues.Max,
		locker:            locker,
		lockKey:           cfg.Scheduler.AdvisoryLockKey,
	}
}

// Run begins the aligned scan loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessCycle)
}

// ProcessCycle 执行单个扫描周期。
func (s *Service) ProcessCycle(ctx context.Context, cycle time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("cycle", cycle).Msg("skip cycle because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return s.executeCycle(ctx, cycle)
}

func (s *Service) executeCycle(ctx context.Context, cycle time.Time) error {
	started := time.Now()

	snapshots, err := s.reader.Snapshots(ctx)
	if err != nil {
		return fmt.Errorf("read reserves: %w", err)
	}

	snapshots = s.filterByRegistry(snapshots)
	metrics.SnapshotsRead.Set(float64(len(snapshots)))

	if len(snapshots) == 0 {
		s.logger.Warn().Time("cycle", cycle).Msg("no snapshots from enabled venues; nothing to scan")
		return nil
	}

	opportunities := s.scanner.Detect(snapshots)

	profitable := 0
	bestPct := decimal.Zero
	for _, opp := range opportunities {
		if opp.Profitable {
			profitable++
			if opp.ProfitPercent.GreaterThan(bestPct) {
				bestPct = opp.ProfitPercent
			}
		}
	}

	metrics.ScanCycles.Inc()
	metrics.ScanDuration.Observe(time.Since(started).Seconds())
	metrics.OpportunitiesFound.WithLabelValues("true").Add(float64(profitable))
	metrics.OpportunitiesFound.WithLabelValues("false").Add(float64(len(opportunities) - profitable))
	metrics.BestProfitPct.Set(bestPct.InexactFloat64())

	if s.store != nil {
		records := ToRecords(opportunities)
		if _, err := s.store.InsertOpportunities(ctx, records); err != nil {
			s.logger.Error().Err(err).Time("cycle", cycle).Msg("failed to persist opportunities")
		}
	}

	if profitable > 0 {
		winners := make([]scanner.Opportunity, 0, profitable)
		for _, opp := range opportunities {
			if opp.Profitable {
				winners = append(winners, opp)
			}
		}
		if err := s.publisher.Publish(ctx, winners); err != nil {
			s.logger.Error().Err(err).Time("cycle", cycle).Msg("failed to publish opportunities")
		}
	}

	s.logger.Info().Time("cycle", cycle).
		Int("snapshots", len(snapshots)).
		Int("evaluated", len(opportunities)).
		Int("profitable", profitable).
		Str("best_profit_pct", bestPct.String()).
		Msg("scan cycle complete")

	s.maybeAlert(ctx, cycle, opportunities)

	return nil
}

// filterByRegistry drops snapshots from venues that are disabled or filtered
// out by the configured chain, priority, and cap.
func (s *Service) filterByRegistry(snapshots []market.PoolSnapshot) []market.PoolSnapshot {
	if s.registry == nil {
		return snapshots
	}

	active := s.registry.Active(s.venueChain, s.venueMinPriority, s.venueMax)
	allowed := make(map[string]struct{}, len(active))
	for _, v := range active {
		allowed[v.Identifier] = struct{}{}
	}

	out := make([]market.PoolSnapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		if _, ok := allowed[snap.Venue]; !ok {
			s.logger.Debug().Str("venue", snap.Venue).Msg("dropping snapshot from inactive venue")
			continue
		}
		out = append(out, snap)
	}
	return out
}

func (s *Service) maybeAlert(ctx context.Context, cycle time.Time, opportunities []scanner.Opportunity) {
	if !s.alertsOn || s.notifier == nil {
		return
	}

	best, found := scanner.Best(opportunities)
	if !found {
		return
	}
	if !s.threshold.IsZero() && best.ProfitPercent.LessThan(s.threshold) {
		return
	}
	if s.cooldown > 0 && !s.lastAlert.IsZero() && cycle.Sub(s.lastAlert) < s.cooldown {
		s.logger.Debug().Time("cycle", cycle).Msg("suppressing alert within cooldown window")
		return
	}

	note := alerting.Notification{
		Detected:     best.DetectedAt,
		Dex1:         best.Dex1,
		Dex2:         best.Dex2,
		TokenIn:      best.TokenIn,
		TokenOut:     best.TokenOut,
		AmountIn:     best.AmountIn,
		NetProfit:    best.ExpectedProfit,
		ProfitPct:    best.ProfitPercent,
		ThresholdPct: s.threshold,
		GasCost:      best.GasCost,
		Channels:     s.channels,
	}
	if s.flashloanOn {
		note.FlashloanNote = flashloanNote(best, s.flashloanProvider)
	}

	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Time("cycle", cycle).Msg("failed to dispatch alert")
		return
	}
	metrics.AlertsSent.Inc()
	s.lastAlert = cycle
}

func flashloanNote(opp scanner.Opportunity, provider string) string {
	viable, cost := flashloan.Viable(opp, provider)
	if provider == "" {
		provider = flashloan.ProviderAaveV3
	}
	if viable {
		return fmt.Sprintf("viable via %s (all-in cost %s)", provider, cost.StringFixed(4))
	}
	return fmt.Sprintf("not viable via %s (all-in cost %s)", provider, cost.StringFixed(4))
}

// ToRecords converts scan output to its persisted form.
func ToRecords(opportunities []scanner.Opportunity) []storage.OpportunityRecord {
	records := make([]storage.OpportunityRecord, len(opportunities))
	for i, opp := range opportunities {
		records[i] = storage.OpportunityRecord{
			Dex1:           opp.Dex1,
			Dex2:           opp.Dex2,
			TokenIn:        opp.TokenIn,
			TokenOut:       opp.TokenOut,
			AmountIn:       opp.AmountIn,
			GrossOutput:    opp.GrossOutput,
			ExpectedProfit: opp.ExpectedProfit,
			ProfitPercent:  opp.ProfitPercent,
			GasCost:        opp.GasCost,
			Profitable:     opp.Profitable,
			DetectedAt:     opp.DetectedAt,
		}
	}
	return records
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
