// Package feed streams detected opportunities to Redis for external
// dashboards and executors.
package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dex-arb-watcher/internal/scanner"
)

// Publisher pushes opportunity records to a realtime consumer.
type Publisher interface {
	Publish(ctx context.Context, opps []scanner.Opportunity) error
	Close() error
}

// Options parameterise the Redis publisher.
type Options struct {
	Addr      string
	DB        int
	Username  string
	Password  string
	Stream    string
	LatestKey string
	MaxLen    int64
}

// RedisPublisher appends each record to a capped stream and keeps the latest
// batch under a plain key so dashboards can bootstrap without replaying.
type RedisPublisher struct {
	rdb       *redis.Client
	stream    string
	latestKey string
	maxLen    int64
	logger    zerolog.Logger
}

// NewRedisPublisher connects lazily; the first Publish surfaces a bad address.
func NewRedisPublisher(opts Options, logger zerolog.Logger) *RedisPublisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		DB:       opts.DB,
		Username: opts.Username,
		Password: opts.Password,
	})

	stream := opts.Stream
	if stream == "" {
		stream = "arb:opps"
	}
	latest := opts.LatestKey
	if latest == "" {
		latest = "arb:latest"
	}
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 1000
	}

	return &RedisPublisher{
		rdb:       rdb,
		stream:    stream,
		latestKey: latest,
		maxLen:    maxLen,
		logger:    logger.With().Str("component", "feed").Logger(),
	}
}

// Publish appends one stream entry per record, then refreshes the latest
// snapshot key with the whole batch.
func (p *RedisPublisher) Publish(ctx context.Context, opps []scanner.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	for _, opp := range opps {
		values := map[string]interface{}{
			"dex1":              opp.Dex1,
			"dex2":              opp.Dex2,
			"token_in":          opp.TokenIn,
			"token_out":         opp.TokenOut,
			"amount_in":         opp.AmountIn.String(),
			"expected_profit":   opp.ExpectedProfit.String(),
			"profit_percentage": opp.ProfitPercent.String(),
			"gas_cost":          opp.GasCost.String(),
			"is_profitable":     opp.Profitable,
			"detected_at":       opp.DetectedAt.UnixMilli(),
		}
		err := p.rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: p.maxLen,
			Approx: true,
			Values: values,
		}).Err()
		if err != nil {
			return fmt.Errorf("xadd %s: %w", p.stream, err)
		}
	}

	payload, err := json.Marshal(opps)
	if err != nil {
		return fmt.Errorf("marshal latest batch: %w", err)
	}
	if err := p.rdb.Set(ctx, p.latestKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", p.latestKey, err)
	}

	p.logger.Debug().Int("records", len(opps)).Str("stream", p.stream).Msg("opportunities published")
	return nil
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// Nop drops everything; used when no feed is configured.
type Nop struct{}

func (Nop) Publish(context.Context, []scanner.Opportunity) error { return nil }
func (Nop) Close() error                                         { return nil }

var (
	_ Publisher = (*RedisPublisher)(nil)
	_ Publisher = Nop{}
)
