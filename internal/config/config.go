package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"dex-arb-watcher/internal/logging"
	"dex-arb-watcher/internal/venue"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Venues    VenuesConfig    `mapstructure:"venues"`
	Flashloan FlashloanConfig `mapstructure:"flashloan"`
	Bundle    BundleConfig    `mapstructure:"bundle"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// SchedulerConfig governs scan cadence.
type SchedulerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToCycle    bool          `mapstructure:"align_to_cycle"`
	RunImmediately  bool          `mapstructure:"run_immediately"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// EngineConfig tunes the profitability math.
type EngineConfig struct {
	MinProfitThreshold float64 `mapstructure:"min_profit_threshold"`
}

// ScannerConfig sets the probe trade used for venue comparisons.
type ScannerConfig struct {
	TradeAmount float64 `mapstructure:"trade_amount"`
	GasCost     float64 `mapstructure:"gas_cost"`
}

// PairConfig describes one on-chain pair to read reserves from.
type PairConfig struct {
	Venue     string  `mapstructure:"venue"`
	Address   string  `mapstructure:"address"`
	Token0    string  `mapstructure:"token0"`
	Token1    string  `mapstructure:"token1"`
	Decimals0 int32   `mapstructure:"decimals0"`
	Decimals1 int32   `mapstructure:"decimals1"`
	Fee       float64 `mapstructure:"fee"`
}

// EthereumConfig covers on-chain data access.
type EthereumConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Pairs          []PairConfig  `mapstructure:"pairs"`
}

// VenuesConfig filters and patches the built-in venue registry.
type VenuesConfig struct {
	Chain       string        `mapstructure:"chain"`
	MinPriority int           `mapstructure:"min_priority"`
	Max         int           `mapstructure:"max"`
	Enable      []string      `mapstructure:"enable"`
	Disable     []string      `mapstructure:"disable"`
	Custom      []venue.Venue `mapstructure:"custom"`
}

// FlashloanConfig selects the capital provider assumed for viability checks.
type FlashloanConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Provider string `mapstructure:"provider"`
}

// BundleConfig sets how transaction bundles are hashed.
type BundleConfig struct {
	HashAlgo string `mapstructure:"hash_algo"`
}

// RelayConfig lists MEV relay endpoints and retry behaviour.
type RelayConfig struct {
	Endpoints      []string      `mapstructure:"endpoints"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     uint64        `mapstructure:"max_retries"`
	RetryInterval  time.Duration `mapstructure:"retry_interval"`
}

// AlertingConfig defines alert thresholds and routing.
type AlertingConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	ThresholdPct float64        `mapstructure:"threshold_pct"`
	Cooldown     time.Duration  `mapstructure:"cooldown"`
	Channels     []string       `mapstructure:"channels"`
	Telegram     TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// FeedConfig wires the Redis opportunity stream.
type FeedConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	DB        int    `mapstructure:"db"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Stream    string `mapstructure:"stream"`
	LatestKey string `mapstructure:"latest_key"`
	MaxLen    int64  `mapstructure:"max_len"`
}

// MetricsConfig exposes the Prometheus endpoint. Empty addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ARBWATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arbwatcher")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.interval", "30s")
	v.SetDefault("scheduler.align_to_cycle", true)
	v.SetDefault("scheduler.run_immediately", true)
	v.SetDefault("scheduler.advisory_lock_key", int64(0x61726257))
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("engine.min_profit_threshold", 0.001)

	v.SetDefault("scanner.trade_amount", 1000.0)
	v.SetDefault("scanner.gas_cost", 5.0)

	v.SetDefault("ethereum.request_timeout", "10s")

	v.SetDefault("venues.chain", "polygon")
	v.SetDefault("venues.min_priority", 0)
	v.SetDefault("venues.max", 0)

	v.SetDefault("flashloan.enabled", true)
	v.SetDefault("flashloan.provider", "aave_v3")

	v.SetDefault("bundle.hash_algo", "sha256")

	v.SetDefault("relay.request_timeout", "10s")
	v.SetDefault("relay.max_retries", 3)
	v.SetDefault("relay.retry_interval", "500ms")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.threshold_pct", 0.5)
	v.SetDefault("alerting.cooldown", "30m")
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("feed.enabled", false)
	v.SetDefault("feed.addr", "localhost:6379")
	v.SetDefault("feed.stream", "arb:opps")
	v.SetDefault("feed.latest_key", "arb:latest")
	v.SetDefault("feed.max_len", 1000)

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Engine.MinProfitThreshold < 0 {
		return fmt.Errorf("engine.min_profit_threshold cannot be negative")
	}
	if c.Scanner.TradeAmount <= 0 {
		return fmt.Errorf("scanner.trade_amount must be greater than zero")
	}
	if c.Scanner.GasCost < 0 {
		return fmt.Errorf("scanner.gas_cost cannot be negative")
	}
	if c.Alerting.ThresholdPct < 0 {
		return fmt.Errorf("alerting.threshold_pct cannot be negative")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	if c.Feed.Enabled && c.Feed.Addr == "" {
		return fmt.Errorf("feed.addr is required when the feed is enabled")
	}
	for i, pair := range c.Ethereum.Pairs {
		if pair.Address == "" {
			return fmt.Errorf("ethereum.pairs[%d].address is required", i)
		}
		if pair.Venue == "" {
			return fmt.Errorf("ethereum.pairs[%d].venue is required", i)
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
