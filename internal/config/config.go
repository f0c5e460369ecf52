// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	Bybit     BybitConfig     `mapstructure:"bybit"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// BinanceConfig holds Binance API configuration.
type BinanceConfig struct {
	APIURL       string        `mapstructure:"api_url"`
	WebSocketURL string        `mapstructure:"websocket_url"`
	APIKey       string        `mapstructure:"api_key"`
	APISecret    string        `mapstructure:"api_secret"`
	EnableStream bool          `mapstructure:"enable_stream"` // bookTicker WS feed with REST fallback
	StaleTimeout time.Duration `mapstructure:"stale_timeout"`
	RateLimitRPM int           `mapstructure:"rate_limit_rpm"`
}

// BybitConfig holds Bybit API configuration.
type BybitConfig struct {
	APIURL       string `mapstructure:"api_url"`
	APIKey       string `mapstructure:"api_key"`
	APISecret    string `mapstructure:"api_secret"`
	RateLimitRPM int    `mapstructure:"rate_limit_rpm"`
}

// ArbitrageConfig holds detection and execution configuration.
type ArbitrageConfig struct {
	Pairs              []string      `mapstructure:"pairs"`
	SpreadThresholdPct float64       `mapstructure:"spread_threshold_pct"`
	AllocationRatio    float64       `mapstructure:"allocation_ratio"`
	TradeBuffer        float64       `mapstructure:"trade_buffer"`
	MaxNotional        float64       `mapstructure:"max_notional"` // 0 = uncapped
	Cooldown           time.Duration `mapstructure:"cooldown"`
	PollInterval       time.Duration `mapstructure:"poll_interval"`
	Workers            int           `mapstructure:"workers"`
	DryRun             bool          `mapstructure:"dry_run"`
	FillPollAttempts   int           `mapstructure:"fill_poll_attempts"`
	FillPollInterval   time.Duration `mapstructure:"fill_poll_interval"`
	FilterTTL          time.Duration `mapstructure:"filter_ttl"`
	TUIMode            bool          `mapstructure:"-"` // Set at runtime, not from config file
}

// SpreadThresholdDecimal returns the spread threshold as decimal.Decimal.
func (c *ArbitrageConfig) SpreadThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.SpreadThresholdPct)
}

// AllocationRatioDecimal returns the allocation ratio as decimal.Decimal.
func (c *ArbitrageConfig) AllocationRatioDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.AllocationRatio)
}

// TradeBufferDecimal returns the trade buffer as decimal.Decimal.
func (c *ArbitrageConfig) TradeBufferDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TradeBuffer)
}

// MaxNotionalDecimal returns the per-trade cap as decimal.Decimal (zero = uncapped).
func (c *ArbitrageConfig) MaxNotionalDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxNotional)
}

// PostgresConfig holds the optional decision/trade store configuration.
type PostgresConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int    `mapstructure:"max_conns"`
}

// TelegramConfig holds operator notification configuration.
type TelegramConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	BotToken string   `mapstructure:"bot_token"`
	ChatID   string   `mapstructure:"chat_id"`
	Events   []string `mapstructure:"events"` // empty = all events
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("CROSSARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "CROSSARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "CROSSARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "CROSSARB_LOG_LEVEL", "LOG_LEVEL")

	// Binance
	v.BindEnv("binance.api_url", "CROSSARB_BINANCE_API_URL", "BINANCE_API_URL")
	v.BindEnv("binance.websocket_url", "CROSSARB_BINANCE_WS_URL", "BINANCE_WS_URL")
	v.BindEnv("binance.api_key", "CROSSARB_BINANCE_API_KEY", "BINANCE_API_KEY")
	v.BindEnv("binance.api_secret", "CROSSARB_BINANCE_API_SECRET", "BINANCE_API_SECRET")

	// Bybit
	v.BindEnv("bybit.api_url", "CROSSARB_BYBIT_API_URL", "BYBIT_API_URL")
	v.BindEnv("bybit.api_key", "CROSSARB_BYBIT_API_KEY", "BYBIT_API_KEY")
	v.BindEnv("bybit.api_secret", "CROSSARB_BYBIT_API_SECRET", "BYBIT_API_SECRET")

	// Arbitrage
	v.BindEnv("arbitrage.pairs", "CROSSARB_PAIRS")
	v.BindEnv("arbitrage.spread_threshold_pct", "CROSSARB_SPREAD_THRESHOLD_PCT", "SPREAD_THRESHOLD_PCT")
	v.BindEnv("arbitrage.allocation_ratio", "CROSSARB_ALLOCATION_RATIO", "TRADE_ALLOCATION_RATIO")
	v.BindEnv("arbitrage.trade_buffer", "CROSSARB_TRADE_BUFFER", "TRADE_BUFFER")
	v.BindEnv("arbitrage.max_notional", "CROSSARB_MAX_NOTIONAL", "MAX_TRADE_VALUE_USD")
	v.BindEnv("arbitrage.cooldown", "CROSSARB_COOLDOWN")
	v.BindEnv("arbitrage.dry_run", "CROSSARB_DRY_RUN", "DRY_RUN")

	// Postgres
	v.BindEnv("postgres.dsn", "CROSSARB_POSTGRES_DSN", "DATABASE_URL")

	// Telegram
	v.BindEnv("telegram.bot_token", "CROSSARB_TG_BOT_TOKEN", "TG_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "CROSSARB_TG_CHAT_ID", "TG_CHAT_ID")

	// Telemetry
	v.BindEnv("telemetry.enabled", "CROSSARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "CROSSARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "CROSSARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "crossarb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Binance defaults
	v.SetDefault("binance.api_url", "https://api.binance.com")
	v.SetDefault("binance.websocket_url", "wss://stream.binance.com:9443")
	v.SetDefault("binance.enable_stream", true)
	v.SetDefault("binance.stale_timeout", "5s")
	v.SetDefault("binance.rate_limit_rpm", 1200)

	// Bybit defaults
	v.SetDefault("bybit.api_url", "https://api.bybit.com")
	v.SetDefault("bybit.rate_limit_rpm", 600)

	// Arbitrage defaults
	v.SetDefault("arbitrage.pairs", []string{"ETH/USDC"})
	v.SetDefault("arbitrage.spread_threshold_pct", 0.5)
	v.SetDefault("arbitrage.allocation_ratio", 0.95)
	v.SetDefault("arbitrage.trade_buffer", 0)
	v.SetDefault("arbitrage.max_notional", 0)
	v.SetDefault("arbitrage.cooldown", "60s")
	v.SetDefault("arbitrage.poll_interval", "5s")
	v.SetDefault("arbitrage.workers", 4)
	v.SetDefault("arbitrage.dry_run", true)
	v.SetDefault("arbitrage.fill_poll_attempts", 6)
	v.SetDefault("arbitrage.fill_poll_interval", "500ms")
	v.SetDefault("arbitrage.filter_ttl", "10m")

	// Postgres defaults
	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.max_conns", 4)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "crossarb")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration. Credential problems surface here so a
// misconfigured live deployment fails at startup, not mid-cycle.
func (c *Config) Validate() error {
	if len(c.Arbitrage.Pairs) == 0 {
		return fmt.Errorf("arbitrage.pairs cannot be empty")
	}
	for _, p := range c.Arbitrage.Pairs {
		if !strings.Contains(p, "/") {
			return fmt.Errorf("invalid pair %q: expected BASE/QUOTE", p)
		}
	}
	if c.Arbitrage.SpreadThresholdPct <= 0 {
		return fmt.Errorf("arbitrage.spread_threshold_pct must be > 0")
	}
	if c.Arbitrage.AllocationRatio <= 0 || c.Arbitrage.AllocationRatio > 1 {
		return fmt.Errorf("arbitrage.allocation_ratio must be in (0, 1]")
	}
	if c.Arbitrage.Workers <= 0 {
		return fmt.Errorf("arbitrage.workers must be > 0")
	}

	if !c.Arbitrage.DryRun {
		if c.Binance.APIKey == "" || c.Binance.APISecret == "" {
			return fmt.Errorf("binance credentials required for live trading")
		}
		if c.Bybit.APIKey == "" || c.Bybit.APISecret == "" {
			return fmt.Errorf("bybit credentials required for live trading")
		}
	}

	if c.Postgres.Enabled && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn required when postgres.enabled")
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id required when telegram.enabled")
	}

	return nil
}
