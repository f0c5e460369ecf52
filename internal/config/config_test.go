package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("expected error for explicit missing config file")
	}

	// No explicit path: missing file falls back to defaults.
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "crossarb" {
		t.Errorf("App.Name = %q, want crossarb", cfg.App.Name)
	}
	if cfg.Arbitrage.SpreadThresholdPct != 0.5 {
		t.Errorf("SpreadThresholdPct = %v, want 0.5", cfg.Arbitrage.SpreadThresholdPct)
	}
	if cfg.Arbitrage.Cooldown != 60*time.Second {
		t.Errorf("Cooldown = %v, want 60s", cfg.Arbitrage.Cooldown)
	}
	if cfg.Arbitrage.FillPollAttempts != 6 {
		t.Errorf("FillPollAttempts = %v, want 6", cfg.Arbitrage.FillPollAttempts)
	}
	if cfg.Arbitrage.FillPollInterval != 500*time.Millisecond {
		t.Errorf("FillPollInterval = %v, want 500ms", cfg.Arbitrage.FillPollInterval)
	}
	if !cfg.Arbitrage.DryRun {
		t.Error("DryRun should default to true")
	}
	if len(cfg.Arbitrage.Pairs) != 1 || cfg.Arbitrage.Pairs[0] != "ETH/USDC" {
		t.Errorf("Pairs = %v, want [ETH/USDC]", cfg.Arbitrage.Pairs)
	}
	if cfg.Binance.RateLimitRPM != 1200 {
		t.Errorf("Binance.RateLimitRPM = %d, want 1200", cfg.Binance.RateLimitRPM)
	}
	if cfg.Bybit.APIURL != "https://api.bybit.com" {
		t.Errorf("Bybit.APIURL = %q", cfg.Bybit.APIURL)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
app:
  name: testbot
  log_level: debug
arbitrage:
  pairs:
    - BTC/USDT
    - ETH/USDT
  spread_threshold_pct: 1.2
  cooldown: 30s
  workers: 8
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Name != "testbot" {
		t.Errorf("App.Name = %q, want testbot", cfg.App.Name)
	}
	if len(cfg.Arbitrage.Pairs) != 2 {
		t.Errorf("Pairs = %v, want 2 entries", cfg.Arbitrage.Pairs)
	}
	if cfg.Arbitrage.SpreadThresholdPct != 1.2 {
		t.Errorf("SpreadThresholdPct = %v, want 1.2", cfg.Arbitrage.SpreadThresholdPct)
	}
	if cfg.Arbitrage.Cooldown != 30*time.Second {
		t.Errorf("Cooldown = %v, want 30s", cfg.Arbitrage.Cooldown)
	}
	// Untouched sections keep their defaults.
	if cfg.Arbitrage.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.Arbitrage.PollInterval)
	}
}

func validConfig() *Config {
	return &Config{
		Arbitrage: ArbitrageConfig{
			Pairs:              []string{"ETH/USDC"},
			SpreadThresholdPct: 0.5,
			AllocationRatio:    0.95,
			Workers:            4,
			DryRun:             true,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "no pairs",
			mutate:  func(c *Config) { c.Arbitrage.Pairs = nil },
			wantErr: true,
		},
		{
			name:    "malformed pair",
			mutate:  func(c *Config) { c.Arbitrage.Pairs = []string{"ETHUSDC"} },
			wantErr: true,
		},
		{
			name:    "zero threshold",
			mutate:  func(c *Config) { c.Arbitrage.SpreadThresholdPct = 0 },
			wantErr: true,
		},
		{
			name:    "ratio above one",
			mutate:  func(c *Config) { c.Arbitrage.AllocationRatio = 1.5 },
			wantErr: true,
		},
		{
			name:    "no workers",
			mutate:  func(c *Config) { c.Arbitrage.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "live trading without credentials",
			mutate:  func(c *Config) { c.Arbitrage.DryRun = false },
			wantErr: true,
		},
		{
			name: "live trading with credentials",
			mutate: func(c *Config) {
				c.Arbitrage.DryRun = false
				c.Binance.APIKey = "k"
				c.Binance.APISecret = "s"
				c.Bybit.APIKey = "k"
				c.Bybit.APISecret = "s"
			},
		},
		{
			name: "live trading missing bybit secret",
			mutate: func(c *Config) {
				c.Arbitrage.DryRun = false
				c.Binance.APIKey = "k"
				c.Binance.APISecret = "s"
				c.Bybit.APIKey = "k"
			},
			wantErr: true,
		},
		{
			name:    "postgres enabled without dsn",
			mutate:  func(c *Config) { c.Postgres.Enabled = true },
			wantErr: true,
		},
		{
			name:    "telegram enabled without token",
			mutate:  func(c *Config) { c.Telegram.Enabled = true },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
