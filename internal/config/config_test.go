package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.Strategy.Epsilon != 0.03 {
		t.Errorf("epsilon default = %v, want 0.03", cfg.Strategy.Epsilon)
	}
	if cfg.Strategy.EntryRatio != 0.618 || cfg.Strategy.StopRatio != 0.786 {
		t.Errorf("ratio defaults = %v/%v", cfg.Strategy.EntryRatio, cfg.Strategy.StopRatio)
	}
	if cfg.Strategy.ExitMode != "pattern" {
		t.Errorf("exit mode default = %q", cfg.Strategy.ExitMode)
	}
	if !cfg.Backtest.CloseDangling {
		t.Error("close_dangling should default to true")
	}
	if cfg.Backtest.MinTradesForStats != 5 {
		t.Errorf("min_trades_for_stats default = %d", cfg.Backtest.MinTradesForStats)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeTemp(t, `
strategy:
  epsilon: 0.05
  wick_lookback: 3
backtest:
  close_dangling: false
data_source:
  symbol: ETH-USD
  interval: 1h
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Strategy.Epsilon != 0.05 {
		t.Errorf("epsilon = %v, want 0.05", cfg.Strategy.Epsilon)
	}
	if cfg.Strategy.WickLookback != 3 {
		t.Errorf("wick_lookback = %d, want 3", cfg.Strategy.WickLookback)
	}
	if cfg.Backtest.CloseDangling {
		t.Error("close_dangling should honor an explicit false")
	}
	if cfg.DataSource.Symbol != "ETH-USD" || cfg.DataSource.Interval != "1h" {
		t.Errorf("data source = %+v", cfg.DataSource)
	}
	// Untouched fields keep their defaults.
	if cfg.Strategy.StopRatio != 0.786 {
		t.Errorf("stop_ratio = %v, want default", cfg.Strategy.StopRatio)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ZIGZAG_SYMBOL", "SOL-USD")
	t.Setenv("ZIGZAG_EPSILON", "0.07")

	cfg, err := Load(writeTemp(t, "data_source:\n  symbol: BTC-USD\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataSource.Symbol != "SOL-USD" {
		t.Errorf("symbol = %q, env should win over file", cfg.DataSource.Symbol)
	}
	if cfg.Strategy.Epsilon != 0.07 {
		t.Errorf("epsilon = %v, want env override 0.07", cfg.Strategy.Epsilon)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"stop below entry", func(c *Config) { c.Strategy.StopRatio = 0.5 }},
		{"bad exit mode", func(c *Config) { c.Strategy.ExitMode = "trailing" }},
		{"zero lookback", func(c *Config) { c.Strategy.WickLookback = 0 }},
		{"negative skip", func(c *Config) { c.Backtest.SkipFirst = -1 }},
		{"no source", func(c *Config) { c.DataSource.Symbol = ""; c.DataSource.File = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
