package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Strategy struct {
		Epsilon         float64 `yaml:"epsilon"`
		EntryRatio      float64 `yaml:"entry_ratio"`
		StopRatio       float64 `yaml:"stop_ratio"`
		WickLookback    int     `yaml:"wick_lookback"`
		ExitMode        string  `yaml:"exit_mode"`
		TakeProfitRatio float64 `yaml:"take_profit_ratio"`
		StopLossRatio   float64 `yaml:"stop_loss_ratio"`
		PatternWindow   int     `yaml:"pattern_window"`
	} `yaml:"strategy"`
	Backtest struct {
		SkipFirst         int     `yaml:"skip_first"`
		CloseDangling     bool    `yaml:"close_dangling"`
		MinTradesForStats int     `yaml:"min_trades_for_stats"`
		RiskFreeRate      float64 `yaml:"risk_free_rate"`
		TargetReturn      float64 `yaml:"target_return"`
	} `yaml:"backtest"`
	DataSource struct {
		Symbol   string `yaml:"symbol"`
		Interval string `yaml:"interval"`
		Bars     int    `yaml:"bars"`
		File     string `yaml:"file"`
	} `yaml:"data_source"`
	Sweep struct {
		Epsilons      []float64 `yaml:"epsilons"`
		EntryRatios   []float64 `yaml:"entry_ratios"`
		StopRatios    []float64 `yaml:"stop_ratios"`
		WickLookbacks []int     `yaml:"wick_lookbacks"`
		MaxDrawdown   float64   `yaml:"max_drawdown"`
		Workers       int       `yaml:"workers"`
	} `yaml:"sweep"`
	Schedule struct {
		WatchCron string `yaml:"watch_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	// A .env file next to the binary is optional.
	_ = godotenv.Load()

	cfg := &Config{}
	// Defaults that a zero value cannot express are seeded before parsing.
	cfg.Backtest.CloseDangling = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ZIGZAG_SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("ZIGZAG_INTERVAL"); v != "" {
		cfg.DataSource.Interval = v
	}
	if v := os.Getenv("ZIGZAG_DATA_FILE"); v != "" {
		cfg.DataSource.File = v
	}
	if v := os.Getenv("ZIGZAG_EPSILON"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Strategy.Epsilon = f
		}
	}
	if v := os.Getenv("CRON_WATCH"); v != "" {
		cfg.Schedule.WatchCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Strategy.Epsilon == 0 {
		cfg.Strategy.Epsilon = 0.03
	}
	if cfg.Strategy.EntryRatio == 0 {
		cfg.Strategy.EntryRatio = 0.618
	}
	if cfg.Strategy.StopRatio == 0 {
		cfg.Strategy.StopRatio = 0.786
	}
	if cfg.Strategy.WickLookback == 0 {
		cfg.Strategy.WickLookback = 5
	}
	if cfg.Strategy.ExitMode == "" {
		cfg.Strategy.ExitMode = "pattern"
	}
	if cfg.Strategy.TakeProfitRatio == 0 {
		cfg.Strategy.TakeProfitRatio = 1.0
	}
	if cfg.Strategy.PatternWindow == 0 {
		cfg.Strategy.PatternWindow = 2
	}
	if cfg.Backtest.MinTradesForStats == 0 {
		cfg.Backtest.MinTradesForStats = 5
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "BTC-USD"
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "1d"
	}
	if cfg.DataSource.Bars == 0 {
		cfg.DataSource.Bars = 730
	}
	if cfg.Schedule.WatchCron == "" {
		cfg.Schedule.WatchCron = "0 10 0 * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/zigzag_backtester.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are coherent.
func (c *Config) Validate() error {
	if c.Strategy.Epsilon <= 0 {
		return fmt.Errorf("strategy.epsilon must be positive")
	}
	if c.Strategy.WickLookback < 1 {
		return fmt.Errorf("strategy.wick_lookback must be at least 1")
	}
	switch c.Strategy.ExitMode {
	case "pattern":
		if c.Strategy.PatternWindow < 1 {
			return fmt.Errorf("strategy.pattern_window must be at least 1")
		}
	case "ratio-target":
	default:
		return fmt.Errorf("strategy.exit_mode must be %q or %q", "pattern", "ratio-target")
	}
	if c.Strategy.StopRatio <= c.Strategy.EntryRatio {
		return fmt.Errorf("strategy.stop_ratio must exceed strategy.entry_ratio")
	}
	if c.Backtest.SkipFirst < 0 {
		return fmt.Errorf("backtest.skip_first must not be negative")
	}
	if c.DataSource.Symbol == "" && c.DataSource.File == "" {
		return fmt.Errorf("data_source requires a symbol or a file")
	}
	if c.DataSource.Bars < 2 {
		return fmt.Errorf("data_source.bars must be at least 2")
	}
	return nil
}
