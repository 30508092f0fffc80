package backtest

import (
	"fmt"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/metrics"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/signal"
)

// Config holds the full backtest configuration: the signal parameters plus
// the enumeration and statistics policies.
type Config struct {
	Signal signal.Config

	// SkipFirst leading bars are ignored by the trade enumerator.
	SkipFirst int
	// CloseDangling force-closes a position still open at the series end
	// at the last bar; false drops it.
	CloseDangling bool
	// MinTradesForStats is the trade count below which the strategy's
	// ratio metrics become unreliable-sample sentinels. Zero means the
	// default of 5.
	MinTradesForStats int

	RiskFreeRate float64
	TargetReturn float64
}

// Run executes the full pipeline against one candle series: synthesize
// signals, enumerate trades, simulate the position, and compute strategy and
// buy-and-hold metrics. Fills are at bar closes with no slippage or fees.
func Run(series model.Series, cfg Config) (*model.Report, error) {
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid candle series: %w", err)
	}
	if cfg.MinTradesForStats <= 0 {
		cfg.MinTradesForStats = 5
	}

	sig, err := signal.Generate(series, cfg.Signal)
	if err != nil {
		return nil, fmt.Errorf("generate signals: %w", err)
	}

	entries, exits, err := EnumerateTrades(sig.Entry, sig.Exit, cfg.SkipFirst, cfg.CloseDangling)
	if err != nil {
		return nil, fmt.Errorf("enumerate trades: %w", err)
	}

	n := len(series)
	closes := series.Closes()
	mask := BuildPositionMask(n, entries, exits)
	logRet := LogReturns(closes)
	stratRet := StrategyReturns(logRet, mask)
	cumStrat := CumSum(stratRet)
	cumBench := CumSum(logRet)
	ppy := metrics.PeriodsPerYear(series.Times())

	trades := make([]model.Trade, 0, len(entries))
	for k := range entries {
		trades = append(trades, model.Trade{
			EntryIndex: entries[k],
			ExitIndex:  exits[k],
			EntryTime:  series[entries[k]].Time,
			ExitTime:   series[exits[k]].Time,
			EntryPrice: closes[entries[k]],
			ExitPrice:  closes[exits[k]],
		})
	}

	rep := &model.Report{
		Trades:             trades,
		LogReturns:         logRet,
		StrategyLogReturns: stratRet,
		CumulativeStrategy: cumStrat,
		CumulativeBench:    cumBench,
		Position:           mask,
		PeriodsPerYear:     ppy,
		Diagnostic:         sig.Diagnostic,
	}

	rep.Strategy = model.Summary{
		TotalReturn: lastOrZero(cumStrat),
		TotalTrades: len(trades),
	}
	if len(trades) >= cfg.MinTradesForStats {
		rep.Strategy.SharpeRatio = metrics.SharpeRatio(stratRet, ppy, cfg.RiskFreeRate)
		rep.Strategy.SortinoRatio = metrics.SortinoRatio(stratRet, ppy, cfg.TargetReturn)
		rep.Strategy.MaxDrawdown = metrics.MaxDrawdown(cumStrat)
	} else {
		// Small-sample ratios are meaningless, not merely noisy.
		rep.Strategy.SharpeRatio = metrics.SentinelInsufficient
		rep.Strategy.SortinoRatio = metrics.SentinelInsufficient
		rep.Strategy.MaxDrawdown = metrics.SentinelTotalLoss
	}

	rep.Benchmark = model.Summary{
		TotalReturn:  lastOrZero(cumBench),
		SharpeRatio:  metrics.SharpeRatio(logRet, ppy, cfg.RiskFreeRate),
		SortinoRatio: metrics.SortinoRatio(logRet, ppy, cfg.TargetReturn),
		MaxDrawdown:  metrics.MaxDrawdown(cumBench),
	}

	return rep, nil
}

func lastOrZero(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}
