package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/metrics"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/signal"
)

func mkSeries(bars [][3]float64) model.Series {
	t0 := time.Unix(0, 0).UTC()
	s := make(model.Series, len(bars))
	for i, b := range bars {
		s[i] = model.OHLCV{
			Time: t0.Add(time.Duration(i) * time.Hour),
			Open: b[2], High: b[0], Low: b[1], Close: b[2],
			Volume: 1,
		}
	}
	return s
}

// One up swing 100 -> 300 followed by a retrace; produces an entry at bar 3
// and a pattern exit at bar 5.
func trendSeries() model.Series {
	return mkSeries([][3]float64{
		{100, 100, 100},
		{210, 210, 210},
		{300, 300, 300},
		{150, 140, 145},
		{135, 130, 132},
		{128, 125, 126},
		{165, 160, 163},
	})
}

func engineConfig() Config {
	return Config{
		Signal: signal.Config{
			Epsilon:       0.5,
			EntryRatio:    0.618,
			StopRatio:     0.786,
			WickLookback:  2,
			ExitMode:      signal.ExitPattern,
			PatternWindow: 1,
		},
		CloseDangling:     true,
		MinTradesForStats: 1,
	}
}

func TestRun_FullPipeline(t *testing.T) {
	rep, err := Run(trendSeries(), engineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Diagnostic != "" {
		t.Fatalf("unexpected diagnostic: %s", rep.Diagnostic)
	}

	if len(rep.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d: %+v", len(rep.Trades), rep.Trades)
	}
	tr := rep.Trades[0]
	if tr.EntryIndex != 3 || tr.ExitIndex != 5 {
		t.Fatalf("trade = %+v, want entry 3 exit 5", tr)
	}
	if tr.EntryPrice != 145 || tr.ExitPrice != 126 {
		t.Errorf("trade prices = %v/%v, want close fills 145/126", tr.EntryPrice, tr.ExitPrice)
	}

	wantMask := []int{0, 0, 0, 0, 1, 1, 0}
	for i := range wantMask {
		if rep.Position[i] != wantMask[i] {
			t.Fatalf("position = %v, want %v", rep.Position, wantMask)
		}
	}

	// The position decided at bar 4 earns the bar-5 return; bar-6 return
	// accrues from the exit-bar holding.
	wantTotal := math.Log(163.0 / 132.0)
	if math.Abs(rep.Strategy.TotalReturn-wantTotal) > 1e-12 {
		t.Errorf("strategy total return = %v, want %v", rep.Strategy.TotalReturn, wantTotal)
	}

	wantBench := math.Log(163.0 / 100.0)
	if math.Abs(rep.Benchmark.TotalReturn-wantBench) > 1e-12 {
		t.Errorf("benchmark total return = %v, want %v", rep.Benchmark.TotalReturn, wantBench)
	}

	if rep.PeriodsPerYear <= 0 {
		t.Errorf("periods per year not derived: %v", rep.PeriodsPerYear)
	}
}

func TestRun_MinTradesGate(t *testing.T) {
	cfg := engineConfig()
	cfg.MinTradesForStats = 5

	rep, err := Run(trendSeries(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Strategy.TotalTrades != 1 {
		t.Fatalf("expected 1 trade, got %d", rep.Strategy.TotalTrades)
	}
	if rep.Strategy.SharpeRatio != metrics.SentinelInsufficient ||
		rep.Strategy.SortinoRatio != metrics.SentinelInsufficient ||
		rep.Strategy.MaxDrawdown != metrics.SentinelTotalLoss {
		t.Errorf("below the trade threshold, ratios must be sentinels: %+v", rep.Strategy)
	}
	// The benchmark is not gated.
	if rep.Benchmark.MaxDrawdown == metrics.SentinelTotalLoss {
		t.Errorf("benchmark drawdown should be computed, got sentinel")
	}
}

func TestRun_NoSignalsFlatCurve(t *testing.T) {
	flat := mkSeries([][3]float64{
		{5, 5, 5}, {5, 5, 5}, {5, 5, 5}, {5, 5, 5}, {5, 5, 5}, {5, 5, 5},
	})
	rep, err := Run(flat, engineConfig())
	if err != nil {
		t.Fatalf("degraded input must not error: %v", err)
	}
	if rep.Diagnostic == "" {
		t.Error("expected a diagnostic for the degraded input")
	}
	if len(rep.Trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(rep.Trades))
	}
	for i, c := range rep.CumulativeStrategy {
		if c != 0 {
			t.Fatalf("expected flat strategy curve, cum[%d]=%v", i, c)
		}
	}
}

func TestRun_InvalidSeries(t *testing.T) {
	t0 := time.Unix(0, 0).UTC()
	bad := model.Series{
		{Time: t0.Add(time.Hour), Close: 1, High: 1, Low: 1},
		{Time: t0, Close: 1, High: 1, Low: 1}, // out of order
	}
	if _, err := Run(bad, engineConfig()); err == nil {
		t.Fatal("expected error for non-increasing timestamps")
	}
}
