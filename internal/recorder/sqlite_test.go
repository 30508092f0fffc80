package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
)

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	t0 := time.Unix(1700000000, 0)
	rec := &RunRecord{
		Symbol: "BTC-USD", Interval: "1d", Bars: 100,
		Epsilon: 0.03, EntryRatio: 0.618, StopRatio: 0.786,
		WickLookback: 5, ExitMode: "pattern", PatternWindow: 2,
		Report: &model.Report{
			Strategy:  model.Summary{TotalReturn: 0.12, SharpeRatio: 1.1, SortinoRatio: 1.4, MaxDrawdown: 0.08, TotalTrades: 7},
			Benchmark: model.Summary{TotalReturn: 0.2, SharpeRatio: 0.9, SortinoRatio: 1.0, MaxDrawdown: 0.3},
			Trades: []model.Trade{
				{EntryIndex: 3, ExitIndex: 9, EntryTime: t0, ExitTime: t0.Add(6 * 24 * time.Hour), EntryPrice: 100, ExitPrice: 110},
			},
			PeriodsPerYear: 252,
		},
	}
	if err := r.RecordRun(rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	var runs, trades int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM backtest_runs").Scan(&runs); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if err := r.db.QueryRow("SELECT COUNT(*) FROM trades").Scan(&trades); err != nil {
		t.Fatalf("count trades: %v", err)
	}
	if runs != 1 || trades != 1 {
		t.Fatalf("runs=%d trades=%d, want 1/1", runs, trades)
	}

	var sharpe float64
	var exitMode string
	if err := r.db.QueryRow("SELECT sharpe, exit_mode FROM backtest_runs").Scan(&sharpe, &exitMode); err != nil {
		t.Fatalf("select run: %v", err)
	}
	if sharpe != 1.1 || exitMode != "pattern" {
		t.Errorf("stored run = %v/%q", sharpe, exitMode)
	}
}
