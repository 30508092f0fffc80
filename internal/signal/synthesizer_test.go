package signal

import (
	"testing"
	"time"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
)

func series(bars [][3]float64) model.Series {
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

func baseConfig() Config {
	return Config{
		Epsilon:      0.5,
		EntryRatio:   0.618,
		StopRatio:    0.786,
		WickLookback: 2,
		ExitMode:     ExitPattern,
		PatternWindow: 1,
	}
}

// One up segment 100 -> 300 (trough at 0, peak at 2), so the 0.618 level sits
// at 223.6 and the 0.786 level at 257.2 for every bar after the peak.
func trendSeries() model.Series {
	return series([][3]float64{
		{100, 100, 100},
		{210, 210, 210},
		{300, 300, 300},
		{150, 140, 145},
		{135, 130, 132},
		{128, 125, 126},
		{165, 160, 163},
	})
}

func TestGenerate_PatternExit(t *testing.T) {
	res, err := Generate(trendSeries(), baseConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Diagnostic != "" {
		t.Fatalf("unexpected diagnostic: %s", res.Diagnostic)
	}
	if len(res.Pivots) != 2 {
		t.Fatalf("expected 2 pivots, got %d", len(res.Pivots))
	}

	wantEntry := []bool{false, false, false, true, true, false, false}
	for i := range wantEntry {
		if res.Entry[i] != wantEntry[i] {
			t.Errorf("entry[%d] = %v, want %v", i, res.Entry[i], wantEntry[i])
		}
	}

	wantExit := []bool{false, false, false, false, false, true, false}
	for i := range wantExit {
		if res.Exit[i] != wantExit[i] {
			t.Errorf("exit[%d] = %v, want %v", i, res.Exit[i], wantExit[i])
		}
	}
}

func TestGenerate_RatioTargetExitAndConflict(t *testing.T) {
	s := series([][3]float64{
		{100, 100, 100},
		{210, 210, 210},
		{300, 300, 300},
		{250, 140, 240},
		{180, 95, 170}, // dips through the 0.0 level: exit, and entry must yield
	})
	cfg := baseConfig()
	cfg.ExitMode = ExitRatioTarget
	cfg.TakeProfitRatio = 1.0
	cfg.StopLossRatio = 0.0

	res, err := Generate(s, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Diagnostic != "" {
		t.Fatalf("unexpected diagnostic: %s", res.Diagnostic)
	}

	if !res.Entry[3] {
		t.Error("expected entry at bar 3")
	}
	if !res.Exit[4] {
		t.Error("expected stop-loss exit at bar 4")
	}
	if res.Entry[4] {
		t.Error("exit must win the same-bar conflict and clear the entry")
	}
}

func TestGenerate_TooFewPivots(t *testing.T) {
	flat := series([][3]float64{
		{5, 5, 5}, {5, 5, 5}, {5, 5, 5}, {5, 5, 5}, {5, 5, 5},
	})
	res, err := Generate(flat, baseConfig())
	if err != nil {
		t.Fatalf("degenerate input must not error, got %v", err)
	}
	if res.Diagnostic == "" {
		t.Error("expected a diagnostic for the degraded input")
	}
	for i := range res.Entry {
		if res.Entry[i] || res.Exit[i] {
			t.Fatalf("expected all-false masks, got entry=%v exit=%v", res.Entry, res.Exit)
		}
	}
}

func TestGenerate_UnprojectedRatioDegrades(t *testing.T) {
	cfg := baseConfig()
	cfg.EntryRatio = 0.42

	res, err := Generate(trendSeries(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Diagnostic == "" {
		t.Error("expected a diagnostic for an unprojected entry ratio")
	}
	for i := range res.Entry {
		if res.Entry[i] {
			t.Fatal("expected no entries when the entry ratio is unprojected")
		}
	}
}

func TestGenerate_InvalidWindows(t *testing.T) {
	cfg := baseConfig()
	cfg.WickLookback = 0
	if _, err := Generate(trendSeries(), cfg); err == nil {
		t.Error("expected error for wick lookback < 1")
	}

	cfg = baseConfig()
	cfg.PatternWindow = 0
	if _, err := Generate(trendSeries(), cfg); err == nil {
		t.Error("expected error for pattern window < 1 in pattern mode")
	}
}
