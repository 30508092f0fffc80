package backtest

import (
	"math"
	"testing"
)

func TestBuildPositionMask(t *testing.T) {
	mask := BuildPositionMask(8, []int{1, 5}, []int{3, 6})
	want := []int{0, 0, 1, 1, 0, 0, 1, 0}
	for i := range want {
		if mask[i] != want[i] {
			t.Fatalf("mask = %v, want %v", mask, want)
		}
	}
}

func TestBuildPositionMask_DegeneratePairSkipped(t *testing.T) {
	mask := BuildPositionMask(4, []int{2}, []int{2})
	for i, m := range mask {
		if m != 0 {
			t.Fatalf("degenerate pair must not hold, mask[%d]=%d", i, m)
		}
	}
}

func TestLogReturns(t *testing.T) {
	closes := []float64{100, 110, 99}
	r := LogReturns(closes)
	if r[0] != 0 {
		t.Errorf("first bar return = %v, want 0", r[0])
	}
	if math.Abs(r[1]-math.Log(1.1)) > 1e-12 {
		t.Errorf("r[1] = %v, want ln(1.1)", r[1])
	}
	if math.Abs(r[2]-math.Log(99.0/110.0)) > 1e-12 {
		t.Errorf("r[2] = %v, want ln(0.9)", r[2])
	}
}

func TestStrategyReturns_Lag(t *testing.T) {
	logRet := []float64{0, 0.1, 0.2, -0.1, 0.05}
	mask := []int{0, 1, 1, 0, 0}

	got := StrategyReturns(logRet, mask)
	// The position held at t-1 earns the return at t.
	want := []float64{0, 0, 0.2, -0.1, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("strategy returns = %v, want %v", got, want)
		}
	}
}

func TestStrategyReturns_NoTradesFlat(t *testing.T) {
	logRet := []float64{0, 0.1, -0.2, 0.3}
	mask := make([]int, 4)
	cum := CumSum(StrategyReturns(logRet, mask))
	for i, c := range cum {
		if c != 0 {
			t.Fatalf("expected identically flat curve, cum[%d]=%v", i, c)
		}
	}
}

// Rebuilding the trade list from a position mask's rising and falling edges
// must reproduce the trades the mask was built from.
func TestPositionMask_RoundTrip(t *testing.T) {
	n := 20
	entries := []int{2, 8, 14}
	exits := []int{5, 11, 18}
	mask := BuildPositionMask(n, entries, exits)

	entry2 := make([]bool, n)
	exit2 := make([]bool, n)
	for i := 0; i < n; i++ {
		if i+1 < n && mask[i+1] == 1 && mask[i] == 0 {
			entry2[i] = true // holding starts the bar after entry
		}
		if mask[i] == 1 && (i+1 == n || mask[i+1] == 0) {
			exit2[i] = true
		}
	}

	gotEntries, gotExits, err := EnumerateTrades(entry2, exit2, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotEntries) != len(entries) {
		t.Fatalf("round trip lost trades: %v / %v", gotEntries, gotExits)
	}
	for i := range entries {
		if gotEntries[i] != entries[i] || gotExits[i] != exits[i] {
			t.Fatalf("round trip mismatch: got %v/%v, want %v/%v",
				gotEntries, gotExits, entries, exits)
		}
	}
}

func TestCumSum(t *testing.T) {
	got := CumSum([]float64{1, -0.5, 2})
	want := []float64{1, 0.5, 2.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("cumsum = %v, want %v", got, want)
		}
	}
}
