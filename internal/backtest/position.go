package backtest

import "math"

// BuildPositionMask expands paired trade indices into a per-bar holding mask.
// Holding runs from the bar after entry through the bar of exit inclusive, so
// the position taken at entry only affects returns from the following bar.
// Pairs with entry at or after exit are skipped.
func BuildPositionMask(n int, entries, exits []int) []int {
	mask := make([]int, n)
	for k := 0; k < len(entries) && k < len(exits); k++ {
		e, x := entries[k], exits[k]
		if e >= x {
			continue
		}
		for i := e + 1; i <= x && i < n; i++ {
			mask[i] = 1
		}
	}
	return mask
}

// LogReturns computes per-bar log returns ln(close[t]/close[t-1]); the first
// bar is 0.
func LogReturns(closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		out[i] = math.Log(closes[i] / closes[i-1])
	}
	return out
}

// StrategyReturns applies the position mask to the bar returns with one
// additional bar of lag: the position decided at t-1 earns the return
// realized over (t-1, t].
func StrategyReturns(logReturns []float64, mask []int) []float64 {
	out := make([]float64, len(logReturns))
	for i := 1; i < len(logReturns); i++ {
		if mask[i-1] == 1 {
			out[i] = logReturns[i]
		}
	}
	return out
}

// CumSum is the running sum of a return series.
func CumSum(vals []float64) []float64 {
	out := make([]float64, len(vals))
	sum := 0.0
	for i, v := range vals {
		sum += v
		out[i] = sum
	}
	return out
}
