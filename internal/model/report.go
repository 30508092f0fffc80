package model

// Summary holds the scalar performance metrics for one return series.
type Summary struct {
	TotalReturn  float64
	SharpeRatio  float64
	SortinoRatio float64
	MaxDrawdown  float64
	TotalTrades  int
}

// Report is the full backtest output: strategy and buy-and-hold metrics, the
// trade list, and the per-bar series a reporting layer needs to render or
// serialize the run.
type Report struct {
	Strategy  Summary
	Benchmark Summary

	Trades []Trade

	LogReturns         []float64
	StrategyLogReturns []float64
	CumulativeStrategy []float64
	CumulativeBench    []float64
	Position           []int

	PeriodsPerYear float64

	// Diagnostic is non-empty when the run degraded to a neutral result
	// (no pivots, unresolved levels) instead of failing.
	Diagnostic string
}
