package metrics

import (
	"math"
	"sort"
	"time"
)

// Sentinel values returned instead of undefined or unreliable statistics, so
// downstream comparisons never see NaN.
const (
	// SentinelInsufficient replaces a ratio that cannot be computed from
	// the available observations.
	SentinelInsufficient = -5.0
	// SentinelDegenerateHigh / Low replace a ratio whose deviation term is
	// zero; the sign follows whether the mean cleared the target.
	SentinelDegenerateHigh = 10.0
	SentinelDegenerateLow  = -10.0
	// SentinelTotalLoss is the drawdown reported for series too short to
	// evaluate.
	SentinelTotalLoss = 1.0

	// DefaultPeriodsPerYear is the trading-day fallback when the bar
	// spacing cannot be determined.
	DefaultPeriodsPerYear = 252.0
)

// PeriodsPerYear derives the annualization factor from the median delta
// between consecutive bar timestamps. Falls back to the trading-day default
// when the delta is undetermined.
func PeriodsPerYear(times []time.Time) float64 {
	if len(times) < 2 {
		return DefaultPeriodsPerYear
	}
	deltas := make([]time.Duration, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		deltas = append(deltas, times[i].Sub(times[i-1]))
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i] < deltas[j] })
	var median time.Duration
	mid := len(deltas) / 2
	if len(deltas)%2 == 1 {
		median = deltas[mid]
	} else {
		median = (deltas[mid-1] + deltas[mid]) / 2
	}
	if median <= 0 {
		return DefaultPeriodsPerYear
	}
	return float64(365*24*time.Hour) / float64(median)
}

// SharpeRatio computes the annualized Sharpe ratio of a log-return series.
// Zero-return bars (flat periods) are excluded first; fewer than two nonzero
// observations yields the insufficient-data sentinel, and a zero or NaN
// standard deviation the signed degenerate sentinel.
func SharpeRatio(returns []float64, periodsPerYear, riskFreeRate float64) float64 {
	nz := nonzero(returns)
	if len(nz) < 2 {
		return SentinelInsufficient
	}
	m := mean(nz)
	sd := sampleStd(nz, m)
	if sd == 0 || math.IsNaN(sd) {
		if m > riskFreeRate {
			return SentinelDegenerateHigh
		}
		return SentinelDegenerateLow
	}
	annMean := m * periodsPerYear
	annStd := sd * math.Sqrt(periodsPerYear)
	s := (annMean - riskFreeRate*periodsPerYear) / annStd
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return SentinelInsufficient
	}
	return s
}

// SortinoRatio is structured like SharpeRatio but its deviation term is
// computed only over returns below the target (downside deviation).
func SortinoRatio(returns []float64, periodsPerYear, targetReturn float64) float64 {
	nz := nonzero(returns)
	if len(nz) < 2 {
		return SentinelInsufficient
	}
	var downside []float64
	for _, r := range nz {
		if r < targetReturn {
			downside = append(downside, r)
		}
	}
	m := mean(nz)
	if len(downside) < 2 {
		if m > targetReturn {
			return SentinelDegenerateHigh
		}
		return SentinelDegenerateLow
	}
	dd := sampleStd(downside, mean(downside))
	if dd == 0 || math.IsNaN(dd) {
		if m > targetReturn {
			return SentinelDegenerateHigh
		}
		return SentinelDegenerateLow
	}
	annMean := m * periodsPerYear
	annDD := dd * math.Sqrt(periodsPerYear)
	s := (annMean - targetReturn*periodsPerYear) / annDD
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return SentinelInsufficient
	}
	return s
}

// MaxDrawdown computes the maximum peak-to-trough decline of the equity curve
// implied by a cumulative return series (base 1.0). A synthetic pre-series
// unit value seeds the running peak, so a curve that only falls still draws
// down against 1.0. Returns 0 for a curve that never declines and the
// total-loss sentinel for input too short to evaluate.
func MaxDrawdown(cumReturns []float64) float64 {
	if len(cumReturns) < 2 {
		return SentinelTotalLoss
	}
	peak := 1.0
	maxDD := 0.0
	equity := 1.0
	for _, c := range cumReturns {
		if !math.IsNaN(c) {
			equity = 1 + c
		}
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (peak - equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	if math.IsNaN(maxDD) {
		return 0
	}
	return maxDD
}

func nonzero(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStd is the n-1 denominator standard deviation.
func sampleStd(vals []float64, m float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}
