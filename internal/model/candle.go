package model

import (
	"fmt"
	"math"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is an ordered candle series. Invariant: strictly increasing
// timestamps, all price fields finite and non-negative.
type Series []OHLCV

// Validate checks the series invariants.
func (s Series) Validate() error {
	for i, b := range s {
		if i > 0 && !b.Time.After(s[i-1].Time) {
			return fmt.Errorf("bar %d: timestamp %s not after previous %s", i, b.Time, s[i-1].Time)
		}
		for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(p) || math.IsInf(p, 0) {
				return fmt.Errorf("bar %d: non-finite price", i)
			}
			if p < 0 {
				return fmt.Errorf("bar %d: negative price %v", i, p)
			}
		}
	}
	return nil
}

// Highs extracts the high prices.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low prices.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Closes extracts the close prices.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Times extracts the bar timestamps.
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s))
	for i, b := range s {
		out[i] = b.Time
	}
	return out
}
