package collector

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Data model.Series
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(_, _ string, bars int) (model.Series, error) {
	if m.Data != nil {
		return m.Data, nil
	}
	return generateMockBars(100, bars), nil
}

// generateMockBars builds a swinging series so the detector has something
// to chew on out of the box.
func generateMockBars(basePrice float64, count int) model.Series {
	bars := make(model.Series, count)
	start := time.Now().AddDate(0, 0, -count)
	for i := 0; i < count; i++ {
		// A slow sine swing with a mild upward drift.
		p := basePrice * (1 + 0.2*math.Sin(float64(i)/12) + 0.0005*float64(i))
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.998,
			High:   p * 1.01,
			Low:    p * 0.99,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates data fetching and validation.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Interval string
	Bars     int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, interval string, bars int) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Interval: interval, Bars: bars}
}

// Collect fetches candle history and validates it.
func (c *Collector) Collect() (model.Series, error) {
	series, err := c.Fetcher.FetchCandles(c.Symbol, c.Interval, c.Bars)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("validate candles: %w", err)
	}
	if len(series) < c.Bars {
		log.Printf("[WARN] requested %d bars, source returned %d", c.Bars, len(series))
	}
	return series, nil
}
