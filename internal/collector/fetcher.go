package collector

import "github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"

// Fetcher defines the interface for fetching candle history.
type Fetcher interface {
	FetchCandles(symbol, interval string, bars int) (model.Series, error)
	Name() string
}
