package collector

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
)

// FileFetcher loads candle history from a local JSON or CSV file.
// JSON files hold an array of [timestamp_ms, open, high, low, close, volume]
// rows; CSV files need a header naming at least time, open, high, low, close.
type FileFetcher struct {
	Path string
}

// NewFileFetcher creates a fetcher backed by the given file.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{Path: path}
}

func (f *FileFetcher) Name() string { return "file" }

// FetchCandles loads the file and returns the last `bars` candles. Symbol and
// interval are ignored; the file is the source of truth.
func (f *FileFetcher) FetchCandles(_, _ string, bars int) (model.Series, error) {
	var (
		series model.Series
		err    error
	)
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".csv":
		series, err = f.loadCSV()
	default:
		series, err = f.loadJSON()
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	if bars > 0 && len(series) > bars {
		series = series[len(series)-bars:]
	}
	return series, nil
}

func (f *FileFetcher) loadJSON() (model.Series, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read candle file: %w", err)
	}

	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse candle file: %w", err)
	}

	series := make(model.Series, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("candle row %d: want at least 5 fields, got %d", i, len(row))
		}
		c := model.OHLCV{
			Time:  time.UnixMilli(int64(row[0])),
			Open:  row[1],
			High:  row[2],
			Low:   row[3],
			Close: row[4],
		}
		if len(row) > 5 {
			c.Volume = row[5]
		}
		series = append(series, c)
	}
	return series, nil
}

func (f *FileFetcher) loadCSV() (model.Series, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open candle file: %w", err)
	}
	defer fh.Close()

	records, err := csv.NewReader(fh).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse candle file: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("candle file %s: no data rows", f.Path)
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	timeCol, ok := cols["time"]
	if !ok {
		timeCol, ok = cols["timestamp"]
	}
	if !ok {
		return nil, fmt.Errorf("candle file %s: missing time column", f.Path)
	}
	for _, required := range []string{"open", "high", "low", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("candle file %s: missing %s column", f.Path, required)
		}
	}

	series := make(model.Series, 0, len(records)-1)
	for i, rec := range records[1:] {
		ts, err := parseTime(rec[timeCol])
		if err != nil {
			return nil, fmt.Errorf("candle row %d: %w", i+1, err)
		}
		c := model.OHLCV{Time: ts}
		fields := []struct {
			name string
			dst  *float64
		}{
			{"open", &c.Open}, {"high", &c.High}, {"low", &c.Low}, {"close", &c.Close},
		}
		for _, fd := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[cols[fd.name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("candle row %d, %s: %w", i+1, fd.name, err)
			}
			*fd.dst = v
		}
		if vi, ok := cols["volume"]; ok && vi < len(rec) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(rec[vi]), 64); err == nil {
				c.Volume = v
			}
		}
		series = append(series, c)
	}
	return series, nil
}

// parseTime accepts unix seconds, unix milliseconds, or RFC 3339.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n), nil
		}
		return time.Unix(n, 0), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
