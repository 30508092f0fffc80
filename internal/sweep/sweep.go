package sweep

import (
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/backtest"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
)

// Grid defines the parameter values to sweep. An empty dimension keeps the
// base config's value.
type Grid struct {
	Epsilons      []float64
	EntryRatios   []float64
	StopRatios    []float64
	WickLookbacks []int
}

// Options configures a sweep run.
type Options struct {
	Base backtest.Config
	Grid Grid

	// MaxDrawdown, when positive, drops results whose strategy drawdown
	// exceeds it.
	MaxDrawdown float64
	// Workers is the evaluation concurrency; zero means GOMAXPROCS.
	Workers int
}

// Result pairs one evaluated configuration with its report.
type Result struct {
	Config backtest.Config
	Report *model.Report
}

// Run evaluates every combination of the grid against the series and returns
// the surviving results ranked by strategy Sharpe ratio, best first.
// Combinations whose stop ratio does not exceed the entry ratio are skipped
// before evaluation.
func Run(series model.Series, opts Options) ([]Result, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("empty candle series")
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid candle series: %w", err)
	}

	configs := expand(opts.Base, opts.Grid)
	if len(configs) == 0 {
		return nil, fmt.Errorf("no valid parameter combinations")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(configs) {
		workers = len(configs)
	}
	log.Printf("[INFO] sweep: %d combinations, %d workers", len(configs), workers)

	jobs := make(chan backtest.Config)
	resCh := make(chan Result, len(configs))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cfg := range jobs {
				rep, err := backtest.Run(series, cfg)
				if err != nil {
					log.Printf("[WARN] sweep eval eps=%.4g entry=%.3g stop=%.3g: %v",
						cfg.Signal.Epsilon, cfg.Signal.EntryRatio, cfg.Signal.StopRatio, err)
					continue
				}
				resCh <- Result{Config: cfg, Report: rep}
			}
		}()
	}

	for _, cfg := range configs {
		jobs <- cfg
	}
	close(jobs)
	wg.Wait()
	close(resCh)

	results := make([]Result, 0, len(configs))
	for r := range resCh {
		if opts.MaxDrawdown > 0 && r.Report.Strategy.MaxDrawdown > opts.MaxDrawdown {
			continue
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Report.Strategy.SharpeRatio > results[j].Report.Strategy.SharpeRatio
	})
	return results, nil
}

func expand(base backtest.Config, g Grid) []backtest.Config {
	epsilons := orFloat(g.Epsilons, base.Signal.Epsilon)
	entries := orFloat(g.EntryRatios, base.Signal.EntryRatio)
	stops := orFloat(g.StopRatios, base.Signal.StopRatio)
	lookbacks := orInt(g.WickLookbacks, base.Signal.WickLookback)

	var out []backtest.Config
	for _, eps := range epsilons {
		for _, entry := range entries {
			for _, stop := range stops {
				if stop <= entry {
					continue
				}
				for _, w := range lookbacks {
					cfg := base
					cfg.Signal.Epsilon = eps
					cfg.Signal.EntryRatio = entry
					cfg.Signal.StopRatio = stop
					cfg.Signal.WickLookback = w
					out = append(out, cfg)
				}
			}
		}
	}
	return out
}

func orFloat(vals []float64, fallback float64) []float64 {
	if len(vals) == 0 {
		return []float64{fallback}
	}
	return vals
}

func orInt(vals []int, fallback int) []int {
	if len(vals) == 0 {
		return []int{fallback}
	}
	return vals
}
