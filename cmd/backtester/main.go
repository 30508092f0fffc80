package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/backtest"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/collector"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/config"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/recorder"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/scheduler"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/signal"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/sweep"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		doSweep = flag.Bool("sweep", false, "run the parameter sweep instead of a single backtest")
		doWatch = flag.Bool("watch", false, "keep running and refresh on the configured cron schedule")
	)
	flag.Parse()

	log.Println("[INFO] zigzag backtester starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher: a local file wins, then Yahoo, mock as the last resort.
	var fetcher collector.Fetcher
	switch {
	case cfg.DataSource.File != "":
		fetcher = collector.NewFileFetcher(cfg.DataSource.File)
	case cfg.DataSource.Symbol != "":
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	default:
		fetcher = &collector.MockFetcher{}
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Interval, cfg.DataSource.Bars)

	btCfg := backtest.Config{
		Signal: signal.Config{
			Epsilon:         cfg.Strategy.Epsilon,
			EntryRatio:      cfg.Strategy.EntryRatio,
			StopRatio:       cfg.Strategy.StopRatio,
			WickLookback:    cfg.Strategy.WickLookback,
			ExitMode:        signal.ExitMode(cfg.Strategy.ExitMode),
			TakeProfitRatio: cfg.Strategy.TakeProfitRatio,
			StopLossRatio:   cfg.Strategy.StopLossRatio,
			PatternWindow:   cfg.Strategy.PatternWindow,
		},
		SkipFirst:         cfg.Backtest.SkipFirst,
		CloseDangling:     cfg.Backtest.CloseDangling,
		MinTradesForStats: cfg.Backtest.MinTradesForStats,
		RiskFreeRate:      cfg.Backtest.RiskFreeRate,
		TargetReturn:      cfg.Backtest.TargetReturn,
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	if *doWatch {
		runWatch(cfg, col, btCfg, rec)
		return
	}

	series, err := col.Collect()
	if err != nil {
		log.Fatalf("[FATAL] collect: %v", err)
	}
	if len(series) == 0 {
		log.Fatalf("[FATAL] data source returned no candles")
	}
	log.Printf("[INFO] loaded %d candles (%s .. %s)",
		len(series), series[0].Time.Format("2006-01-02"), series[len(series)-1].Time.Format("2006-01-02"))

	if *doSweep {
		runSweep(cfg, series, btCfg, rec)
		return
	}

	rep, err := backtest.Run(series, btCfg)
	if err != nil {
		log.Fatalf("[FATAL] backtest: %v", err)
	}
	printReport(cfg.DataSource.Symbol, rep)

	if err := rec.RecordRun(runRecord(cfg, len(series), btCfg.Signal, rep)); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}

func runWatch(cfg *config.Config, col *collector.Collector, btCfg backtest.Config, rec recorder.Recorder) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, btCfg, rec)
	if err := sched.RegisterWatch(cfg.Schedule.WatchCron); err != nil {
		log.Fatalf("[FATAL] register watch task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing watch task now")
		go sched.RunNow()
	}

	log.Println("[INFO] watch mode running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
}

func runSweep(cfg *config.Config, series model.Series, btCfg backtest.Config, rec recorder.Recorder) {
	results, err := sweep.Run(series, sweep.Options{
		Base: btCfg,
		Grid: sweep.Grid{
			Epsilons:      cfg.Sweep.Epsilons,
			EntryRatios:   cfg.Sweep.EntryRatios,
			StopRatios:    cfg.Sweep.StopRatios,
			WickLookbacks: cfg.Sweep.WickLookbacks,
		},
		MaxDrawdown: cfg.Sweep.MaxDrawdown,
		Workers:     cfg.Sweep.Workers,
	})
	if err != nil {
		log.Fatalf("[FATAL] sweep: %v", err)
	}
	if len(results) == 0 {
		log.Println("[WARN] sweep produced no results within constraints")
		return
	}

	top := results
	if len(top) > 10 {
		top = top[:10]
	}
	fmt.Printf("\n=== Sweep: top %d of %d ===\n", len(top), len(results))
	fmt.Printf("%-8s %-8s %-8s %-5s %9s %8s %8s %8s %7s\n",
		"eps", "entry", "stop", "wick", "return", "sharpe", "sortino", "maxdd", "trades")
	for _, r := range top {
		s := r.Config.Signal
		m := r.Report.Strategy
		fmt.Printf("%-8.4g %-8.3g %-8.3g %-5d %9.4f %8.2f %8.2f %8.4f %7d\n",
			s.Epsilon, s.EntryRatio, s.StopRatio, s.WickLookback,
			m.TotalReturn, m.SharpeRatio, m.SortinoRatio, m.MaxDrawdown, m.TotalTrades)
	}

	for _, r := range results {
		if err := rec.RecordRun(runRecord(cfg, len(series), r.Config.Signal, r.Report)); err != nil {
			log.Printf("[ERROR] record sweep run: %v", err)
			break
		}
	}
}

func runRecord(cfg *config.Config, bars int, sig signal.Config, rep *model.Report) *recorder.RunRecord {
	return &recorder.RunRecord{
		Symbol:          cfg.DataSource.Symbol,
		Interval:        cfg.DataSource.Interval,
		Bars:            bars,
		Epsilon:         sig.Epsilon,
		EntryRatio:      sig.EntryRatio,
		StopRatio:       sig.StopRatio,
		WickLookback:    sig.WickLookback,
		ExitMode:        string(sig.ExitMode),
		TakeProfitRatio: sig.TakeProfitRatio,
		StopLossRatio:   sig.StopLossRatio,
		PatternWindow:   sig.PatternWindow,
		Report:          rep,
	}
}

func printReport(symbol string, rep *model.Report) {
	fmt.Printf("\n=== Backtest: %s ===\n", symbol)
	if rep.Diagnostic != "" {
		fmt.Printf("diagnostic: %s\n", rep.Diagnostic)
	}
	fmt.Printf("periods/year: %.0f\n\n", rep.PeriodsPerYear)

	fmt.Printf("%-14s %12s %12s\n", "", "strategy", "buy & hold")
	rows := []struct {
		name string
		a, b float64
	}{
		{"total return", rep.Strategy.TotalReturn, rep.Benchmark.TotalReturn},
		{"sharpe", rep.Strategy.SharpeRatio, rep.Benchmark.SharpeRatio},
		{"sortino", rep.Strategy.SortinoRatio, rep.Benchmark.SortinoRatio},
		{"max drawdown", rep.Strategy.MaxDrawdown, rep.Benchmark.MaxDrawdown},
	}
	for _, row := range rows {
		fmt.Printf("%-14s %12.4f %12.4f\n", row.name, row.a, row.b)
	}
	fmt.Printf("%-14s %12d\n\n", "trades", rep.Strategy.TotalTrades)

	for i, tr := range rep.Trades {
		ret := 0.0
		if tr.EntryPrice > 0 {
			ret = tr.ExitPrice/tr.EntryPrice - 1
		}
		fmt.Printf("  #%-3d %s -> %s  %10.4f -> %-10.4f  %+7.2f%%\n",
			i+1, tr.EntryTime.Format("2006-01-02"), tr.ExitTime.Format("2006-01-02"),
			tr.EntryPrice, tr.ExitPrice, 100*ret)
	}
	if len(rep.Trades) > 0 {
		fmt.Println()
	}
}
