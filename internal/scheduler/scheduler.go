package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/backtest"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/collector"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Scheduler re-runs the backtest on fresh data on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Config    backtest.Config
	Recorder  recorder.Recorder
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, cfg backtest.Config, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Config:    cfg,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// RegisterWatch registers the periodic refresh task.
func (s *Scheduler) RegisterWatch(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.watchTask); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the watch task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.watchTask()
}

func (s *Scheduler) watchTask() {
	if err := s.Ctx.Err(); err != nil {
		return
	}
	log.Println("[INFO] running watch task")

	series, err := s.Collector.Collect()
	if err != nil {
		log.Printf("[ERROR] watch collect: %v", err)
		return
	}

	rep, err := backtest.Run(series, s.Config)
	if err != nil {
		log.Printf("[ERROR] watch backtest: %v", err)
		return
	}

	sig := s.Config.Signal
	log.Printf("[INFO] %s %s: trades=%d return=%.4f sharpe=%.2f sortino=%.2f maxdd=%.4f (bench return=%.4f)",
		s.Collector.Symbol, s.Collector.Interval,
		rep.Strategy.TotalTrades, rep.Strategy.TotalReturn,
		rep.Strategy.SharpeRatio, rep.Strategy.SortinoRatio, rep.Strategy.MaxDrawdown,
		rep.Benchmark.TotalReturn)
	if rep.Diagnostic != "" {
		log.Printf("[WARN] watch diagnostic: %s", rep.Diagnostic)
	}

	// Flag a live entry on the latest bar.
	if n := len(rep.Position); n > 0 && rep.Position[n-1] == 1 {
		log.Printf("[INFO] position open at latest bar, close=%.4f", series[len(series)-1].Close)
	}

	if err := s.Recorder.RecordRun(&recorder.RunRecord{
		Symbol:          s.Collector.Symbol,
		Interval:        s.Collector.Interval,
		Bars:            len(series),
		Epsilon:         sig.Epsilon,
		EntryRatio:      sig.EntryRatio,
		StopRatio:       sig.StopRatio,
		WickLookback:    sig.WickLookback,
		ExitMode:        string(sig.ExitMode),
		TakeProfitRatio: sig.TakeProfitRatio,
		StopLossRatio:   sig.StopLossRatio,
		PatternWindow:   sig.PatternWindow,
		Report:          rep,
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}
