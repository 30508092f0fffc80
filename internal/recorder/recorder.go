package recorder

import "github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"

// RunRecord holds one backtest run: the parameters it was run with and the
// resulting report.
type RunRecord struct {
	Symbol   string
	Interval string
	Bars     int

	Epsilon         float64
	EntryRatio      float64
	StopRatio       float64
	WickLookback    int
	ExitMode        string
	TakeProfitRatio float64
	StopLossRatio   float64
	PatternWindow   int

	Report *model.Report
}

// Recorder persists backtest results for later analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}
