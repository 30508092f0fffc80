package signal

import (
	"errors"
	"fmt"
	"math"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/fib"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/fractal"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/swing"
)

// ExitMode selects how long positions are closed.
type ExitMode string

const (
	// ExitPattern closes on the low exit pattern flag.
	ExitPattern ExitMode = "pattern"
	// ExitRatioTarget closes when price reaches the take-profit or
	// stop-loss retracement level.
	ExitRatioTarget ExitMode = "ratio-target"
)

// Config holds the strategy parameters for signal synthesis.
type Config struct {
	Epsilon      float64
	EntryRatio   float64
	StopRatio    float64
	WickLookback int

	ExitMode        ExitMode
	TakeProfitRatio float64
	StopLossRatio   float64
	PatternWindow   int

	// Ratios overrides the projected ratio set; nil means fib.DefaultRatios.
	Ratios []float64
}

// Result carries the entry/exit masks plus the intermediate series a caller
// may want for reporting. Diagnostic is non-empty when the inputs degraded to
// all-false masks.
type Result struct {
	Entry []bool
	Exit  []bool

	Markers    []int
	Turning    []int
	Pivots     []model.Pivot
	Projection *fib.Projection

	Diagnostic string
}

// Generate runs the detector, projector and pattern stages and combines them
// into long-only entry/exit masks.
//
// Entry at bar i requires an active up segment, the bar's low at or below the
// entry-ratio level, and a wick rejection over the prior WickLookback bars:
// the rolling minimum low reached the stop-ratio level while the rolling
// maximum close held the entry-ratio level. A bar flagged for both entry and
// exit keeps only the exit.
//
// Degraded inputs (fewer than two pivots, a configured ratio missing from the
// projected set, levels unresolved after filling) produce all-false masks with
// a diagnostic, not an error. Invalid window sizes are errors.
func Generate(series model.Series, cfg Config) (*Result, error) {
	if cfg.WickLookback < 1 {
		return nil, errors.New("wick lookback must be at least 1")
	}
	if cfg.ExitMode == "" {
		cfg.ExitMode = ExitPattern
	}
	if cfg.ExitMode == ExitPattern && cfg.PatternWindow < 1 {
		return nil, errors.New("pattern window must be at least 1")
	}

	n := len(series)
	res := &Result{Entry: make([]bool, n), Exit: make([]bool, n)}

	highs, lows, closes := series.Highs(), series.Lows(), series.Closes()

	markers, turning, err := swing.Detect(highs, lows, cfg.Epsilon)
	if err != nil {
		return nil, err
	}
	res.Markers = markers
	res.Turning = turning
	res.Pivots = swing.ExtractPivots(markers, series)
	if len(res.Pivots) < 2 {
		res.Diagnostic = "fewer than 2 pivots detected; no signals"
		return res, nil
	}

	proj := fib.Project(n, res.Pivots, cfg.Ratios)
	res.Projection = proj

	entryLvl, ok := levelFilled(proj, cfg.EntryRatio)
	if !ok {
		res.Diagnostic = fmt.Sprintf("entry ratio %.3f not in projected set", cfg.EntryRatio)
		return res, nil
	}
	stopLvl, ok := levelFilled(proj, cfg.StopRatio)
	if !ok {
		res.Diagnostic = fmt.Sprintf("stop ratio %.3f not in projected set", cfg.StopRatio)
		return res, nil
	}
	if hasNaN(entryLvl) || hasNaN(stopLvl) {
		res.Diagnostic = "retracement levels unresolved after fill; no signals"
		return res, nil
	}
	direction := directionFilled(proj)

	// Wick rejection over the prior WickLookback bars, shifted one bar so the
	// current bar never feeds its own filter.
	wick := make([]bool, n)
	for i := cfg.WickLookback; i < n; i++ {
		minLow := math.Inf(1)
		maxClose := math.Inf(-1)
		for j := i - cfg.WickLookback; j < i; j++ {
			if lows[j] < minLow {
				minLow = lows[j]
			}
			if closes[j] > maxClose {
				maxClose = closes[j]
			}
		}
		wick[i] = minLow <= stopLvl[i] && maxClose >= entryLvl[i]
	}

	for i := 0; i < n; i++ {
		res.Entry[i] = direction[i] == model.MarkerPeak && lows[i] <= entryLvl[i] && wick[i]
	}

	switch cfg.ExitMode {
	case ExitPattern:
		_, lowFlags, err := fractal.Detect(highs, lows, cfg.PatternWindow)
		if err != nil {
			return nil, err
		}
		res.Exit = lowFlags
	case ExitRatioTarget:
		tpLvl, ok := levelFilled(proj, cfg.TakeProfitRatio)
		if !ok {
			res.Diagnostic = fmt.Sprintf("take-profit ratio %.3f not in projected set", cfg.TakeProfitRatio)
			clear(res.Entry)
			return res, nil
		}
		slLvl, ok := levelFilled(proj, cfg.StopLossRatio)
		if !ok {
			res.Diagnostic = fmt.Sprintf("stop-loss ratio %.3f not in projected set", cfg.StopLossRatio)
			clear(res.Entry)
			return res, nil
		}
		if hasNaN(tpLvl) || hasNaN(slLvl) {
			res.Diagnostic = "exit levels unresolved after fill; no signals"
			clear(res.Entry)
			return res, nil
		}
		for i := 0; i < n; i++ {
			res.Exit[i] = highs[i] >= tpLvl[i] || lows[i] <= slLvl[i]
		}
	default:
		return nil, fmt.Errorf("unknown exit mode %q", cfg.ExitMode)
	}

	// Exit wins a same-bar conflict: never open and close on one bar.
	for i := 0; i < n; i++ {
		if res.Exit[i] {
			res.Entry[i] = false
		}
	}

	return res, nil
}

// levelFilled copies a projected level series and resolves its lead-in by
// back-filling from the first completed segment. The projection itself is
// never mutated.
func levelFilled(proj *fib.Projection, ratio float64) ([]float64, bool) {
	lvl, ok := proj.Level(ratio)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(lvl))
	copy(out, lvl)
	bfillFloats(out)
	return out, true
}

func directionFilled(proj *fib.Projection) []int {
	out := make([]int, len(proj.Direction))
	copy(out, proj.Direction)
	first := 0
	for _, d := range out {
		if d != 0 {
			first = d
			break
		}
	}
	for i, d := range out {
		if d == 0 {
			out[i] = first
		} else {
			break
		}
	}
	return out
}

func bfillFloats(vals []float64) {
	first := math.NaN()
	for _, v := range vals {
		if !math.IsNaN(v) {
			first = v
			break
		}
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = first
		} else {
			break
		}
	}
}

func hasNaN(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
