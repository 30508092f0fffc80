package fib

import (
	"math"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
)

// DefaultRatios is the fixed retracement ratio set projected for every segment.
var DefaultRatios = []float64{0.0, 0.236, 0.382, 0.5, 0.618, 0.786, 1.0}

// Projection holds per-bar segment state and retracement levels, forward-filled
// from each completed segment onto the bars that follow it. Bars before the
// first completed segment stay NaN (direction 0): no levels exist before two
// pivots exist.
type Projection struct {
	Ratios []float64

	// Direction[i] is the active segment's direction at bar i
	// (model.MarkerPeak for up, model.MarkerTrough for down, 0 for none yet).
	Direction []int

	StartPrice []float64
	EndPrice   []float64

	// levels[k][i] is the price at Ratios[k] active at bar i.
	levels [][]float64

	Segments []model.Segment
}

// Level returns the per-bar price series for the given ratio, or false if the
// ratio is not part of the projected set.
func (p *Projection) Level(ratio float64) ([]float64, bool) {
	for k, r := range p.Ratios {
		if math.Abs(r-ratio) < 1e-9 {
			return p.levels[k], true
		}
	}
	return nil, false
}

// Project computes the ratio->price mapping for each consecutive pivot pair
// and assigns it to every bar in (end_loc, next_end_loc], where next_end_loc
// is the following segment's end pivot location or the last bar. Degenerate
// segments (zero price delta, or start at/after end) are skipped; a trailing
// forward-fill pass bridges the gaps they leave from the most recent valid
// segment.
func Project(n int, pivots []model.Pivot, ratios []float64) *Projection {
	if len(ratios) == 0 {
		ratios = DefaultRatios
	}
	p := &Projection{
		Ratios:     ratios,
		Direction:  make([]int, n),
		StartPrice: nanSlice(n),
		EndPrice:   nanSlice(n),
		levels:     make([][]float64, len(ratios)),
	}
	for k := range ratios {
		p.levels[k] = nanSlice(n)
	}
	if len(pivots) < 2 || n == 0 {
		return p
	}

	for i := 0; i+1 < len(pivots); i++ {
		start, end := pivots[i], pivots[i+1]
		if start.Loc >= end.Loc {
			continue
		}
		diff := end.Price - start.Price
		if diff == 0 {
			continue
		}

		p.Segments = append(p.Segments, model.Segment{
			StartLoc:   start.Loc,
			EndLoc:     end.Loc,
			StartPrice: start.Price,
			EndPrice:   end.Price,
			Direction:  end.Type,
		})

		fillEnd := n - 1
		if i+2 < len(pivots) {
			fillEnd = pivots[i+2].Loc
		}
		for j := end.Loc + 1; j <= fillEnd && j < n; j++ {
			p.Direction[j] = end.Type
			p.StartPrice[j] = start.Price
			p.EndPrice[j] = end.Price
			for k, r := range ratios {
				p.levels[k][j] = start.Price + diff*r
			}
		}
	}

	p.forwardFill()
	return p
}

func (p *Projection) forwardFill() {
	ffillFloats(p.StartPrice)
	ffillFloats(p.EndPrice)
	for k := range p.levels {
		ffillFloats(p.levels[k])
	}
	last := 0
	for i, d := range p.Direction {
		if d != 0 {
			last = d
		} else {
			p.Direction[i] = last
		}
	}
}

func ffillFloats(vals []float64) {
	last := math.NaN()
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = last
		} else {
			last = v
		}
	}
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
