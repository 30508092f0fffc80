package model

import "time"

// Marker values for the per-bar swing marker series.
const (
	MarkerTrough = -1
	MarkerNone   = 0
	MarkerPeak   = 1
)

// Pivot is a confirmed local extreme. Type is MarkerPeak or MarkerTrough;
// Price is the bar's high for a peak, low for a trough.
type Pivot struct {
	Loc   int
	Time  time.Time
	Type  int
	Price float64
}

// Segment is the span between two consecutive pivots. Direction is the type
// of the end pivot: MarkerPeak for an up segment, MarkerTrough for a down one.
type Segment struct {
	StartLoc   int
	EndLoc     int
	StartPrice float64
	EndPrice   float64
	Direction  int
}
