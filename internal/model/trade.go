package model

import "time"

// Trade is a completed long round trip. EntryIndex < ExitIndex always; both
// prices are the bar closes at the respective indices.
type Trade struct {
	EntryIndex int
	ExitIndex  int
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
}
