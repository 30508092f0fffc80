package swing

import (
	"errors"
	"math"

	"github.com/petarkabashki/PK-ZigZag-Backtester/internal/model"
)

// Detect scans highs/lows for confirmed turning points using a relative
// reversal threshold epsilon. It returns two arrays parallel to the input:
// markers (+1 confirmed peak, -1 confirmed trough, 0 otherwise) and turning
// points (+1 at the bar where the prevailing direction flips to up, -1 where
// it flips to down).
//
// The scan has two phases. The seed phase tracks the running minimum of lows
// and maximum of highs from the start until price has moved at least epsilon
// (relative) away from one of them; the qualifying extreme becomes the first
// pivot and fixes the initial direction. The propagation phase then keeps the
// extreme seen since the last pivot (max of highs while up, min of lows while
// down) and confirms a new pivot whenever price retraces at least epsilon from
// it. Candidate updates are strict comparisons, so ties in value resolve to
// the earliest index. The trailing extreme is never emitted: confirmation
// requires a subsequent reversal.
//
// Degraded inputs are a policy, not an error: epsilon <= 0, fewer than 2 bars,
// or any non-finite price yields all-zero outputs. Mismatched input lengths
// are a caller bug and fail fast.
func Detect(highs, lows []float64, epsilon float64) (markers, turning []int, err error) {
	if len(highs) != len(lows) {
		return nil, nil, errors.New("highs and lows must have the same length")
	}
	n := len(highs)
	markers = make([]int, n)
	turning = make([]int, n)
	if n < 2 || epsilon <= 0 || !allFinite(highs) || !allFinite(lows) {
		return markers, turning, nil
	}

	direction := 0
	extremeIdx, extremeVal := 0, 0.0

	// Seed phase.
	candLow, candLowIdx := lows[0], 0
	candHigh, candHighIdx := highs[0], 0
	i := 1
	for ; i < n; i++ {
		if lows[i] < candLow {
			candLow, candLowIdx = lows[i], i
		}
		if highs[i] > candHigh {
			candHigh, candHighIdx = highs[i], i
		}
		if highs[i]/candLow-1 >= epsilon {
			direction = 1
			markers[candLowIdx] = model.MarkerTrough
			turning[i] = 1
			extremeIdx, extremeVal = candHighIdx, candHigh
			break
		}
		if candHigh/lows[i]-1 >= epsilon {
			direction = -1
			markers[candHighIdx] = model.MarkerPeak
			turning[i] = -1
			extremeIdx, extremeVal = candLowIdx, candLow
			break
		}
	}
	if direction == 0 {
		return markers, turning, nil
	}

	// Propagation phase.
	for i++; i < n; i++ {
		if direction == 1 {
			if extremeVal/lows[i]-1 >= epsilon {
				markers[extremeIdx] = model.MarkerPeak
				turning[i] = -1
				direction = -1
				extremeIdx, extremeVal = i, lows[i]
				continue
			}
			if highs[i] > extremeVal {
				extremeIdx, extremeVal = i, highs[i]
			}
		} else {
			if highs[i]/extremeVal-1 >= epsilon {
				markers[extremeIdx] = model.MarkerTrough
				turning[i] = 1
				direction = 1
				extremeIdx, extremeVal = i, highs[i]
				continue
			}
			if lows[i] < extremeVal {
				extremeIdx, extremeVal = i, lows[i]
			}
		}
	}

	return markers, turning, nil
}

func allFinite(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
