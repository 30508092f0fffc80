package fractal

import "errors"

// Detect flags Williams-style fractal extrema. Bar i is a high pattern when
// its high is the maximum of the symmetric 2n+1 window centered on it and
// strictly greater than the previous bar's high, so a plateau of equal highs
// yields a single flag. The low pattern is symmetric. Bars without a full
// window on both sides are never flagged.
func Detect(highs, lows []float64, n int) (highFlags, lowFlags []bool, err error) {
	if len(highs) != len(lows) {
		return nil, nil, errors.New("highs and lows must have the same length")
	}
	if n < 1 {
		return nil, nil, errors.New("window half-width must be at least 1")
	}

	size := len(highs)
	highFlags = make([]bool, size)
	lowFlags = make([]bool, size)

	for i := n; i < size-n; i++ {
		isMax, isMin := true, true
		for j := i - n; j <= i+n; j++ {
			if highs[j] > highs[i] {
				isMax = false
			}
			if lows[j] < lows[i] {
				isMin = false
			}
			if !isMax && !isMin {
				break
			}
		}
		if isMax && highs[i] > highs[i-1] {
			highFlags[i] = true
		}
		if isMin && lows[i] < lows[i-1] {
			lowFlags[i] = true
		}
	}
	return highFlags, lowFlags, nil
}
