package backtest

import (
	"errors"
	"fmt"
)

// EnumerateTrades folds entry/exit masks through a flat-or-long state machine
// and returns paired index lists with exits[i] > entries[i] for every i. An
// entry while already long is ignored; an exit while flat is ignored; a bar
// carrying both signals while long closes (the exit is checked first).
// skipFirst leading bars are not scanned.
//
// A position still open at the series end follows the closeDangling policy:
// true force-closes it at the last index (dropping it instead if the entry
// itself is the last index, which would make a degenerate trade), false drops
// it.
func EnumerateTrades(entry, exit []bool, skipFirst int, closeDangling bool) (entries, exits []int, err error) {
	if len(entry) != len(exit) {
		return nil, nil, errors.New("entry and exit masks must have the same length")
	}
	if len(entry) == 0 {
		return nil, nil, nil
	}
	if skipFirst < 0 || skipFirst >= len(entry) {
		return nil, nil, fmt.Errorf("skipFirst %d out of range [0, %d)", skipFirst, len(entry))
	}

	long := false
	for i := skipFirst; i < len(entry); i++ {
		if long && exit[i] {
			exits = append(exits, i)
			long = false
		} else if !long && entry[i] {
			entries = append(entries, i)
			long = true
		}
	}

	if len(entries) > len(exits) {
		last := len(entry) - 1
		if closeDangling && entries[len(entries)-1] < last {
			exits = append(exits, last)
		} else {
			entries = entries[:len(exits)]
		}
	}
	return entries, exits, nil
}
