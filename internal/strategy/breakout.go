package strategy

import "breakoutbot/internal/core"

// Signal is a breakout on the coarse timeframe. Reference is the close of
// the most recent coarse bar; the entry selector compares fine closes
// against it.
type Signal struct {
	Side      core.Side
	Reference float64
	ChangePct float64
}

// Detect reports whether the coarse series shows a breakout of at least
// triggerPct against the pre-breakout extreme. The min/max window excludes
// only the most recent bar, so a breakout that is crossed and held keeps
// signalling every cycle; the per-side position cap is the only brake on
// repeated entries.
//
// Under-length series and zero extrema yield no signal. Long is checked
// before short.
func Detect(coarse []core.Candle, triggerPct float64) (Signal, bool) {
	if len(coarse) < 2 {
		return Signal{}, false
	}
	current := coarse[len(coarse)-1].Close

	lowest := coarse[0].Low
	highest := coarse[0].High
	for _, c := range coarse[:len(coarse)-1] {
		if c.Low < lowest {
			lowest = c.Low
		}
		if c.High > highest {
			highest = c.High
		}
	}
	if lowest == 0 || highest == 0 {
		return Signal{}, false
	}

	changeUp := (current - lowest) / lowest * 100
	changeDown := (current - highest) / highest * 100

	if changeUp >= triggerPct {
		return Signal{Side: core.Long, Reference: current, ChangePct: changeUp}, true
	}
	if changeDown <= -triggerPct {
		return Signal{Side: core.Short, Reference: current, ChangePct: changeDown}, true
	}
	return Signal{}, false
}
