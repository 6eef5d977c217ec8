package strategy

import (
	"time"

	"github.com/google/uuid"

	"breakoutbot/internal/core"
)

// SelectEntry scans fine bars inside the window (windowStart, windowEnd]
// for the first pullback against sig.Reference: close at or below the
// reference for a long, at or above it for a short. The entry price carries
// the fee adversely and quantity is derived from the fixed notional.
//
// At most one candidate per invocation; stops at the first match.
func SelectEntry(sig Signal, fine []core.Candle, windowStart, windowEnd time.Time, feeRate, notionalUSDT float64) (core.Position, bool) {
	for _, c := range fine {
		if !c.CloseTime.After(windowStart) || c.CloseTime.After(windowEnd) {
			continue
		}
		if c.Close <= 0 {
			continue
		}

		var entry float64
		switch {
		case sig.Side == core.Long && c.Close <= sig.Reference:
			entry = c.Close * (1 + feeRate)
		case sig.Side == core.Short && c.Close >= sig.Reference:
			entry = c.Close * (1 - feeRate)
		default:
			continue
		}

		return core.Position{
			ID:           uuid.New(),
			Side:         sig.Side,
			EntryPrice:   entry,
			EntryTime:    c.CloseTime,
			Quantity:     notionalUSDT / entry,
			NotionalUSDT: notionalUSDT,
		}, true
	}
	return core.Position{}, false
}
