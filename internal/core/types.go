package core

import (
	"time"

	"github.com/google/uuid"
)

type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

type CloseReason string

const (
	TakeProfit CloseReason = "TP"
	StopLoss   CloseReason = "SL"
)

// Candle is one OHLC bar. Immutable once fetched; series are ordered by
// CloseTime ascending.
type Candle struct {
	OpenTime  time.Time `json:"open_time"`
	CloseTime time.Time `json:"close_time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Position is an open paper trade. EntryPrice already includes the
// entry-side fee adjustment.
type Position struct {
	ID           uuid.UUID `json:"id"`
	Side         Side      `json:"side"`
	EntryPrice   float64   `json:"entry_price"`
	EntryTime    time.Time `json:"entry_time"`
	Quantity     float64   `json:"quantity"`
	NotionalUSDT float64   `json:"notional_usdt"`
}

// ClosedTrade is a Position after TP/SL closed it. Append-only.
type ClosedTrade struct {
	Position
	ExitPrice       float64     `json:"exit_price"`
	ExitTime        time.Time   `json:"exit_time"`
	Reason          CloseReason `json:"close_reason"`
	RealizedPnLUSDT float64     `json:"realized_pnl_usdt"`
}

// UnrealizedPnL is the mark-to-market PnL of an open position at price px,
// on the same notional-return basis as realized PnL. Read-time derivation;
// the loop never stores it.
func (p Position) UnrealizedPnL(px float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	if p.Side == Long {
		return (px - p.EntryPrice) * p.NotionalUSDT / p.EntryPrice
	}
	return (p.EntryPrice - px) * p.NotionalUSDT / p.EntryPrice
}
