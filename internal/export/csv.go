package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"breakoutbot/internal/account"
	"breakoutbot/internal/core"
)

// WriteTrades streams the closed-trade log as CSV.
func WriteTrades(w io.Writer, trades []core.ClosedTrade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "side", "entry_time", "entry_price", "quantity", "notional_usdt", "exit_time", "exit_price", "reason", "realized_pnl_usdt"}); err != nil {
		return err
	}
	for _, t := range trades {
		rec := []string{
			t.ID.String(),
			string(t.Side),
			t.EntryTime.UTC().Format(time.RFC3339),
			ftoa(t.EntryPrice),
			ftoa(t.Quantity),
			ftoa(t.NotionalUSDT),
			t.ExitTime.UTC().Format(time.RFC3339),
			ftoa(t.ExitPrice),
			string(t.Reason),
			ftoa(t.RealizedPnLUSDT),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeries streams a bounded history (price or capital) as CSV.
func WriteSeries(w io.Writer, header string, pts []account.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ts", header}); err != nil {
		return err
	}
	for _, p := range pts {
		if err := cw.Write([]string{p.TS.UTC().Format(time.RFC3339), ftoa(p.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(x float64) string { return strconv.FormatFloat(x, 'f', 8, 64) }
