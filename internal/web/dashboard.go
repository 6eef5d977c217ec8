package web

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"breakoutbot/internal/core"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<html>
<head>
    <title>Breakout Bot Dashboard</title>
    <meta http-equiv="refresh" content="10">
    <style>
        body { font-family: Arial; background: #f4f4f4; }
        h1 { color: #333; }
        table { width: 100%; border-collapse: collapse; }
        th, td { padding: 10px; border: 1px solid #ccc; text-align: center; }
        th { background-color: #eee; }
    </style>
</head>
<body>
    <h1>📊 Breakout Bot Dashboard</h1>
    <p>Current price: <strong>{{printf "%.2f" .Price}} USDT</strong></p>
    <p>Capital: <strong>{{printf "%.2f" .Capital}} USDT</strong></p>
    <p>Open trades: {{.OpenCount}} (Long: {{.LongCount}} / Short: {{.ShortCount}}) | Closed: {{.ClosedCount}}</p>
    <p>📈 Unrealized PnL: <strong>{{printf "%.2f" .UnrealizedPnL}} USDT</strong></p>
    <table>
        <thead>
            <tr><th>Side</th><th>Entry price</th><th>Time</th><th>Quantity</th><th>Unrealized PnL</th></tr>
        </thead>
        <tbody>
            {{if not .Rows}}<tr><td colspan="5">No open trades</td></tr>{{end}}
            {{range .Rows}}
            <tr>
                <td>{{.Side}}</td>
                <td>{{printf "%.2f" .Entry}}</td>
                <td>{{.Time}}</td>
                <td>{{printf "%.5f" .Qty}}</td>
                <td>{{printf "%.2f" .PnL}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>
</body>
</html>
`))

type dashboardRow struct {
	Side  string
	Entry float64
	Time  string
	Qty   float64
	PnL   float64
}

type dashboardData struct {
	Price         float64
	Capital       float64
	OpenCount     int
	LongCount     int
	ShortCount    int
	ClosedCount   int
	UnrealizedPnL float64
	Rows          []dashboardRow
}

func (s *Server) handleDashboard(c *gin.Context) {
	snap := s.store.Snapshot()
	d := dashboardData{
		Price:       snap.LastPrice,
		Capital:     snap.Capital,
		OpenCount:   len(snap.Open),
		LongCount:   snap.OpenBySide(core.Long),
		ShortCount:  snap.OpenBySide(core.Short),
		ClosedCount: len(snap.Closed),
	}
	for _, p := range snap.Open {
		pnl := p.UnrealizedPnL(snap.LastPrice)
		d.UnrealizedPnL += pnl
		d.Rows = append(d.Rows, dashboardRow{
			Side:  strings.ToUpper(string(p.Side)),
			Entry: p.EntryPrice,
			Time:  p.EntryTime.UTC().Format("2006-01-02 15:04"),
			Qty:   p.Quantity,
			PnL:   pnl,
		})
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := dashboardTmpl.Execute(c.Writer, d); err != nil {
		_ = c.Error(err)
	}
}
