package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Cycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "breakoutbot_cycles_total",
		Help: "Completed simulation cycles.",
	})
	CycleErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "breakoutbot_cycle_errors_total",
		Help: "Cycles abandoned on error.",
	})
	TradesOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breakoutbot_trades_opened_total",
		Help: "Positions opened, by side.",
	}, []string{"side"})
	TradesClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breakoutbot_trades_closed_total",
		Help: "Positions closed, by reason.",
	}, []string{"reason"})
	EntriesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "breakoutbot_entries_skipped_total",
		Help: "Candidate entries rejected, by reason.",
	}, []string{"reason"})
	Capital = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "breakoutbot_capital_usdt",
		Help: "Simulated capital.",
	})
	OpenPositions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "breakoutbot_open_positions",
		Help: "Currently open positions.",
	})
)

func Handler() http.Handler { return promhttp.Handler() }
