package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CandlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candles_total", Help: "Count of candles fetched from data providers"},
		[]string{"pair"},
	)
	MarksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "marks_total", Help: "Count of streamed price marks ingested"},
		[]string{"pair"},
	)
	AdvicesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "advices_total", Help: "Non-flat strategy advices produced"},
		[]string{"pair", "direction"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"pair", "side"},
	)
	SessionSkipsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "session_skips_total", Help: "Cycles skipped because the trading session was closed"},
	)
	Equity = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "account_equity", Help: "Marked-to-market account equity"},
	)
)

func init() {
	prometheus.MustRegister(CandlesTotal, MarksTotal, AdvicesTotal, OrdersTotal, SessionSkipsTotal, Equity)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
