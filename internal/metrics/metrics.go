package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "votes_total", Help: "Agent votes collected"},
		[]string{"agent", "direction"},
	)
	ConsensusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "consensus_total", Help: "Consensus outcomes rendered"},
		[]string{"asset", "decision", "reason"},
	)
	ConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "conflicts_total", Help: "Trades blocked by the conflict guard"},
		[]string{"asset", "severity"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"asset", "direction"},
	)
)

func init() {
	prometheus.MustRegister(VotesTotal, ConsensusTotal, ConflictsTotal, OrdersTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
