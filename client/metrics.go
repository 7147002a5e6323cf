package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the requests a client sends to its node.
type Metrics struct {
	queries    *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	broadcasts *prometheus.CounterVec
}

// NewMetrics creates the client collectors and registers them.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grug",
			Subsystem: "client",
			Name:      "queries_total",
			Help:      "Number of ABCI queries by path and result.",
		}, []string{"path", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "grug",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Duration of node requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grug",
			Subsystem: "client",
			Name:      "broadcasts_total",
			Help:      "Number of broadcast transactions by result.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{m.queries, m.latency, m.broadcasts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// result labels
const (
	resultOK      = "ok"
	resultFailed  = "failed"
	resultNetwork = "network"
)

func (m *Metrics) observeQuery(path, result string, start time.Time) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(path, result).Inc()
	m.latency.WithLabelValues("abci_query").Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeBroadcast(result string, start time.Time) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(result).Inc()
	m.latency.WithLabelValues("broadcast_tx_sync").Observe(time.Since(start).Seconds())
}
