package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's prometheus collectors
type Metrics struct {
	chatRequests *prometheus.CounterVec
	fastPaths    *prometheus.CounterVec
	syncRuns     *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seep",
			Name:      "chat_requests_total",
			Help:      "Finished chat requests by outcome.",
		}, []string{"outcome"}),
		fastPaths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seep",
			Name:      "chat_fast_path_total",
			Help:      "Chat replies served without an LLM call, by kind.",
		}, []string{"kind"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seep",
			Name:      "catalog_sync_total",
			Help:      "Catalog sync runs by store type and final status.",
		}, []string{"store_type", "status"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "seep",
			Name:      "catalog_sync_duration_seconds",
			Help:      "Catalog sync duration by store type.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"store_type"}),
	}
	reg.MustRegister(m.chatRequests, m.fastPaths, m.syncRuns, m.syncDuration)
	return m
}

func (m *Metrics) ChatCompleted(outcome string) {
	m.chatRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) FastPathHit(kind string) {
	m.fastPaths.WithLabelValues(kind).Inc()
}

func (m *Metrics) SyncFinished(storeType, status string, seconds float64) {
	m.syncRuns.WithLabelValues(storeType, status).Inc()
	m.syncDuration.WithLabelValues(storeType).Observe(seconds)
}
