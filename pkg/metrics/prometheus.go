// Package metrics exposes store usage and claim counts as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	kindSingle = "single"
	kindBatch  = "batch"
)

// Manager owns the collectors and the registry they are registered in.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	storeCalls       *prometheus.CounterVec
	storeErrors      prometheus.Counter
	storeThrottle    prometheus.Histogram
	claimsByStatus   *prometheus.GaugeVec
	activeClaimsType *prometheus.GaugeVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "claims",
		registry:  prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.storeCalls = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "calls_total",
		Help:      "Calls made to the external store, by call kind.",
	}, []string{"kind"})

	m.storeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Failed calls to the external store.",
	})

	m.storeThrottle = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "throttle_wait_seconds",
		Help:      "Time callers spent waiting for the rate gate.",
		Buckets:   []float64{0, 0.1, 0.25, 0.5, 1, 1.5, 2, 3},
	})

	m.claimsByStatus = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "claims",
		Help:      "Claims by status at the last summary refresh.",
	}, []string{"status"})

	m.activeClaimsType = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "active_claims_by_type",
		Help:      "Unresolved claims by claim type at the last summary refresh.",
	}, []string{"claim_type"})

	return m
}

func (m *Manager) ObserveStoreCall(batch bool, wait time.Duration) {
	kind := kindSingle
	if batch {
		kind = kindBatch
	}

	m.storeCalls.WithLabelValues(kind).Inc()
	m.storeThrottle.Observe(wait.Seconds())
}

func (m *Manager) ObserveStoreError() {
	m.storeErrors.Inc()
}

// SetClaimCounts replaces the claim gauges with a fresh summary.
func (m *Manager) SetClaimCounts(byStatus map[string]int, activeByType map[string]int) {
	m.claimsByStatus.Reset()

	for status, n := range byStatus {
		m.claimsByStatus.WithLabelValues(status).Set(float64(n))
	}

	m.activeClaimsType.Reset()

	for typ, n := range activeByType {
		m.activeClaimsType.WithLabelValues(typ).Set(float64(n))
	}
}

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}
