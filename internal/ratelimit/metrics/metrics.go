package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected    prometheus.Counter
	StoreErrors prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "kudos_ratelimit_rejected_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "kudos_ratelimit_store_errors_total",
			Help: "Total number of rate limit checks that failed open on a store error",
		}),
	}
}

func (m *Metrics) IncrementRejected() {
	m.Rejected.Inc()
}

func (m *Metrics) IncrementStoreErrors() {
	m.StoreErrors.Inc()
}
