package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	KudosIssued        prometheus.Counter
	KudosRejected      *prometheus.CounterVec
	KudosIssueDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		KudosIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "kudos_issued_total",
			Help: "Total number of kudos issued",
		}),
		KudosRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kudos_rejected_total",
			Help: "Total number of kudo issuance attempts rejected, by reason",
		}, []string{"reason"}),
		KudosIssueDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kudos_issue_duration_seconds",
			Help:    "Latency of kudo issuance including the ledger critical section",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
}

func (m *Metrics) IncrementIssued() {
	m.KudosIssued.Inc()
}

func (m *Metrics) IncrementRejected(reason string) {
	m.KudosRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveIssueDuration(d time.Duration) {
	m.KudosIssueDuration.Observe(d.Seconds())
}
