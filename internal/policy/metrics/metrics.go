package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TransitionsTotal *prometheus.CounterVec
	ActiveVersion    prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "transferguard_policy_transitions_total",
			Help: "Total policy lifecycle transitions by target status",
		}, []string{"status"}),
		ActiveVersion: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "transferguard_policy_active_version",
			Help: "Currently active policy version, 0 when none",
		}),
	}
}

func (m *Metrics) IncrementTransition(status string) {
	m.TransitionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) SetActiveVersion(version int) {
	m.ActiveVersion.Set(float64(version))
}
