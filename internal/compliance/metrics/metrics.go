package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EvaluationsTotal   *prometheus.CounterVec
	RuleFailuresTotal  *prometheus.CounterVec
	RulesEvaluated     prometheus.Histogram
	RuleSetSwapsTotal  prometheus.Counter
	ModeChangesTotal   prometheus.Counter
	TransfersCommitted prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "transferguard_evaluations_total",
			Help: "Total compliance evaluations by outcome and evaluation mode",
		}, []string{"outcome", "mode"}),
		RuleFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "transferguard_rule_failures_total",
			Help: "Total rule failures by rule id",
		}, []string{"rule"}),
		RulesEvaluated: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "transferguard_rules_evaluated_per_call",
			Help:    "Number of rules invoked per evaluation call",
			Buckets: prometheus.LinearBuckets(0, 1, 12),
		}),
		RuleSetSwapsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transferguard_ruleset_swaps_total",
			Help: "Total administrative swaps of the active rule set",
		}),
		ModeChangesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transferguard_mode_changes_total",
			Help: "Total administrative changes of the evaluation mode",
		}),
		TransfersCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "transferguard_velocity_transfers_committed_total",
			Help: "Total successful transfers committed to velocity windows",
		}),
	}
}

func (m *Metrics) ObserveEvaluation(passed bool, mode string, evaluated int) {
	outcome := "passed"
	if !passed {
		outcome = "failed"
	}
	m.EvaluationsTotal.WithLabelValues(outcome, mode).Inc()
	m.RulesEvaluated.Observe(float64(evaluated))
}

func (m *Metrics) IncrementRuleFailure(ruleID string) {
	m.RuleFailuresTotal.WithLabelValues(ruleID).Inc()
}
