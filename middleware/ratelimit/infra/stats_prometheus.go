package infra

import (
	"context"

	"vibecoding-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore exporta as decisões como
// ratelimit_decisions_total{policy, outcome, plan}.
// A chave não vira label.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	decisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_decisions_total",
			Help: "Total number of rate limit decisions",
		},
		[]string{"policy", "outcome", "plan"},
	)
	if reg != nil {
		if err := reg.Register(decisions); err != nil {
			return nil, err
		}
	}
	return &PrometheusStatsStore{decisions: decisions}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	outcome := "denied"
	if ev.Allowed {
		outcome = "allowed"
	}
	plan := "free"
	if ev.Premium {
		plan = "premium"
	}
	s.decisions.WithLabelValues(ev.Policy, outcome, plan).Inc()
	return nil
}

// Collector expõe o vetor, ex: para testutil.
func (s *PrometheusStatsStore) Collector() *prometheus.CounterVec {
	return s.decisions
}
