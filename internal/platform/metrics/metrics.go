package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus metrics reported by maintenance runs. They
// live on a private registry so one-shot invocations can push the whole set
// to a Pushgateway on completion.
type Metrics struct {
	registry *prometheus.Registry

	RowsRemoved *prometheus.CounterVec
	RunsTotal   *prometheus.CounterVec
	AdminsSwept prometheus.Counter
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RowsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datajanitor_rows_removed_total",
			Help: "Rows removed per relation and reconciliation pass",
		}, []string{"relation", "pass"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datajanitor_runs_total",
			Help: "Maintenance runs by command and outcome",
		}, []string{"command", "outcome"}),
		AdminsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datajanitor_admins_swept_total",
			Help: "Privileged accounts normalized by the final admin sweep",
		}),
	}
	reg.MustRegister(m.RowsRemoved, m.RunsTotal, m.AdminsSwept)
	return m
}

// Push delivers the accumulated metrics to a Pushgateway. A no-op when the
// gateway URL is empty, so plain CLI usage carries no extra requirements.
func (m *Metrics) Push(gatewayURL, job string) error {
	if gatewayURL == "" {
		return nil
	}
	if err := push.New(gatewayURL, job).Gatherer(m.registry).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
