package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "welfare"

// Outcome label values.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// Metrics owns a private registry so tests and multiple stores never collide on the
// global one.
type Metrics struct {
	registry *prometheus.Registry
	commands *prometheus.CounterVec
	balance  prometheus.Gauge
}

func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Ledger commands processed, by command kind and outcome.",
		}, []string{"command", "outcome"}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "net_balance",
			Help:      "Cash book income minus expense after the last applied command.",
		}),
	}

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}
	hasError(m.registry.Register(m.commands))
	hasError(m.registry.Register(m.balance))
	hasError(m.registry.Register(collectors.NewGoCollector()))
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return m, nil
}

// ObserveCommand counts one dispatched command.
func (m *Metrics) ObserveCommand(kind string, err error) {
	outcome := OutcomeApplied
	if err != nil {
		outcome = OutcomeRejected
	}
	m.commands.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) SetBalance(v float64) {
	m.balance.Set(v)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
