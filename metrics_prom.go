package wcall

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromMetrics is a MetricsPolicy backed by Prometheus counters.
type PromMetrics struct {
	submitted prometheus.Counter
	executed  prometheus.Counter
	panicked  prometheus.Counter
	respawned prometheus.Counter
	rebuilt   prometheus.Counter
}

// NewPromMetrics creates the executor counters under namespace and registers
// them with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPromMetrics(reg prometheus.Registerer, namespace string) (*PromMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      name,
			Help:      help,
		})
	}
	m := &PromMetrics{
		submitted: counter("jobs_submitted_total", "Total number of jobs accepted by the queue."),
		executed:  counter("jobs_executed_total", "Total number of jobs that returned normally."),
		panicked:  counter("jobs_panicked_total", "Total number of jobs that panicked."),
		respawned: counter("workers_respawned_total", "Total number of replacement workers started."),
		rebuilt:   counter("queue_rebuilds_total", "Total number of queues rebuilt after becoming unusable."),
	}
	for _, c := range []prometheus.Collector{m.submitted, m.executed, m.panicked, m.respawned, m.rebuilt} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PromMetrics) IncSubmitted() { m.submitted.Inc() }
func (m *PromMetrics) IncExecuted()  { m.executed.Inc() }
func (m *PromMetrics) IncPanicked()  { m.panicked.Inc() }
func (m *PromMetrics) IncRespawned() { m.respawned.Inc() }
func (m *PromMetrics) IncRebuilt()   { m.rebuilt.Inc() }
