package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Monitor struct {
	connectedClients  prometheus.Gauge
	commandsProcessed prometheus.Counter
	commandLatency    prometheus.Histogram
}

func New(namespace string) *Monitor {
	m := &Monitor{
		connectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of connected websocket clients",
		}),
		commandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_processed_total",
			Help:      "Total number of game commands applied",
		}),
		commandLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_latency_seconds",
			Help:      "Command processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	prometheus.MustRegister(
		m.connectedClients,
		m.commandsProcessed,
		m.commandLatency,
	)

	return m
}

func (m *Monitor) SetClients(n int) {
	m.connectedClients.Set(float64(n))
}

func (m *Monitor) IncCommands() {
	m.commandsProcessed.Inc()
}

func (m *Monitor) ObserveCommand(d time.Duration) {
	m.commandLatency.Observe(d.Seconds())
}
