package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the download endpoint.
type Metrics struct {
	EventsRendered prometheus.Counter
	RenderErrors   *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EventsRendered: f.NewCounter(prometheus.CounterOpts{
			Name: "handcal_events_rendered_total",
			Help: "Total number of calendar events written as downloads",
		}),
		RenderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "handcal_render_errors_total",
			Help: "Total number of rejected or failed event downloads by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) incrementRendered() {
	m.EventsRendered.Inc()
}

func (m *Metrics) incrementError(reason string) {
	m.RenderErrors.WithLabelValues(reason).Inc()
}
