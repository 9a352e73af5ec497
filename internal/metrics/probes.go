package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"latencyrank/internal/models"
)

// ProbeCounter counts probe attempts as they happen
type ProbeCounter struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewProbeCounter creates a new probe counter
func NewProbeCounter() *ProbeCounter {
	return &ProbeCounter{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "probes_total",
			Help: "Number of probe attempts by result",
		}, []string{"result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "probe_duration_ms",
			Help:    "Duration of probe attempts in millis",
			Buckets: []float64{10, 25, 50, 100, 200, 300, 500, 1000, 2500, 5000},
		}, []string{"result"}),
	}
}

// ObserveProbe records one probe outcome
func (p *ProbeCounter) ObserveProbe(_ string, outcome models.ProbeOutcome) {
	result := string(outcome.Result)
	p.total.WithLabelValues(result).Inc()
	p.duration.WithLabelValues(result).Observe(outcome.Duration)
}

// Describe implements prometheus.Collector
func (p *ProbeCounter) Describe(ch chan<- *prometheus.Desc) {
	p.total.Describe(ch)
	p.duration.Describe(ch)
}

// Collect implements prometheus.Collector
func (p *ProbeCounter) Collect(ch chan<- prometheus.Metric) {
	p.total.Collect(ch)
	p.duration.Collect(ch)
}
