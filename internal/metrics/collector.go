package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"latencyrank/internal/models"
)

const prefix = "latencyrank_"

var (
	labelNames   = []string{"target", "position"}
	latencyDesc  = prometheus.NewDesc(prefix+"latency_ms", "Latency statistics of successful probes in millis", append(labelNames, "type"), nil)
	progressDesc = prometheus.NewDesc(prefix+"progress_percent", "Measurement progress of a target", labelNames, nil)
	stateDesc    = prometheus.NewDesc(prefix+"target_state", "Current state of a target (1 for the active state)", append(labelNames, "state"), nil)
	probesDesc   = prometheus.NewDesc(prefix+"target_probes", "Number of probe outcomes recorded for a target", append(labelNames, "result"), nil)
	runDesc      = prometheus.NewDesc(prefix+"run_state", "State of the measurement run (1 for the active state)", []string{"state"}, nil)

	targetStates = []models.TargetState{models.StateIdle, models.StateProbing, models.StateCompleted, models.StateFailed}
	runStates    = []models.RunState{models.RunIdle, models.RunRunning, models.RunCompleted}
)

// Collector exports the current snapshot on every scrape
type Collector struct {
	source models.SnapshotSource
}

// NewCollector creates a new snapshot collector
func NewCollector(source models.SnapshotSource) *Collector {
	return &Collector{source: source}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- latencyDesc
	ch <- progressDesc
	ch <- stateDesc
	ch <- probesDesc
	ch <- runDesc
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Snapshot()

	for _, s := range runStates {
		ch <- prometheus.MustNewConstMetric(runDesc, prometheus.GaugeValue, boolValue(snap.RunState == s), string(s))
	}

	// the same address may be listed twice, position keeps the series apart
	for i, r := range snap.Records {
		l := []string{r.Address, strconv.Itoa(i)}

		ch <- prometheus.MustNewConstMetric(progressDesc, prometheus.GaugeValue, r.Progress, l...)

		for _, s := range targetStates {
			ch <- prometheus.MustNewConstMetric(stateDesc, prometheus.GaugeValue, boolValue(r.State == s), append(l, string(s))...)
		}

		succeeded := r.SuccessCount()
		ch <- prometheus.MustNewConstMetric(probesDesc, prometheus.GaugeValue, float64(succeeded), append(l, string(models.ProbeSuccess))...)
		ch <- prometheus.MustNewConstMetric(probesDesc, prometheus.GaugeValue, float64(len(r.Probes)-succeeded), append(l, string(models.ProbeFailure))...)

		for typ, v := range map[string]*float64{"avg": r.AverageLatency, "min": r.MinLatency, "max": r.MaxLatency} {
			if v != nil {
				ch <- prometheus.MustNewConstMetric(latencyDesc, prometheus.GaugeValue, *v, append(l, typ)...)
			}
		}
	}
}

// Handler serves the registry in the Prometheus exposition format
func Handler(reg *prometheus.Registry) http.Handler {
	l := log.New()
	l.Level = log.ErrorLevel

	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:      l,
		ErrorHandling: promhttp.ContinueOnError,
	})
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
