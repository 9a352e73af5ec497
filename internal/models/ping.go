package models

import "time"

// ProbeResult is the outcome class of a single probe attempt
type ProbeResult string

const (
	ProbeSuccess ProbeResult = "success"
	ProbeFailure ProbeResult = "failure"
)

// ProbeOutcome represents a single completed probe attempt
type ProbeOutcome struct {
	Duration  float64     `json:"duration_ms"` // milliseconds
	Timestamp time.Time   `json:"timestamp"`
	Result    ProbeResult `json:"result"`
	Error     string      `json:"error,omitempty"`
}

// Succeeded reports whether the attempt produced a latency sample
func (p ProbeOutcome) Succeeded() bool {
	return p.Result == ProbeSuccess
}

// NewSuccess creates a successful outcome from a measured duration
func NewSuccess(d time.Duration, at time.Time) ProbeOutcome {
	return ProbeOutcome{
		Duration:  durationMillis(d),
		Timestamp: at,
		Result:    ProbeSuccess,
	}
}

// NewFailure creates a failed outcome, keeping the time spent before the error
func NewFailure(d time.Duration, at time.Time, err error) ProbeOutcome {
	o := ProbeOutcome{
		Duration:  durationMillis(d),
		Timestamp: at,
		Result:    ProbeFailure,
	}
	if err != nil {
		o.Error = err.Error()
	}
	return o
}

func durationMillis(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
