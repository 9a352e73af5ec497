package models

import (
	"math"

	"github.com/google/uuid"
)

// TargetState is the lifecycle state of a target within one run
type TargetState string

const (
	StateIdle      TargetState = "idle"
	StateProbing   TargetState = "probing"
	StateCompleted TargetState = "completed"
	StateFailed    TargetState = "failed"
)

func (s TargetState) rank() int {
	switch s {
	case StateIdle:
		return 0
	case StateProbing:
		return 1
	case StateCompleted, StateFailed:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether no further transition is possible
func (s TargetState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanAdvanceTo reports whether moving from s to next keeps the state
// machine forward-only: Idle -> Probing -> {Completed, Failed}.
func (s TargetState) CanAdvanceTo(next TargetState) bool {
	if s == next {
		return !s.Terminal()
	}
	if s.Terminal() || next.rank() < 0 {
		return false
	}
	return next.rank() > s.rank()
}

// Stats holds latency figures derived from the successful probes of a record.
// Nil fields mean no successful probe exists.
type Stats struct {
	Average *float64 `json:"average_latency"`
	Min     *float64 `json:"min_latency"`
	Max     *float64 `json:"max_latency"`
}

// Summarize derives average, min and max over the successful outcomes only
func Summarize(probes []ProbeOutcome) Stats {
	var (
		sum      float64
		count    int
		min, max = math.Inf(1), math.Inf(-1)
	)
	for _, p := range probes {
		if !p.Succeeded() {
			continue
		}
		sum += p.Duration
		count++
		min = math.Min(min, p.Duration)
		max = math.Max(max, p.Duration)
	}
	if count == 0 {
		return Stats{}
	}

	avg := sum / float64(count)
	return Stats{Average: &avg, Min: &min, Max: &max}
}

// TargetRecord represents the accumulated measurement state of one target
// within one run
type TargetRecord struct {
	ID             string         `json:"id"`
	Address        string         `json:"address"`
	Probes         []ProbeOutcome `json:"probes"`
	AverageLatency *float64       `json:"average_latency"`
	MinLatency     *float64       `json:"min_latency"`
	MaxLatency     *float64       `json:"max_latency"`
	Progress       float64        `json:"progress"`
	State          TargetState    `json:"state"`
}

// NewTargetRecord creates an idle record with a fresh identity
func NewTargetRecord(address string) TargetRecord {
	return TargetRecord{
		ID:      uuid.NewString(),
		Address: address,
		Probes:  []ProbeOutcome{},
		State:   StateIdle,
	}
}

// SuccessCount returns the number of successful probes
func (r TargetRecord) SuccessCount() int {
	n := 0
	for _, p := range r.Probes {
		if p.Succeeded() {
			n++
		}
	}
	return n
}

// HasLatency reports whether the record has at least one successful sample
func (r TargetRecord) HasLatency() bool {
	return r.AverageLatency != nil
}

// ApplyStats stores derived figures on the record
func (r *TargetRecord) ApplyStats(s Stats) {
	r.AverageLatency = s.Average
	r.MinLatency = s.Min
	r.MaxLatency = s.Max
}

// Clone returns a deep copy safe to hand to readers
func (r TargetRecord) Clone() TargetRecord {
	out := r
	out.Probes = append(make([]ProbeOutcome, 0, len(r.Probes)), r.Probes...)
	out.AverageLatency = cloneFloat(r.AverageLatency)
	out.MinLatency = cloneFloat(r.MinLatency)
	out.MaxLatency = cloneFloat(r.MaxLatency)
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
