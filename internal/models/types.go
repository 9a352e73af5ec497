package models

import (
	"context"
	"time"
)

// RunState is the process-wide state of the measurement engine
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
)

// Snapshot is an observable, consistent view of the engine
type Snapshot struct {
	RunID      string         `json:"run_id"`
	RunState   RunState       `json:"run_state"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Records    []TargetRecord `json:"records"`
}

// Prober defines a single timed network round-trip
type Prober interface {
	Probe(ctx context.Context, address string, timeout time.Duration) (time.Duration, error)
}

// RecordStore defines the mutation and read paths for target records
type RecordStore interface {
	Reset(records []TargetRecord)
	Update(id string, fn func(TargetRecord) TargetRecord)
	Records() []TargetRecord
	Subscribe() (<-chan struct{}, func())
	Notify()
}

// SnapshotSource provides the live snapshot to presentation layers
type SnapshotSource interface {
	Snapshot() Snapshot
}

// Runner defines the run lifecycle driven by presentation layers
type Runner interface {
	SnapshotSource
	StartRun(addresses []string) bool
	Cancel()
	Subscribe() (<-chan struct{}, func())
}
