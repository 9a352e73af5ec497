package monitor

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"latencyrank/internal/models"
)

// Defaults for a run
const (
	DefaultMaxProbes    = 5
	DefaultProbeDelay   = 200 * time.Millisecond
	DefaultProbeTimeout = 5 * time.Second
	DefaultBatchSize    = 3
)

// Config tunes how targets are probed
type Config struct {
	MaxProbes    int
	ProbeDelay   time.Duration
	ProbeTimeout time.Duration
	BatchSize    int
}

// DefaultConfig returns the standard probing parameters
func DefaultConfig() Config {
	return Config{
		MaxProbes:    DefaultMaxProbes,
		ProbeDelay:   DefaultProbeDelay,
		ProbeTimeout: DefaultProbeTimeout,
		BatchSize:    DefaultBatchSize,
	}
}

// Observer is told about every completed probe attempt
type Observer interface {
	ObserveProbe(address string, outcome models.ProbeOutcome)
}

// Monitor coordinates runs: it owns the run state, partitions targets into
// batches and drives one probe worker per target.
type Monitor struct {
	config    Config
	store     models.RecordStore
	prober    models.Prober
	observers []Observer

	// startMu serializes run replacement
	startMu sync.Mutex

	mu         sync.Mutex
	state      models.RunState
	current    *run
	startedAt  time.Time
	finishedAt time.Time
}

// New creates a new Monitor. Non-positive config values fall back to defaults.
func New(cfg Config, store models.RecordStore, prober models.Prober, observers ...Observer) *Monitor {
	def := DefaultConfig()
	if cfg.MaxProbes <= 0 {
		cfg.MaxProbes = def.MaxProbes
	}
	if cfg.ProbeDelay < 0 {
		cfg.ProbeDelay = def.ProbeDelay
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = def.ProbeTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}

	return &Monitor{
		config:    cfg,
		store:     store,
		prober:    prober,
		observers: observers,
		state:     models.RunIdle,
	}
}

// StartRun replaces any active run with a new one over addresses. It returns
// once the fresh records are published; probing continues in the background.
// An empty list is a no-op and returns false.
func (m *Monitor) StartRun(addresses []string) bool {
	return m.startRun(addresses) != nil
}

func (m *Monitor) startRun(addresses []string) *run {
	if len(addresses) == 0 {
		return nil
	}

	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	prev := m.current
	m.mu.Unlock()
	if prev != nil && !prev.finished() {
		log.Infof("Cancelling run %s before starting a new one", prev.id)
		prev.stop()
	}

	records := make([]models.TargetRecord, len(addresses))
	for i, address := range addresses {
		records[i] = models.NewTargetRecord(address)
	}

	r := newRun()

	m.mu.Lock()
	m.store.Reset(records)
	m.current = r
	m.state = models.RunRunning
	m.startedAt = time.Now()
	m.finishedAt = time.Time{}
	m.mu.Unlock()

	go m.execute(r, records)
	return r
}

// Cancel requests the active run to stop. Already finished records are left
// untouched. Safe to call at any time.
func (m *Monitor) Cancel() {
	m.mu.Lock()
	r := m.current
	m.mu.Unlock()

	if r != nil && !r.finished() {
		log.Infof("Cancelling run %s", r.id)
		r.cancel()
	}
}

// Wait blocks until the current run, if any, has finished
func (m *Monitor) Wait() {
	m.mu.Lock()
	r := m.current
	m.mu.Unlock()

	if r != nil {
		<-r.done
	}
}

// Run starts a run and blocks until it completes or ctx is done, returning
// the final snapshot.
func (m *Monitor) Run(ctx context.Context, addresses []string) models.Snapshot {
	r := m.startRun(addresses)
	if r == nil {
		return m.Snapshot()
	}

	select {
	case <-r.done:
	case <-ctx.Done():
		r.stop()
	}
	return m.Snapshot()
}

// State returns the current run state
func (m *Monitor) State() models.RunState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a consistent view of run state and records
func (m *Monitor) Snapshot() models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := models.Snapshot{
		RunState:   m.state,
		StartedAt:  m.startedAt,
		FinishedAt: m.finishedAt,
		Records:    m.store.Records(),
	}
	if m.current != nil {
		snap.RunID = m.current.id
	}
	return snap
}

// Subscribe returns a channel signalled whenever the snapshot may have changed
func (m *Monitor) Subscribe() (<-chan struct{}, func()) {
	return m.store.Subscribe()
}

// execute probes the records batch by batch. A batch is fully settled before
// the next one starts; cancellation is checked between batches.
func (m *Monitor) execute(r *run, records []models.TargetRecord) {
	defer close(r.done)

	logger := log.WithField("run", r.id)
	logger.Infof("Starting run with %d targets (batch size %d, %d probes each)",
		len(records), m.config.BatchSize, m.config.MaxProbes)

	for i, batch := range partition(records, m.config.BatchSize) {
		if r.ctx.Err() != nil {
			logger.Infof("Run cancelled before batch %d", i+1)
			break
		}

		for _, rec := range batch {
			m.store.Update(rec.ID, markProbing)
		}

		var wg sync.WaitGroup
		for _, rec := range batch {
			wg.Add(1)
			go func(rec models.TargetRecord) {
				defer wg.Done()
				m.probeWorker(r.ctx, rec)
			}(rec)
		}
		wg.Wait()
		logger.Debugf("Batch %d settled", i+1)
	}

	m.finish(r)
	logger.Infof("Run finished: %s", summarize(m.store.Records()))
}

func (m *Monitor) finish(r *run) {
	m.mu.Lock()
	if m.current == r {
		m.state = models.RunCompleted
		m.finishedAt = time.Now()
	}
	m.mu.Unlock()

	// the state change is not a record change, so wake subscribers explicitly
	m.store.Notify()
}

func markProbing(r models.TargetRecord) models.TargetRecord {
	if r.State.CanAdvanceTo(models.StateProbing) {
		r.State = models.StateProbing
	}
	return r
}

// partition splits records into contiguous groups of at most size
func partition(records []models.TargetRecord, size int) [][]models.TargetRecord {
	if size <= 0 {
		size = 1
	}
	var out [][]models.TargetRecord
	for i := 0; i < len(records); i += size {
		end := i + size
		if end > len(records) {
			end = len(records)
		}
		out = append(out, records[i:end])
	}
	return out
}
