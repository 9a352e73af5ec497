package store

import (
	"sync"

	"latencyrank/internal/models"
)

// Store holds one record per target of the current run. All mutation goes
// through Reset and Update; each call is one indivisible step.
type Store struct {
	mu      sync.RWMutex
	order   []string
	records map[string]models.TargetRecord

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan struct{}
}

// New creates an empty store
func New() *Store {
	return &Store{
		records: make(map[string]models.TargetRecord),
		subs:    make(map[int]chan struct{}),
	}
}

// Reset replaces the whole record set, keeping the given order
func (s *Store) Reset(records []models.TargetRecord) {
	order := make([]string, 0, len(records))
	byID := make(map[string]models.TargetRecord, len(records))
	for _, r := range records {
		if _, dup := byID[r.ID]; !dup {
			order = append(order, r.ID)
		}
		byID[r.ID] = r.Clone()
	}

	s.mu.Lock()
	s.order = order
	s.records = byID
	s.mu.Unlock()

	s.Notify()
}

// Update applies fn to the record with the given id and stores the result.
// An unknown id is ignored, so stragglers from a replaced run are harmless.
func (s *Store) Update(id string, fn func(models.TargetRecord) models.TargetRecord) {
	s.mu.Lock()
	current, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	next := fn(current.Clone())
	next.ID = id
	s.records[id] = next
	s.mu.Unlock()

	s.Notify()
}

// Get returns a copy of one record
func (s *Store) Get(id string) (models.TargetRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return models.TargetRecord{}, false
	}
	return r.Clone(), true
}

// Records returns copies of all records in run order
func (s *Store) Records() []models.TargetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TargetRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out
}

// Len returns the number of records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Subscribe returns a channel signalled after every change. Signals are
// coalesced: a slow reader sees at most one pending notification.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Notify wakes subscribers without changing any record
func (s *Store) Notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
