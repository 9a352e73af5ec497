package store

import (
	"sync"
	"testing"

	"latencyrank/internal/models"
)

func seed(s *Store, addresses ...string) []models.TargetRecord {
	records := make([]models.TargetRecord, len(addresses))
	for i, a := range addresses {
		records[i] = models.NewTargetRecord(a)
	}
	s.Reset(records)
	return records
}

func TestResetKeepsOrder(t *testing.T) {
	s := New()
	records := seed(s, "c", "a", "b", "a")

	got := s.Records()
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i := range records {
		if got[i].ID != records[i].ID || got[i].Address != records[i].Address {
			t.Errorf("record %d = %s/%s, want %s/%s", i, got[i].ID, got[i].Address, records[i].ID, records[i].Address)
		}
	}
}

func TestResetDiscardsPreviousRun(t *testing.T) {
	s := New()
	old := seed(s, "a", "b")
	seed(s, "c")

	if s.Len() != 1 {
		t.Fatalf("expected 1 record after reset, got %d", s.Len())
	}
	if _, ok := s.Get(old[0].ID); ok {
		t.Error("record from previous run still present")
	}
}

func TestUpdateTouchesOnlyMatchingRecord(t *testing.T) {
	s := New()
	records := seed(s, "a", "b")

	s.Update(records[1].ID, func(r models.TargetRecord) models.TargetRecord {
		r.State = models.StateProbing
		r.Progress = 20
		return r
	})

	a, _ := s.Get(records[0].ID)
	b, _ := s.Get(records[1].ID)
	if a.State != models.StateIdle || a.Progress != 0 {
		t.Errorf("non-matching record modified: %+v", a)
	}
	if b.State != models.StateProbing || b.Progress != 20 {
		t.Errorf("matching record not updated: %+v", b)
	}
}

func TestUpdateMissingIDIsNoop(t *testing.T) {
	s := New()
	seed(s, "a")

	called := false
	s.Update("does-not-exist", func(r models.TargetRecord) models.TargetRecord {
		called = true
		return r
	})
	if called {
		t.Error("update function called for unknown id")
	}
	if s.Len() != 1 {
		t.Errorf("unexpected record count %d", s.Len())
	}
}

func TestUpdateCannotChangeIdentity(t *testing.T) {
	s := New()
	records := seed(s, "a")

	s.Update(records[0].ID, func(r models.TargetRecord) models.TargetRecord {
		r.ID = "hijacked"
		return r
	})
	if _, ok := s.Get(records[0].ID); !ok {
		t.Fatal("record lost its identity")
	}
}

func TestConcurrentUpdatesAreAtomic(t *testing.T) {
	s := New()
	records := seed(s, "a")
	id := records[0].ID

	const writers, perWriter = 8, 200
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Update(id, func(r models.TargetRecord) models.TargetRecord {
					r.Probes = append(r.Probes, models.ProbeOutcome{Result: models.ProbeSuccess, Duration: 1})
					return r
				})
			}
		}()
	}
	wg.Wait()

	r, _ := s.Get(id)
	if len(r.Probes) != writers*perWriter {
		t.Errorf("lost updates: got %d probes, want %d", len(r.Probes), writers*perWriter)
	}
}

func TestReadersGetCopies(t *testing.T) {
	s := New()
	records := seed(s, "a")
	s.Update(records[0].ID, func(r models.TargetRecord) models.TargetRecord {
		r.Probes = append(r.Probes, models.ProbeOutcome{Result: models.ProbeSuccess, Duration: 5})
		return r
	})

	view := s.Records()
	view[0].Probes[0].Duration = 500

	r, _ := s.Get(records[0].ID)
	if r.Probes[0].Duration != 5 {
		t.Errorf("reader mutation leaked into store: %v", r.Probes[0].Duration)
	}
}

func TestSubscribeCoalesces(t *testing.T) {
	s := New()
	ch, cancel := s.Subscribe()
	defer cancel()

	records := seed(s, "a")
	for i := 0; i < 5; i++ {
		s.Update(records[0].ID, func(r models.TargetRecord) models.TargetRecord { return r })
	}

	select {
	case <-ch:
	default:
		t.Fatal("expected a pending notification")
	}
	select {
	case <-ch:
		t.Fatal("notifications were not coalesced")
	default:
	}

	cancel()
	cancel()
	s.Update(records[0].ID, func(r models.TargetRecord) models.TargetRecord { return r })
	select {
	case <-ch:
		t.Fatal("notification after unsubscribe")
	default:
	}
}
