package monitor

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"latencyrank/internal/models"
)

// probeWorker probes one target up to MaxProbes times, publishing one store
// update per attempt. It stops early on the first failure or on cancellation.
func (m *Monitor) probeWorker(ctx context.Context, target models.TargetRecord) {
	logger := log.WithField("target", target.Address)
	max := m.config.MaxProbes
	completed := 0

	for attempt := 1; attempt <= max; attempt++ {
		if ctx.Err() != nil {
			m.stopCancelled(target.ID)
			logger.Debugf("Stopped after %d probes: run cancelled", completed)
			return
		}

		duration, err := m.prober.Probe(ctx, target.Address, m.config.ProbeTimeout)
		if err != nil {
			if ctx.Err() != nil {
				// aborted by cancellation, not a failure of the target
				m.stopCancelled(target.ID)
				logger.Debugf("Probe %d/%d aborted: run cancelled", attempt, max)
				return
			}

			outcome := models.NewFailure(duration, time.Now(), err)
			m.store.Update(target.ID, recordFailure(outcome))
			m.observe(target.Address, outcome)
			logger.Warnf("Probe %d/%d failed: %v", attempt, max, err)
			return
		}

		completed++
		outcome := models.NewSuccess(duration, time.Now())
		final := attempt == max
		m.store.Update(target.ID, recordSuccess(outcome, float64(completed)/float64(max)*100, final))
		m.observe(target.Address, outcome)
		logger.Debugf("Probe %d/%d: %.1f ms", attempt, max, outcome.Duration)

		if final {
			return
		}
		// an interrupted delay is picked up by the check at the top of the loop
		sleep(ctx, m.config.ProbeDelay)
	}
}

func (m *Monitor) observe(address string, outcome models.ProbeOutcome) {
	for _, o := range m.observers {
		o.ObserveProbe(address, outcome)
	}
}

// stopCancelled closes out a record whose probing was cut short by
// cancellation. The state is left as it was.
func (m *Monitor) stopCancelled(id string) {
	m.store.Update(id, func(r models.TargetRecord) models.TargetRecord {
		r.Progress = 100
		return r
	})
}

func recordSuccess(outcome models.ProbeOutcome, progress float64, final bool) func(models.TargetRecord) models.TargetRecord {
	return func(r models.TargetRecord) models.TargetRecord {
		r.Probes = append(r.Probes, outcome)
		r.ApplyStats(models.Summarize(r.Probes))
		if progress > r.Progress {
			r.Progress = progress
		}

		next := models.StateProbing
		if final {
			next = models.StateCompleted
		}
		if r.State.CanAdvanceTo(next) {
			r.State = next
		}
		return r
	}
}

func recordFailure(outcome models.ProbeOutcome) func(models.TargetRecord) models.TargetRecord {
	return func(r models.TargetRecord) models.TargetRecord {
		r.Probes = append(r.Probes, outcome)
		r.ApplyStats(models.Summarize(r.Probes))
		r.Progress = 100
		if r.State.CanAdvanceTo(models.StateFailed) {
			r.State = models.StateFailed
		}
		return r
	}
}

// summarize describes final record states for the run log
func summarize(records []models.TargetRecord) string {
	counts := make(map[models.TargetState]int)
	for _, r := range records {
		counts[r.State]++
	}
	return fmt.Sprintf("%d targets, %d completed, %d failed, %d unfinished",
		len(records),
		counts[models.StateCompleted],
		counts[models.StateFailed],
		counts[models.StateIdle]+counts[models.StateProbing])
}
