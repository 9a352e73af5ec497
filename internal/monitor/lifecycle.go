package monitor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// run is the cancellation handle of one run. done is closed once the run
// goroutine has returned and will no longer touch the store.
type run struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newRun() *run {
	ctx, cancel := context.WithCancel(context.Background())
	return &run{
		id:     uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// stop cancels the run and waits for the acknowledgement
func (r *run) stop() {
	r.cancel()
	<-r.done
}

// finished reports whether the run goroutine has returned
func (r *run) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// sleep pauses for d unless ctx is cancelled first. It reports whether the
// full delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
