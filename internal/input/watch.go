package input

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	fsnotify "gopkg.in/fsnotify.v1"
)

const settleDelay = 100 * time.Millisecond

// Watch re-reads the targets file whenever it changes and hands the parsed
// list to fn. It blocks until ctx is done.
//
// The parent directory is watched so files replaced by rename (as most
// editors do) keep being tracked.
func Watch(ctx context.Context, path string, fn func([]string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	name := filepath.Base(abs)
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("could not watch %s: %w", filepath.Dir(abs), err)
	}

	// bursts of events from a single save collapse into one reload
	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle.Reset(settleDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("Targets watcher error: %v", err)

		case <-settle.C:
			targets, err := ReadFile(abs)
			if err != nil {
				log.Warnln(err)
				continue
			}
			log.WithFields(log.Fields{"file": abs, "targets": len(targets)}).Info("Targets file changed")
			fn(targets)
		}
	}
}
