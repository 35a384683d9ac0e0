package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay lets a writer finish before the file is decoded.
const settleDelay = 200 * time.Millisecond

// Watch re-processes a path each time it is written or replaced, until ctx
// is cancelled. Directories are watched rather than files so that editors
// saving through a rename are still seen.
func (r *Runner) Watch(ctx context.Context, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	r.logger.Info("Batch", "watching", map[string]interface{}{"files": len(targets)})

	d := newDebouncer(settleDelay, ctx.Done())
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || !targets[name] {
				continue
			}
			d.trigger(name)

		case name := <-d.ready:
			d.fired(name)
			r.ProcessFile(ctx, name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("Batch", err, map[string]interface{}{"stage": "watch"})
		}
	}
}

// debouncer delivers a name on ready once no trigger for it has arrived for
// delay. It is not safe for concurrent use; only the timer callbacks run on
// other goroutines.
type debouncer struct {
	delay  time.Duration
	ready  chan string
	done   <-chan struct{}
	timers map[string]*time.Timer
}

func newDebouncer(delay time.Duration, done <-chan struct{}) *debouncer {
	return &debouncer{
		delay:  delay,
		ready:  make(chan string),
		done:   done,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) trigger(name string) {
	if t, ok := d.timers[name]; ok {
		// A timer that already fired has a delivery pending; it will see
		// the newer content when received.
		if t.Stop() {
			t.Reset(d.delay)
		}
		return
	}
	d.timers[name] = time.AfterFunc(d.delay, func() {
		select {
		case d.ready <- name:
		case <-d.done:
		}
	})
}

// fired must be called after receiving name from ready.
func (d *debouncer) fired(name string) {
	delete(d.timers, name)
}

func (d *debouncer) stop() {
	for _, t := range d.timers {
		t.Stop()
	}
}
