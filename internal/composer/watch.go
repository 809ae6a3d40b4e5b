package composer

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions configures automatic reload. Paths lists the file
// sources to watch directly via fsnotify; PollInterval is the
// fallback cadence used when fsnotify can't watch a given origin
// (remote/env sources, or a platform without inotify support).
// Grounded on warthog618/config's WatchedLoader pattern, generalized
// from a single watched loader to the composer's whole source list.
type WatchOptions struct {
	Paths        []string
	PollInterval time.Duration
}

// DefaultWatchOptions returns the spec's ~1s default poll interval.
func DefaultWatchOptions(paths []string) WatchOptions {
	return WatchOptions{Paths: paths, PollInterval: time.Second}
}

// Watch starts automatic reload: an fsnotify watcher on every path in
// opts.Paths, plus a polling fallback ticking at opts.PollInterval
// that always re-checks fingerprints regardless of fsnotify's
// availability (covering remote/env sources and any fsnotify setup
// failure). It returns a stop function; calling it is safe more than
// once. Watch never blocks readers — every tick/event just calls the
// composer's own Reload, whose swap is already the brief, exclusive
// step.
func (c *Composer) Watch(ctx context.Context, opts WatchOptions) (stop func(), err error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}

	watchCtx, cancel := context.WithCancel(ctx)

	watcher, watchErr := fsnotify.NewWatcher()
	if watchErr == nil {
		for _, p := range opts.Paths {
			if addErr := watcher.Add(p); addErr != nil {
				c.logger.Warn("fsnotify failed to watch path, relying on polling fallback", "path", p, "error", addErr)
			}
		}
		go c.runFsnotifyLoop(watchCtx, watcher)
	} else {
		c.logger.Warn("fsnotify unavailable, relying solely on polling fallback", "error", watchErr)
		watcher = nil
	}

	go c.runPollLoop(watchCtx, opts.PollInterval)

	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		if watcher != nil {
			_ = watcher.Close()
		}
	}, nil
}

func (c *Composer) runFsnotifyLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				if err := c.Reload(ctx); err != nil {
					c.logger.Error("automatic reload triggered by fsnotify failed", "error", err)
				}
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("fsnotify watcher error", "error", watchErr)
		}
	}
}

func (c *Composer) runPollLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.fingerprintsChanged() {
				if err := c.Reload(ctx); err != nil {
					c.logger.Error("automatic reload triggered by poll failed", "error", err)
				}
			}
		}
	}
}

// fingerprintsChanged reports whether any source's current Fingerprint
// differs from the one recorded on its own metadata at last load,
// letting the poll loop skip a reload (and therefore a swap) when
// nothing has actually changed.
func (c *Composer) fingerprintsChanged() bool {
	c.sourcesMu.Lock()
	defer c.sourcesMu.Unlock()
	for _, s := range c.sources {
		if s.Fingerprint() != s.Metadata().LastFingerprint {
			return true
		}
	}
	return false
}
