package document

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDelay coalesces bursts of file events (editors often write a
// file in several steps).
const DefaultWatchDelay = 150 * time.Millisecond

// Update is delivered by [Watcher] after the watched file changed.
// Exactly one of Value and Err is set.
type Update struct {
	Value *Value
	Err   error
}

// Watcher re-imports a document file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors replacing the file through a rename are still noticed.
type Watcher struct {
	path    string
	delay   time.Duration
	logger  *log.Logger
	watcher *fsnotify.Watcher
	updates chan Update
}

// NewWatcher starts watching path. Call [Watcher.Run] to process events and
// [Watcher.Close] when done.
func NewWatcher(path string, delay time.Duration, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	if delay <= 0 {
		delay = DefaultWatchDelay
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	return &Watcher{
		path:    abs,
		delay:   delay,
		logger:  logger,
		watcher: fw,
		updates: make(chan Update, 1),
	}, nil
}

// Updates returns the channel of re-imported documents. It is closed when
// Run returns.
func (w *Watcher) Updates() <-chan Update { return w.updates }

// Run processes file events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.updates)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("document changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			v, err := ImportFile(w.path)
			if err != nil {
				w.logger.Warn("reload failed", "file", w.path, "error", err)
			}
			select {
			case w.updates <- Update{Value: v, Err: err}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
