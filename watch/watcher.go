// Package watch reports changes to a single file. It uses fsnotify where
// available and falls back to polling the file's modification time.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("keycalc.watch")

type Watcher struct {
	path         string
	onChange     func(path string)
	debounce     time.Duration
	pollInterval time.Duration
	polling      bool
}

type Option func(*Watcher)

// WithDebounce sets how long to wait for a burst of events to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithPolling disables fsnotify.
func WithPolling() Option {
	return func(w *Watcher) {
		w.polling = true
	}
}

func New(path string, onChange func(path string), opts ...Option) *Watcher {
	w := &Watcher{
		path:         filepath.Clean(path),
		onChange:     onChange,
		debounce:     100 * time.Millisecond,
		pollInterval: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is cancelled, calling onChange after each change.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			return w.runEvents(ctx, fsw)
		}
		log.Warningf("fsnotify unavailable, polling %s: %v", w.path, err)
	}
	return w.runPoll(ctx)
}

func (w *Watcher) runEvents(ctx context.Context, fsw *fsnotify.Watcher) error {
	defer fsw.Close()

	// Editors often replace files by renaming, so watch the directory.
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Infof("watching %s", w.path)

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
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debugf("event %s", event)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch %s: %v", w.path, err)
		case <-fire:
			fire = nil
			w.onChange(w.path)
		}
	}
}

type fileState struct {
	modTime time.Time
	size    int64
	exists  bool
}

func (w *Watcher) stat() fileState {
	info, err := os.Stat(w.path)
	if err != nil {
		return fileState{}
	}
	return fileState{modTime: info.ModTime(), size: info.Size(), exists: true}
}

func (w *Watcher) runPoll(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	last := w.stat()
	log.Infof("polling %s every %s", w.path, w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			cur := w.stat()
			if cur == last {
				continue
			}
			last = cur
			if cur.exists {
				w.onChange(w.path)
			}
		}
	}
}
