// Package watch implements the optional live-update feature
// supplemented into this module (spec's planner hints are normally
// triggered by an explicit index_codebase call; this package feeds
// the same trigger from filesystem events instead). Grounded on the
// teacher's internal/indexer/watcher.go: fsnotify plus a debounce
// timer, generalized so the watcher calls a caller-supplied trigger
// function instead of reaching into a concrete indexer type.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cortexlocal/codeintel/internal/logging"
)

// debounceWindow batches a burst of filesystem events (a save, a
// rename, a git checkout touching many files) into one reindex.
const debounceWindow = 500 * time.Millisecond

// ShouldIgnore reports whether a relative path should be excluded from
// both watching and triggering, so the watcher and the discovery
// layer never disagree about what's indexable.
type ShouldIgnore func(relPath string) bool

// Watcher watches a project tree and calls Trigger, debounced, after
// a batch of relevant filesystem events. It never calls Trigger
// concurrently with itself: run's event loop invokes it inline, so
// an overlapping reindex can only be attempted after the prior one
// has returned. This is off by default and opt-in per spec's ambient
// watcher note.
type Watcher struct {
	rootDir      string
	shouldIgnore ShouldIgnore
	trigger      func(ctx context.Context, changed []string)
	debounce     time.Duration

	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	log      *logging.Logger
}

// New creates a Watcher rooted at rootDir. trigger is called with the
// set of changed relative paths after each debounce window elapses.
func New(rootDir string, shouldIgnore ShouldIgnore, trigger func(ctx context.Context, changed []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		rootDir:      rootDir,
		shouldIgnore: shouldIgnore,
		trigger:      trigger,
		debounce:     debounceWindow,
		fsw:          fsw,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		log:          logging.New("watch"),
	}

	if err := w.addTreeRecursively(rootDir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start runs the watcher's event loop in a background goroutine.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop shuts the watcher down and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.fsw.Close()
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	changed := make(map[string]bool)

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}

			relPath := w.relPath(event.Name)
			changed[relPath] = true

			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchNewDir(event.Name)
			}

			stopTimer()
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			if len(changed) == 0 {
				continue
			}
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			changed = make(map[string]bool)
			w.trigger(ctx, paths)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warnf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return !w.shouldIgnore(w.relPath(event.Name))
}

func (w *Watcher) relPath(absPath string) string {
	rel, err := filepath.Rel(w.rootDir, absPath)
	if err != nil {
		return absPath
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) maybeWatchNewDir(absPath string) {
	if w.shouldIgnore(w.relPath(absPath)) {
		return
	}
	if err := w.addTreeRecursively(absPath); err != nil {
		w.log.Warnf("failed to watch new directory %s: %v", absPath, err)
	}
}
