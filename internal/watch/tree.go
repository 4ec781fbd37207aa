package watch

import (
	"os"
	"path/filepath"
)

// addTreeRecursively registers every non-ignored directory under root
// with the underlying fsnotify watcher. fsnotify only watches the
// directories it's told about, not their descendants, so a new
// subdirectory must be added explicitly when it's created (handled in
// maybeWatchNewDir).
func (w *Watcher) addTreeRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.log.Warnf("error walking %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(w.relPath(path)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warnf("failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
