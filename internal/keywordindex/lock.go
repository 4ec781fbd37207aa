package keywordindex

import (
	"fmt"

	"github.com/gofrs/flock"
)

// WithWriteLock runs fn while holding an exclusive file lock on
// path+".lock", so only one process instance at a time runs a
// rebuild-and-save sequence against the same keyword.json. It does not
// wait: if another holder has the lock, it returns an error at once
// without running fn.
func WithWriteLock(path string, fn func() error) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire keyword index lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("keyword index is locked by another process")
	}
	defer lock.Unlock()

	return fn()
}
