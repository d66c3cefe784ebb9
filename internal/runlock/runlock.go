// Package runlock enforces single-instance execution so two concurrent runs
// cannot race moves over the same output tree.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"snapsort/internal/config"
)

// Lock holds the advisory file lock for the duration of a run.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the run lock, failing fast when another run holds it.
func Acquire(cfg *config.Config) (*Lock, error) {
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := filepath.Join(cfg.Paths.LogDir, "snapsort.lock")
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another snapsort run is active (lock held at %s)", path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }
