package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// Lock is a held advisory lock on one cache path.
type Lock struct {
	fl *flock.Flock
}

// LockPath returns the lock file guarding a cache path.
func LockPath(cachePath string) string {
	return cachePath + ".lock"
}

// Lock blocks until it holds the lock for a package version, ctx is done,
// or timeout elapses. A zero timeout waits for ctx alone.
func (s *Store) Lock(ctx context.Context, name, version string, timeout time.Duration) (*Lock, error) {
	path := LockPath(s.PathFor(name, version))
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return nil, &UnwritableError{Path: filepath.Dir(path), Err: err}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("locking %s: lock not acquired", path)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. The lock file itself is left in place.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
