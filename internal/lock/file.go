package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// FileLocker takes an advisory flock(2) on a lock file, so several processes
// sharing one cache directory on one host are serialised too.
// flock is per open file description, so an in-process mutex orders the
// goroutines of this process before they touch the file.
type FileLocker struct {
	path string
	mu   *MemoryLocker
}

// NewFileLocker creates a locker backed by the file at path. The file is
// created on first use and never removed.
func NewFileLocker(path string) *FileLocker {
	return &FileLocker{path: path, mu: NewMemoryLocker()}
}

// Lock acquires the in-process lock, then polls for the exclusive flock.
func (l *FileLocker) Lock(ctx context.Context) (func(), error) {
	release, err := l.mu.Lock(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			f.Close()
			release()
			return nil, fmt.Errorf("failed to flock %s: %w", l.path, err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			f.Close()
			release()
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		}
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		release()
	}, nil
}

var _ Locker = (*FileLocker)(nil)
