package lock

import (
	"context"
	"fmt"
)

// MemoryLocker is an in-process Locker. It serialises goroutines of one
// process only.
type MemoryLocker struct {
	ch chan struct{}
}

// NewMemoryLocker creates a new in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{ch: make(chan struct{}, 1)}
}

// Lock blocks until the lock is free or ctx is done.
func (l *MemoryLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.ch <- struct{}{}:
		return func() { <-l.ch }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
	}
}

var _ Locker = (*MemoryLocker)(nil)
