// Package lock provides the mutual-exclusion scopes that guard the
// inventory load-mutate-save cycle.
package lock

import (
	"context"
	"time"
)

// Locker defines a scoped lock. The returned unlock func must be called
// exactly once, on every exit path.
type Locker interface {
	Lock(ctx context.Context) (func(), error)
}

// Lock types accepted by New.
const (
	TypeMemory = "memory"
	TypeFile   = "file"
	TypeRedis  = "redis"
)

// pollInterval is how often the file and redis lockers retry a busy lock.
const pollInterval = 25 * time.Millisecond

// LockError string type for lock errors.
type LockError string

func (e LockError) Error() string { return string(e) }

const (
	// ErrLockTimeout indicates the context ended before the lock was acquired.
	ErrLockTimeout LockError = "lock wait cancelled"
)
