package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exercise runs n goroutines that each increment a shared counter inside
// the lock with a deliberate read-yield-write gap.
func exercise(t *testing.T, l Locker, n int) int {
	t.Helper()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()
			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	return counter
}

func TestMemoryLocker_Serialises(t *testing.T) {
	require.Equal(t, 20, exercise(t, NewMemoryLocker(), 20))
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	l := NewMemoryLocker()
	unlock, err := l.Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLockTimeout))
}

func TestFileLocker_Serialises(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.lock")
	require.Equal(t, 10, exercise(t, NewFileLocker(path), 10))

	_, err := os.Stat(path)
	require.NoError(t, err, "lock file should exist after use")
}

func TestFileLocker_TwoLockersSameFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.lock")
	a := NewFileLocker(path)
	b := NewFileLocker(path)

	unlock, err := a.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = b.Lock(ctx)
	require.ErrorIs(t, err, ErrLockTimeout)

	unlock()

	unlockB, err := b.Lock(context.Background())
	require.NoError(t, err)
	unlockB()
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	l, closeFn, err := New(Config{Type: TypeMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryLocker{}, l)
	assert.NoError(t, closeFn())

	l, _, err = New(Config{Type: TypeFile, Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileLocker{}, l)

	_, _, err = New(Config{Type: "zookeeper"})
	assert.Error(t, err)
}

func TestNew_RedisUnreachableFallsBack(t *testing.T) {
	l, closeFn, err := New(Config{Type: TypeRedis, Redis: RedisLockerConfig{Addr: "127.0.0.1:1"}})
	require.NoError(t, err)
	assert.IsType(t, &MemoryLocker{}, l)
	assert.NoError(t, closeFn())
}

func TestRedisLocker_Serialises(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	l, err := NewRedisLocker(RedisLockerConfig{Addr: addr, Key: "inventory:test:lock"})
	require.NoError(t, err)
	defer l.Close()

	require.Equal(t, 10, exercise(t, l, 10))
}
