package lock

import (
	"fmt"
	"log"
	"path/filepath"
)

// Config selects and configures a Locker.
type Config struct {
	Type  string
	Dir   string
	Redis RedisLockerConfig
}

// New builds the Locker named by cfg.Type. An unreachable Redis falls back to
// the in-process locker. The returned close func is never nil.
func New(cfg Config) (Locker, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Type {
	case "", TypeMemory:
		return NewMemoryLocker(), noop, nil
	case TypeFile:
		return NewFileLocker(filepath.Join(cfg.Dir, "inventory.lock")), noop, nil
	case TypeRedis:
		l, err := NewRedisLocker(cfg.Redis)
		if err != nil {
			log.Printf("Warning: Redis lock unavailable (%v), using in-process lock", err)
			return NewMemoryLocker(), noop, nil
		}
		return l, l.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown lock type %q", cfg.Type)
	}
}
