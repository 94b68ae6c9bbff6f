package lock

import (
	"context"
	"fmt"
	"log"
	"time"

	"inventory-rest-api/pkg/uid"

	"github.com/redis/go-redis/v9"
)

// Redis lock defaults
const (
	DefaultRedisKey = "inventory:store:lock"
	DefaultRedisTTL = 30 * time.Second
)

var releaseIfOwnerScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker holds a single Redis key with SET NX PX. The key expires after
// TTL so a crashed holder cannot wedge the store.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisLockerConfig holds configuration for the Redis locker.
type RedisLockerConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

// NewRedisLocker connects to Redis and returns a locker.
func NewRedisLocker(cfg RedisLockerConfig) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	l := NewRedisLockerWithClient(client, cfg.Key, cfg.TTL)
	log.Printf("[RedisLocker] Started - DB:%d, key:%s, ttl:%v", cfg.DB, l.key, l.ttl)
	return l, nil
}

// NewRedisLockerWithClient wraps an existing client.
func NewRedisLockerWithClient(client *redis.Client, key string, ttl time.Duration) *RedisLocker {
	if key == "" {
		key = DefaultRedisKey
	}
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisLocker{client: client, key: key, ttl: ttl}
}

// Lock polls SET NX until it wins or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	token := uid.New()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
			}
			return nil, fmt.Errorf("failed to acquire redis lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		}
	}

	return func() {
		// The caller's ctx may already be cancelled; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseIfOwnerScript.Run(releaseCtx, l.client, []string{l.key}, token).Err(); err != nil {
			log.Printf("[RedisLocker] Error releasing %s: %v", l.key, err)
		}
	}, nil
}

// Close closes the Redis client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

var _ Locker = (*RedisLocker)(nil)
