package infra

import (
	"context"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// ArticuloLocker serializes stock mutations per article. In-process requests
// share a keyed mutex; with a Redis client it additionally takes a distributed
// lock so multiple backend instances never race the same article.
//
// A nil Redis client degrades to the in-process mutex alone (single instance
// deployments and unit tests).
type ArticuloLocker struct {
	mu     sync.Mutex
	locks  map[uuid.UUID]*sync.Mutex
	client *redislock.Client
}

func NewArticuloLocker(rdb *redis.Client) *ArticuloLocker {
	l := &ArticuloLocker{locks: make(map[uuid.UUID]*sync.Mutex)}
	if rdb != nil {
		l.client = redislock.New(rdb)
	}
	return l
}

func (l *ArticuloLocker) local(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// Lock acquires the per-article lock and returns its release function.
func (l *ArticuloLocker) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	local := l.local(id)
	local.Lock()

	if l.client == nil {
		return local.Unlock, nil
	}

	dist, err := l.client.Obtain(ctx, "lock:articulo:"+id.String(), 10*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
	})
	if err != nil {
		local.Unlock()
		return nil, err
	}
	return func() {
		_ = dist.Release(context.Background())
		local.Unlock()
	}, nil
}
