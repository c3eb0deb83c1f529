package profiles

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/pricing-profiles-backend/pkg/redis"
)

const saveLockScope = "profile_save"

// ReleaseFunc frees a lock obtained from a SaveLocker.
type ReleaseFunc func(ctx context.Context) error

// SaveLocker serialises saves of the same profile.
type SaveLocker interface {
	TryLock(ctx context.Context, key string) (ReleaseFunc, bool, error)
}

type lockClient interface {
	redis.LockStore
	LockKey(scope, resource string) string
}

// RedisSaveLocker holds a SETNX lock per profile for the configured TTL.
type RedisSaveLocker struct {
	client lockClient
	ttl    time.Duration
}

// NewRedisSaveLocker builds a locker backed by client.
func NewRedisSaveLocker(client lockClient, ttl time.Duration) *RedisSaveLocker {
	return &RedisSaveLocker{client: client, ttl: ttl}
}

func (l *RedisSaveLocker) TryLock(ctx context.Context, key string) (ReleaseFunc, bool, error) {
	held, ok, err := redis.TryLock(ctx, l.client, l.client.LockKey(saveLockScope, key), l.ttl)
	if err != nil || !ok {
		return nil, ok, err
	}
	return held.Release, true, nil
}

// LocalSaveLocker is the in-process fallback used when Redis is not configured.
type LocalSaveLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalSaveLocker() *LocalSaveLocker {
	return &LocalSaveLocker{held: make(map[string]struct{})}
}

func (l *LocalSaveLocker) TryLock(_ context.Context, key string) (ReleaseFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[key]; taken {
		return nil, false, nil
	}
	l.held[key] = struct{}{}
	return func(context.Context) error {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
		return nil
	}, true, nil
}
