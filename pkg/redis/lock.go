package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Second

// LockStore is the subset of Client a lock needs.
type LockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// HeldLock is a lock this process currently owns. The key expires on its own
// after the ttl if Release is never called.
type HeldLock struct {
	store LockStore
	key   string
	token string
}

// TryLock claims key with a random owner token. ok is false when another
// owner holds it. A non-positive ttl means 30s.
func TryLock(ctx context.Context, store LockStore, key string, ttl time.Duration) (lock *HeldLock, ok bool, err error) {
	switch {
	case store == nil:
		return nil, false, errors.New("redis store required for lock")
	case key == "":
		return nil, false, errors.New("lock key is required")
	case ttl <= 0:
		ttl = defaultLockTTL
	}

	token := uuid.NewString()
	ok, err = store.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, false, fmt.Errorf("claim lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &HeldLock{store: store, key: key, token: token}, true, nil
}

// Release deletes the key if it still carries this lock's token. A lock that
// expired and was claimed by someone else is left alone. Calling Release more
// than once is harmless.
func (l *HeldLock) Release(ctx context.Context) error {
	if l == nil || l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""

	current, err := l.store.Get(ctx, l.key)
	switch {
	case errors.Is(err, redis.Nil):
		return nil
	case err != nil:
		return fmt.Errorf("read lock owner %s: %w", l.key, err)
	case current != token:
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}
