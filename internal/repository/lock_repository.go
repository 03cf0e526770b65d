package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// LockRepository hands out short lived exclusive locks. With a Redis client the
// lock is shared across instances; without one it only guards this process.
type LockRepository struct {
	client *redis.Client

	mu    sync.Mutex
	local map[string]localLock
	now   func() time.Time
}

type localLock struct {
	token   string
	expires time.Time
}

// NewLockRepository constructs a LockRepository. client may be nil.
func NewLockRepository(client *redis.Client) *LockRepository {
	return &LockRepository{
		client: client,
		local:  make(map[string]localLock),
		now:    time.Now,
	}
}

// Acquire tries to take key for ttl. It returns the owner token and false when
// another holder has it.
func (r *LockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	if r.client == nil {
		return token, r.acquireLocal(key, token, ttl), nil
	}

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis acquire lock %s: %w", key, err)
	}
	return token, ok, nil
}

// Release frees key if token still owns it.
func (r *LockRepository) Release(ctx context.Context, key, token string) error {
	if r.client == nil {
		r.releaseLocal(key, token)
		return nil
	}
	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("redis release lock %s: %w", key, err)
	}
	return nil
}

func (r *LockRepository) acquireLocal(key, token string, ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if held, ok := r.local[key]; ok && now.Before(held.expires) {
		return false
	}
	r.local[key] = localLock{token: token, expires: now.Add(ttl)}
	return true
}

func (r *LockRepository) releaseLocal(key, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if held, ok := r.local[key]; ok && held.token == token {
		delete(r.local, key)
	}
}
