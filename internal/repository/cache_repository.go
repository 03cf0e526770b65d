package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// CacheRepository stores JSON payloads in Redis, or in process memory when no
// client is configured.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger

	mu     sync.RWMutex
	memory map[string]memoryItem
	now    func() time.Time
}

type memoryItem struct {
	payload []byte
	expires time.Time
}

// NewCacheRepository constructs a cache repository. client may be nil.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{
		client: client,
		logger: logger,
		memory: make(map[string]memoryItem),
		now:    time.Now,
	}
}

// Get unmarshals the value stored under key into dest. Missing and expired
// keys yield ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.read(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

func (r *CacheRepository) read(ctx context.Context, key string) ([]byte, error) {
	if r.client == nil {
		r.mu.RLock()
		item, ok := r.memory[key]
		r.mu.RUnlock()
		if !ok || !r.now().Before(item.expires) {
			return nil, appErrors.ErrCacheMiss
		}
		return item.payload, nil
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set marshals value and stores it under key for ttl.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if r.client == nil {
		r.mu.Lock()
		r.memory[key] = memoryItem{payload: payload, expires: r.now().Add(ttl)}
		r.mu.Unlock()
		return nil
	}

	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern removes every key matching a glob pattern such as
// "timetable:dept-1:*".
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		for key := range r.memory {
			if matched, _ := path.Match(pattern, key); matched {
				delete(r.memory, key)
			}
		}
		return nil
	}

	var removed int
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", pattern, err)
	}

	r.logger.Debug("cache keys invalidated", zap.String("pattern", pattern), zap.Int("removed", removed))
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
