package trust

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/credentis/credentis/pkg/models"
)

// ErrCacheMiss is returned when no snapshot is cached for the key.
var ErrCacheMiss = errors.New("trust score cache miss")

// ScoreCache holds computed score snapshots between recomputations.
type ScoreCache interface {
	Get(ctx context.Context, key string) (*models.TrustScore, error)
	Set(ctx context.Context, key string, score *models.TrustScore, ttl time.Duration) error
}

// MemoryCache is the default single-process cache.
type MemoryCache struct {
	mu     sync.RWMutex
	scores map[string]*models.TrustScore
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{scores: make(map[string]*models.TrustScore)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*models.TrustScore, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	score, ok := c.scores[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	return score, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, score *models.TrustScore, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scores[key] = score

	return nil
}

// RedisCache shares score snapshots across processes. Staleness is still
// decided by the engine from LastComputed; the TTL only bounds storage.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "credentis:trust:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.TrustScore, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}

	if err != nil {
		return nil, err
	}

	var score models.TrustScore
	if err := json.Unmarshal(raw, &score); err != nil {
		return nil, err
	}

	return &score, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, score *models.TrustScore, ttl time.Duration) error {
	raw, err := json.Marshal(score)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.prefix+key, raw, ttl).Err()
}
