package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rbalint/candidate-outreach/internal/model"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// MappingKey derives a cache key from the sheet's header line. Two
// sheets with the same headers map the same way.
func MappingKey(headers []string) string {
	sum := sha256.Sum256([]byte(strings.Join(headers, "\x1f")))
	return "mapping:" + hex.EncodeToString(sum[:])
}

func (c *RedisCache) GetMapping(ctx context.Context, key string) (*model.ColumnMapping, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var m model.ColumnMapping
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *RedisCache) StoreMapping(ctx context.Context, key string, m model.ColumnMapping) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
