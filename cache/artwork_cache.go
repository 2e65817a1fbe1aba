package cache

import (
	"context"
	"errors"
	"time"

	"shuttlecast/logger"

	"github.com/redis/go-redis/v9"
)

const artworkKeyPrefix = "shuttlecast:artwork:"

// ArtworkSource loads artwork bytes by object key.
type ArtworkSource interface {
	GetArtwork(ctx context.Context, key string) ([]byte, error)
}

// ArtworkCache 是位于 ArtworkSource 之前的读穿透缓存。
// Redis 故障只会降级为直接读源，不会导致请求失败。
type ArtworkCache struct {
	client *redis.Client
	source ArtworkSource
	ttl    time.Duration
}

// NewArtworkCache 创建封面缓存
func NewArtworkCache(client *redis.Client, source ArtworkSource, ttl time.Duration) *ArtworkCache {
	return &ArtworkCache{client: client, source: source, ttl: ttl}
}

// GetArtwork 先查 Redis，未命中时从源读取并回填
func (c *ArtworkCache) GetArtwork(ctx context.Context, key string) ([]byte, error) {
	cacheKey := artworkKeyPrefix + key

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		logger.Debug("封面缓存命中", logger.String("key", key), logger.Int("dataSize", len(data)))
		return data, nil
	case errors.Is(err, redis.Nil):
		logger.Debug("封面缓存未命中", logger.String("key", key))
	default:
		logger.Warn("读取封面缓存失败，直接读取源", logger.String("key", key), logger.ErrorField(err))
	}

	data, err = c.source.GetArtwork(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		logger.Warn("写入封面缓存失败",
			logger.String("key", key),
			logger.Int("dataSize", len(data)),
			logger.ErrorField(err))
	}
	return data, nil
}

// Invalidate 删除某个封面的缓存
func (c *ArtworkCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, artworkKeyPrefix+key).Err()
}
