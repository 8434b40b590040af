package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"blog-admin-svc/src/internal/config"
	"blog-admin-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Service interface {
	GetTags(ctx context.Context) ([]string, error)
	SaveTags(ctx context.Context, tags []string) error
	GetStats(ctx context.Context) (*models.Stats, error)
	SaveStats(ctx context.Context, stats *models.Stats) error
	InvalidateStats(ctx context.Context) error
}

type cacheService struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewCacheService(client *redis.Client, cfg *config.Configuration) Service {
	return &cacheService{
		client: client,
		cfg:    &cfg.Cache}
}

// GetTags returns nil, nil on a cache miss.
func (c *cacheService) GetTags(ctx context.Context) ([]string, error) {
	var tags []string
	found, err := c.get(ctx, c.cfg.TagsKey, &tags)
	if err != nil || !found {
		return nil, err
	}

	logrus.WithField("count", len(tags)).Debug("Tags retrieved from cache")
	return tags, nil
}

func (c *cacheService) SaveTags(ctx context.Context, tags []string) error {
	return c.set(ctx, c.cfg.TagsKey, tags, time.Duration(c.cfg.TagsExpirationMinutes)*time.Minute)
}

// GetStats returns nil, nil on a cache miss.
func (c *cacheService) GetStats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	found, err := c.get(ctx, c.cfg.StatsKey, &stats)
	if err != nil || !found {
		return nil, err
	}

	logrus.Debug("Blog stats retrieved from cache")
	return &stats, nil
}

func (c *cacheService) SaveStats(ctx context.Context, stats *models.Stats) error {
	return c.set(ctx, c.cfg.StatsKey, stats, time.Duration(c.cfg.StatsExpirationMinutes)*time.Minute)
}

func (c *cacheService) InvalidateStats(ctx context.Context) error {
	if err := c.client.Del(ctx, c.cfg.StatsKey).Err(); err != nil {
		logrus.WithError(err).WithField("key", c.cfg.StatsKey).Error("Failed to invalidate cached stats")
		return models.ErrRedisDelete
	}
	return nil
}

func (c *cacheService) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logrus.WithField("key", key).Debug("Key not found in cache")
			return false, nil
		}
		logrus.WithError(err).WithField("key", key).Error("Failed to read from cache")
		return false, models.ErrRedisGet
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to unmarshal cached value")
		return false, models.ErrRedisGet
	}
	return true, nil
}

func (c *cacheService) set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to marshal value for cache")
		return models.ErrRedisSet
	}

	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to write to cache")
		return models.ErrRedisSet
	}
	return nil
}
