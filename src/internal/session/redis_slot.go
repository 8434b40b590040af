package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-admin-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisKeyPattern = "session:device:%s"

// RedisSlot keeps the value in redis under a key derived from the device cookie.
type RedisSlot struct {
	client     *redis.Client
	device     *device
	expiration time.Duration
}

func (s *RedisSlot) key(deviceID string) string {
	return fmt.Sprintf(redisKeyPattern, deviceID)
}

func (s *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	id, ok := s.device.id(false)
	if !ok {
		return nil, ErrSlotEmpty
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotEmpty
		}
		logrus.WithError(err).WithField("device_id", id).Error("Failed to read session slot from redis")
		return nil, fmt.Errorf("%w: %v", models.ErrRedisGet, err)
	}
	return data, nil
}

func (s *RedisSlot) Write(ctx context.Context, value []byte) error {
	id, _ := s.device.id(true)

	if err := s.client.Set(ctx, s.key(id), value, s.expiration).Err(); err != nil {
		logrus.WithError(err).WithField("device_id", id).Error("Failed to write session slot to redis")
		return fmt.Errorf("%w: %v", models.ErrRedisSet, err)
	}
	return nil
}

func (s *RedisSlot) Clear(ctx context.Context) error {
	id, ok := s.device.id(false)
	if !ok {
		return nil
	}

	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		logrus.WithError(err).WithField("device_id", id).Error("Failed to clear session slot in redis")
		return fmt.Errorf("%w: %v", models.ErrRedisDelete, err)
	}
	return nil
}
