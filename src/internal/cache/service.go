package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"whisp-chat-svc/src/internal/config"
	"whisp-chat-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Service interface {
	GetPresence(ctx context.Context, userID string) (*models.Presence, error)
	SavePresence(ctx context.Context, presence *models.Presence) error
	FillPresence(ctx context.Context, presence *models.Presence) error
	InvalidatePresence(ctx context.Context, userID string) error
	IncrementLoginAttempts(ctx context.Context, clientIP string, window time.Duration) (int64, error)
}

type cacheService struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewCacheService(client *redis.Client, cfg *config.Configuration) Service {
	return &cacheService{
		client: client,
		cfg:    &cfg.Cache,
	}
}

func (c *cacheService) key(userID string) string {
	return fmt.Sprintf("%s:%s", c.cfg.PresenceKeyPrefix, userID)
}

func (c *cacheService) GetPresence(ctx context.Context, userID string) (*models.Presence, error) {
	key := c.key(userID)
	logrus.WithField("key", key).Debug("Getting presence from cache")

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logrus.WithField("key", key).Debug("Presence not found in cache")
			return nil, nil
		}
		logrus.WithError(err).WithField("key", key).Error("Failed to get presence from cache")
		return nil, models.ErrRedisGet
	}

	var presence models.Presence
	if err := json.Unmarshal([]byte(data), &presence); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to unmarshal presence from cache")
		return nil, models.ErrRedisGet
	}

	return &presence, nil
}

func (c *cacheService) SavePresence(ctx context.Context, presence *models.Presence) error {
	key := c.key(presence.UserID)

	data, err := json.Marshal(presence)
	if err != nil {
		logrus.WithError(err).WithField("user_id", presence.UserID).Error("Failed to marshal presence for cache")
		return models.ErrRedisSet
	}

	expiration := time.Duration(c.cfg.PresenceExpirationMinutes) * time.Minute
	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to cache presence")
		return models.ErrRedisSet
	}

	logrus.WithField("key", key).Debug("Presence cached successfully")
	return nil
}

// FillPresence caches presence only when no entry exists, so a read-through fill
// never overwrites a value written by a presence transition.
func (c *cacheService) FillPresence(ctx context.Context, presence *models.Presence) error {
	key := c.key(presence.UserID)

	data, err := json.Marshal(presence)
	if err != nil {
		logrus.WithError(err).WithField("user_id", presence.UserID).Error("Failed to marshal presence for cache")
		return models.ErrRedisSet
	}

	expiration := time.Duration(c.cfg.PresenceExpirationMinutes) * time.Minute
	stored, err := c.client.SetNX(ctx, key, data, expiration).Result()
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to fill presence cache")
		return models.ErrRedisSet
	}

	logrus.WithFields(logrus.Fields{
		"key":    key,
		"stored": stored,
	}).Debug("Presence cache filled")
	return nil
}

func (c *cacheService) InvalidatePresence(ctx context.Context, userID string) error {
	key := c.key(userID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to invalidate presence")
		return models.ErrRedisDelete
	}

	return nil
}

// IncrementLoginAttempts counts a login attempt from clientIP and returns the
// count within the current window. The window starts with the first attempt.
func (c *cacheService) IncrementLoginAttempts(ctx context.Context, clientIP string, window time.Duration) (int64, error) {
	key := loginKey(clientIP)

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to count login attempt")
		return 0, models.ErrRedisSet
	}

	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Error("Failed to set login attempt window")
			return count, models.ErrRedisSet
		}
	}

	return count, nil
}

func loginKey(clientIP string) string {
	return fmt.Sprintf("login:%s", clientIP)
}
