package cache

import (
	"context"
	"testing"
	"time"
	"whisp-chat-svc/src/internal/config"
	"whisp-chat-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// unreachable points at a port nothing listens on so every command fails fast.
func unreachable(t *testing.T) Service {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Configuration{}
	cfg.Cache.PresenceKeyPrefix = "presence"
	cfg.Cache.PresenceExpirationMinutes = 5
	return NewCacheService(client, cfg)
}

func TestCacheService_Key(t *testing.T) {
	svc := unreachable(t).(*cacheService)
	assert.Equal(t, "presence:alice", svc.key("alice"))
	assert.Equal(t, "login:192.0.2.1", loginKey("192.0.2.1"))
}

func TestCacheService_MapsRedisFailures(t *testing.T) {
	svc := unreachable(t)
	ctx := context.Background()

	presence, err := svc.GetPresence(ctx, "alice")
	assert.Nil(t, presence)
	assert.ErrorIs(t, err, models.ErrRedisGet)

	err = svc.SavePresence(ctx, &models.Presence{UserID: "alice", IsOnline: true})
	assert.ErrorIs(t, err, models.ErrRedisSet)

	err = svc.FillPresence(ctx, &models.Presence{UserID: "alice"})
	assert.ErrorIs(t, err, models.ErrRedisSet)

	err = svc.InvalidatePresence(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrRedisDelete)

	_, err = svc.IncrementLoginAttempts(ctx, "192.0.2.1", time.Minute)
	assert.ErrorIs(t, err, models.ErrRedisSet)
}
