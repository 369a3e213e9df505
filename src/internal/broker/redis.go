package broker

import (
	"context"
	"fmt"
	"sync"
	"whisp-chat-svc/src/internal/models"
	"whisp-chat-svc/src/internal/realtime"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisAdapter fans realtime events out over a Redis pub/sub channel.
type RedisAdapter struct {
	client  *redis.Client
	channel string

	mu     sync.Mutex
	pubsub *redis.PubSub
	closed bool
}

func NewRedisAdapter(client *redis.Client, channel string) *RedisAdapter {
	return &RedisAdapter{
		client:  client,
		channel: channel,
	}
}

func (a *RedisAdapter) Publish(ctx context.Context, env realtime.Envelope) error {
	data, err := encode(env)
	if err != nil {
		return err
	}

	if err := a.client.Publish(ctx, a.channel, data).Err(); err != nil {
		logrus.WithError(err).WithField("channel", a.channel).Error("Failed to publish to redis")
		return fmt.Errorf("%w: %v", models.ErrRedisPublish, err)
	}
	return nil
}

func (a *RedisAdapter) Subscribe(ctx context.Context, handler func(realtime.Envelope)) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return models.ErrAdapterClosed
	}
	pubsub := a.client.Subscribe(ctx, a.channel)
	a.pubsub = pubsub
	a.mu.Unlock()

	// Wait for the subscription confirmation so publishes after Start are not missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", a.channel, err)
	}

	logrus.WithField("channel", a.channel).Info("Subscribed to redis channel")

	go func() {
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				a.mu.Lock()
				_ = a.unsubscribe()
				a.mu.Unlock()
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				env, err := decode([]byte(msg.Payload))
				if err != nil {
					logrus.WithError(err).WithField("channel", a.channel).Warn("Dropping malformed envelope")
					continue
				}
				handler(env)
			}
		}
	}()

	return nil
}

func (a *RedisAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if err := a.unsubscribe(); err != nil {
		logrus.WithError(err).Error("Failed to close redis subscription")
		return err
	}
	logrus.Info("Redis adapter closed")
	return nil
}

// unsubscribe closes the active subscription. Callers hold a.mu.
func (a *RedisAdapter) unsubscribe() error {
	if a.pubsub == nil {
		return nil
	}
	err := a.pubsub.Close()
	a.pubsub = nil
	return err
}
