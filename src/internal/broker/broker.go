// Package broker provides the cross-process adapters used by the realtime router
// when more than one server instance is running.
package broker

import (
	"fmt"
	"whisp-chat-svc/src/clients"
	"whisp-chat-svc/src/internal/config"
	"whisp-chat-svc/src/internal/models"
	"whisp-chat-svc/src/internal/realtime"
)

// New returns the adapter selected by cfg.Realtime.Adapter, or nil for "none".
func New(cfg *config.Configuration, redisClient *clients.RedisClient, rmq *clients.RabbitMQ) (realtime.Adapter, error) {
	switch cfg.Realtime.Adapter {
	case config.AdapterNone, "":
		return nil, nil
	case config.AdapterRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("%w: redis client is not configured", models.ErrUnknownAdapter)
		}
		return NewRedisAdapter(redisClient.Client, cfg.Realtime.Channel), nil
	case config.AdapterRabbitMQ:
		if rmq == nil {
			return nil, fmt.Errorf("%w: rabbitmq is not configured", models.ErrUnknownAdapter)
		}
		adapter, err := NewRabbitAdapter(rmq, &cfg.Queue.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownAdapter, cfg.Realtime.Adapter)
	}
}
