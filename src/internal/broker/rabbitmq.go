package broker

import (
	"context"
	"fmt"
	"sync"
	"time"
	"whisp-chat-svc/src/clients"
	"whisp-chat-svc/src/internal/config"
	"whisp-chat-svc/src/internal/models"
	"whisp-chat-svc/src/internal/realtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// RabbitAdapter fans realtime events out through a fanout exchange.
// Every node consumes from its own exclusive queue bound to the exchange.
type RabbitAdapter struct {
	channel     *amqp.Channel
	exchange    string
	consumerTag string

	mu        sync.Mutex
	consuming bool
	closed    bool
}

func NewRabbitAdapter(rmq *clients.RabbitMQ, cfg *config.RabbitMQConfig) (*RabbitAdapter, error) {
	if err := rmq.SetupExchange(); err != nil {
		return nil, err
	}

	return &RabbitAdapter{
		channel:     rmq.Channel,
		exchange:    cfg.Exchange,
		consumerTag: fmt.Sprintf("%s-%s", cfg.Consumer, uuid.NewString()),
	}, nil
}

func (a *RabbitAdapter) Publish(_ context.Context, env realtime.Envelope) error {
	body, err := encode(env)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return models.ErrAdapterClosed
	}

	err = a.channel.Publish(
		a.exchange,
		"",    // fanout ignores the routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		logrus.WithError(err).WithField("exchange", a.exchange).Error("Failed to publish to rabbitmq")
		return fmt.Errorf("%w: %v", models.ErrAdapterPublish, err)
	}
	return nil
}

func (a *RabbitAdapter) Subscribe(ctx context.Context, handler func(realtime.Envelope)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return models.ErrAdapterClosed
	}

	queue, err := a.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := a.channel.QueueBind(queue.Name, "", a.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := a.channel.Consume(
		queue.Name,
		a.consumerTag,
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume queue: %w", err)
	}

	a.consuming = true

	logrus.WithFields(logrus.Fields{
		"exchange": a.exchange,
		"queue":    queue.Name,
		"consumer": a.consumerTag,
	}).Info("Subscribed to rabbitmq exchange")

	go func() {
		for {
			select {
			case <-ctx.Done():
				a.mu.Lock()
				_ = a.cancelConsumer()
				a.mu.Unlock()
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				env, err := decode(delivery.Body)
				if err != nil {
					logrus.WithError(err).WithField("exchange", a.exchange).Warn("Dropping malformed envelope")
					continue
				}
				handler(env)
			}
		}
	}()

	return nil
}

// Close stops consuming. The channel itself is owned by clients.RabbitMQ.
func (a *RabbitAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if err := a.cancelConsumer(); err != nil {
		logrus.WithError(err).Error("Failed to cancel rabbitmq consumer")
		return err
	}
	logrus.Info("RabbitMQ adapter closed")
	return nil
}

// cancelConsumer stops the delivery stream. Callers hold a.mu.
func (a *RabbitAdapter) cancelConsumer() error {
	if !a.consuming {
		return nil
	}
	a.consuming = false
	return a.channel.Cancel(a.consumerTag, false)
}
