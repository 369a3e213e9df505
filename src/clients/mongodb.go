package clients

import (
	"context"
	"fmt"
	"time"
	"whisp-chat-svc/src/internal/config"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var log = logrus.StandardLogger()

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	timeout  time.Duration
}

func NewMongoDB(cfg *config.Database) (*MongoDB, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.WithField("database", cfg.DbName).Info("Connecting to MongoDB...")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Url))
	if err != nil {
		log.WithError(err).Error("Failed to connect to MongoDB")
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.WithError(err).Error("Failed to ping MongoDB")
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Infof("Connected to MongoDB database %s", cfg.DbName)

	return &MongoDB{
		Client:   client,
		Database: client.Database(cfg.DbName),
		timeout:  timeout,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		log.WithError(err).Error("Failed to disconnect from MongoDB")
		return err
	}

	log.Info("MongoDB connection closed")
	return nil
}
