package user

import (
	"context"
	"errors"
	"time"
	"whisp-chat-svc/src/clients"
	"whisp-chat-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	FindByUserID(ctx context.Context, userID string) (*User, error)
	GetPresence(ctx context.Context, userID string) (*models.Presence, error)
	SetOnline(ctx context.Context, userID string, online bool) error
	SetLastSeen(ctx context.Context, userID string, at time.Time) error
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(mongoClient *clients.MongoDB, collectionName string) Repository {
	return &userRepository{
		collection: mongoClient.Database.Collection(collectionName),
	}
}

func (r *userRepository) FindByUserID(ctx context.Context, userID string) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to find user")
		return nil, models.ErrDatabaseQuery
	}

	return &user, nil
}

func (r *userRepository) GetPresence(ctx context.Context, userID string) (*models.Presence, error) {
	opts := options.FindOne().SetProjection(bson.M{
		"userId":   1,
		"isOnline": 1,
		"lastSeen": 1,
	})

	var presence models.Presence
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&presence)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to get presence")
		return nil, models.ErrDatabaseQuery
	}

	return &presence, nil
}

// SetOnline flips the isOnline flag. A missing user is not an error.
func (r *userRepository) SetOnline(ctx context.Context, userID string, online bool) error {
	return r.update(ctx, userID, bson.M{"isOnline": online})
}

func (r *userRepository) SetLastSeen(ctx context.Context, userID string, at time.Time) error {
	return r.update(ctx, userID, bson.M{"lastSeen": at.UTC()})
}

func (r *userRepository) update(ctx context.Context, userID string, set bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": set})
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to update user presence")
		return models.ErrDatabaseUpdate
	}

	if result.MatchedCount == 0 {
		logrus.WithField("user_id", userID).Warn("Presence update matched no user")
	}

	return nil
}
