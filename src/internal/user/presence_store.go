package user

import (
	"context"
	"time"
	"whisp-chat-svc/src/internal/cache"

	"github.com/sirupsen/logrus"
)

// PresenceStore persists presence transitions and writes the fresh record
// through to the cache.
type PresenceStore struct {
	repo  Repository
	cache cache.Service
}

func NewPresenceStore(repo Repository, cacheService cache.Service) *PresenceStore {
	return &PresenceStore{
		repo:  repo,
		cache: cacheService,
	}
}

func (s *PresenceStore) SetOnline(ctx context.Context, userID string, online bool) error {
	if err := s.repo.SetOnline(ctx, userID, online); err != nil {
		return err
	}
	s.refresh(ctx, userID)
	return nil
}

func (s *PresenceStore) SetLastSeen(ctx context.Context, userID string, at time.Time) error {
	if err := s.repo.SetLastSeen(ctx, userID, at); err != nil {
		return err
	}
	s.refresh(ctx, userID)
	return nil
}

// refresh overwrites the cached presence with the stored one. If the stored
// record cannot be read or cached, the entry is dropped instead.
func (s *PresenceStore) refresh(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}

	presence, err := s.repo.GetPresence(ctx, userID)
	if err == nil {
		err = s.cache.SavePresence(ctx, presence)
	}
	if err == nil {
		return
	}

	logrus.WithError(err).WithField("user_id", userID).Warn("Failed to refresh cached presence")
	if err := s.cache.InvalidatePresence(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate cached presence")
	}
}
