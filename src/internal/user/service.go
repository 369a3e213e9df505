package user

import (
	"context"
	"errors"
	"time"
	"whisp-chat-svc/src/internal/cache"
	"whisp-chat-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

type Service interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	GetPresence(ctx context.Context, userID string) (*models.Presence, error)
}

type userService struct {
	userRepository Repository
	cacheService   cache.Service
	tokens         TokenIssuer
}

func NewUserService(userRepository Repository, cacheService cache.Service, tokens TokenIssuer) Service {
	return &userService{
		userRepository: userRepository,
		cacheService:   cacheService,
		tokens:         tokens,
	}
}

// Login checks the password hash and issues an access token. Unknown users and
// wrong passwords both yield models.ErrInvalidCredentials.
func (s *userService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if req.UserID == "" || req.Password == "" {
		return nil, models.ErrInvalidParams
	}

	user, err := s.userRepository.FindByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			logrus.WithField("user_id", req.UserID).Info("Login attempt for unknown user")
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logrus.WithField("user_id", req.UserID).Info("Login attempt with wrong password")
		return nil, models.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.UserID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.UserID).Error("Failed to issue token")
		return nil, err
	}

	logrus.WithField("user_id", user.UserID).Info("User logged in")

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToProfile(),
	}, nil
}

// GetPresence reads through the cache to the users collection.
func (s *userService) GetPresence(ctx context.Context, userID string) (*models.Presence, error) {
	if userID == "" {
		return nil, models.ErrInvalidParams
	}

	if s.cacheService != nil {
		cached, err := s.cacheService.GetPresence(ctx, userID)
		if err == nil && cached != nil {
			logrus.WithField("user_id", userID).Debug("Presence served from cache")
			return cached, nil
		}
	}

	presence, err := s.userRepository.GetPresence(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cacheService != nil {
		if err := s.cacheService.FillPresence(ctx, presence); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Failed to fill presence cache")
		}
	}

	return presence, nil
}
