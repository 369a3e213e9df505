package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is one open connection from one client device or tab.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// New creates a session with a fresh identifier. Identifiers are never reused.
func New(userID string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}
