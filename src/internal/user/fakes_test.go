package user

import (
	"context"
	"sync"
	"time"
	"whisp-chat-svc/src/internal/models"
)

type fakeRepository struct {
	mu      sync.Mutex
	users   map[string]*User
	queries int
	fail    error
	// afterRead runs once, after the next GetPresence has read its record.
	afterRead func()
}

func newFakeRepository(users ...*User) *fakeRepository {
	r := &fakeRepository{users: map[string]*User{}}
	for _, u := range users {
		r.users[u.UserID] = u
	}
	return r
}

func (r *fakeRepository) FindByUserID(_ context.Context, userID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeRepository) GetPresence(_ context.Context, userID string) (*models.Presence, error) {
	r.mu.Lock()
	r.queries++
	if r.fail != nil {
		r.mu.Unlock()
		return nil, r.fail
	}
	u, ok := r.users[userID]
	if !ok {
		r.mu.Unlock()
		return nil, models.ErrUserNotFound
	}
	presence := *u.ToPresence()
	hook := r.afterRead
	r.afterRead = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return &presence, nil
}

func (r *fakeRepository) SetOnline(_ context.Context, userID string, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if u, ok := r.users[userID]; ok {
		u.IsOnline = online
	}
	return nil
}

func (r *fakeRepository) SetLastSeen(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if u, ok := r.users[userID]; ok {
		u.LastSeen = &at
	}
	return nil
}

func (r *fakeRepository) Queries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]models.Presence
	invalidated []string
	attempts    map[string]int64
	fillErr     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]models.Presence{}}
}

func (c *fakeCache) GetPresence(_ context.Context, userID string) (*models.Presence, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *fakeCache) SavePresence(_ context.Context, presence *models.Presence) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[presence.UserID] = *presence
	return nil
}

func (c *fakeCache) FillPresence(_ context.Context, presence *models.Presence) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fillErr != nil {
		return c.fillErr
	}
	if _, ok := c.entries[presence.UserID]; !ok {
		c.entries[presence.UserID] = *presence
	}
	return nil
}

func (c *fakeCache) IncrementLoginAttempts(_ context.Context, clientIP string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempts == nil {
		c.attempts = map[string]int64{}
	}
	c.attempts[clientIP]++
	return c.attempts[clientIP], nil
}

func (c *fakeCache) Cached(userID string) (models.Presence, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[userID]
	return p, ok
}

func (c *fakeCache) InvalidatePresence(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func (c *fakeCache) Invalidated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

type stubTokens struct{}

func (stubTokens) Issue(userID string) (string, time.Time, error) {
	return "token-" + userID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}
