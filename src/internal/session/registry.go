package session

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry maps a user to the set of sessions that user currently holds.
// A user is present as a key only while it has at least one session.
type Registry interface {
	Register(userID, sessionID string) int
	Unregister(userID, sessionID string) int
	SessionsFor(userID string) []string
	Users() []string
	SessionCount() int
}

type registry struct {
	mu    sync.RWMutex
	users map[string]map[string]struct{}
}

func NewRegistry() Registry {
	return &registry{users: make(map[string]map[string]struct{})}
}

// Register adds sessionID to the user's set and returns the resulting set size.
func (r *registry) Register(userID, sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, ok := r.users[userID]
	if !ok {
		sessions = make(map[string]struct{})
		r.users[userID] = sessions
	}
	sessions[sessionID] = struct{}{}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": sessionID,
		"sessions":   len(sessions),
	}).Debug("Session registered")

	return len(sessions)
}

// Unregister removes sessionID and returns how many sessions the user still has.
// Unknown users or sessions are a no-op.
func (r *registry) Unregister(userID, sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, ok := r.users[userID]
	if !ok {
		return 0
	}

	delete(sessions, sessionID)
	remaining := len(sessions)
	if remaining == 0 {
		delete(r.users, userID)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": sessionID,
		"sessions":   remaining,
	}).Debug("Session unregistered")

	return remaining
}

// SessionsFor returns a sorted copy of the user's session ids, empty when none.
func (r *registry) SessionsFor(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := r.users[userID]
	ids := make([]string, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Users returns the sorted ids of every user holding at least one session.
func (r *registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, sessions := range r.users {
		total += len(sessions)
	}
	return total
}
