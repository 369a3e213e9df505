package realtime

import (
	"context"
	"errors"
	"sync"
	"time"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *recordingSink) Send(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.events = append(s.events, ev)
	return true
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func (s *recordingSink) Named(name string) []Event {
	var out []Event
	for _, ev := range s.Events() {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (s *recordingSink) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type memoryStore struct {
	mu       sync.Mutex
	online   map[string]bool
	lastSeen map[string]time.Time
	writes   int
	fail     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		online:   make(map[string]bool),
		lastSeen: make(map[string]time.Time),
	}
}

func (m *memoryStore) SetOnline(_ context.Context, userID string, online bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.fail != nil {
		return m.fail
	}
	m.online[userID] = online
	return nil
}

func (m *memoryStore) SetLastSeen(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.fail != nil {
		return m.fail
	}
	m.lastSeen[userID] = at
	return nil
}

func (m *memoryStore) Online(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online[userID]
}

func (m *memoryStore) LastSeen(userID string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.lastSeen[userID]
	return at, ok
}

func (m *memoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type statusCall struct {
	UserID string
	Online bool
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []statusCall
}

func (b *recordingBroadcaster) BroadcastStatus(_ context.Context, userID string, online bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, statusCall{UserID: userID, Online: online})
}

func (b *recordingBroadcaster) Calls() []statusCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]statusCall(nil), b.calls...)
}

// countingTracker wraps a tracker and counts the transitions it sees.
type countingTracker struct {
	mu    sync.Mutex
	inner Tracker
	first map[string]int
	last  map[string]int
}

func newCountingTracker(inner Tracker) *countingTracker {
	return &countingTracker{inner: inner, first: make(map[string]int), last: make(map[string]int)}
}

func (c *countingTracker) OnFirstSession(ctx context.Context, userID string) {
	c.mu.Lock()
	c.first[userID]++
	c.mu.Unlock()
	c.inner.OnFirstSession(ctx, userID)
}

func (c *countingTracker) OnLastSessionClosed(ctx context.Context, userID string) {
	c.mu.Lock()
	c.last[userID]++
	c.mu.Unlock()
	c.inner.OnLastSessionClosed(ctx, userID)
}

func (c *countingTracker) Counts(userID string) (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.first[userID], c.last[userID]
}

type mapVerifier map[string]string

func (m mapVerifier) Verify(token string) (string, error) {
	userID, ok := m[token]
	if !ok {
		return "", errors.New("unknown token")
	}
	return userID, nil
}

type fakeAdapter struct {
	mu        sync.Mutex
	published []Envelope
	handler   func(Envelope)
}

func (a *fakeAdapter) Publish(_ context.Context, env Envelope) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.published = append(a.published, env)
	return nil
}

func (a *fakeAdapter) Subscribe(_ context.Context, handler func(Envelope)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = handler
	return nil
}

func (a *fakeAdapter) Close() error { return nil }

func (a *fakeAdapter) Published() []Envelope {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Envelope(nil), a.published...)
}

func (a *fakeAdapter) Deliver(env Envelope) {
	a.mu.Lock()
	h := a.handler
	a.mu.Unlock()
	h(env)
}
