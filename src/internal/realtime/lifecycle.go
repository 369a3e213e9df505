package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"whisp-chat-svc/src/internal/models"
	"whisp-chat-svc/src/internal/session"

	"github.com/sirupsen/logrus"
)

// Controller drives every connection through
// Connecting -> Authenticated -> Joined -> Closed and keeps the registry,
// presence and delivery consistent.
type Controller struct {
	gate     *Gate
	registry session.Registry
	hub      *Hub
	router   *Router
	tracker  Tracker
	locks    *userLocks
}

func NewController(gate *Gate, registry session.Registry, hub *Hub, router *Router, tracker Tracker) *Controller {
	return &Controller{
		gate:     gate,
		registry: registry,
		hub:      hub,
		router:   router,
		tracker:  tracker,
		locks:    newUserLocks(),
	}
}

// Authenticate runs the gate for a connection attempt.
func (c *Controller) Authenticate(token string) (string, error) {
	return c.gate.Admit(token)
}

// Open creates an authenticated connection. It receives broadcasts but holds no
// registry or presence state until it joins.
func (c *Controller) Open(userID string, sink Sink) *Connection {
	conn := newConnection(userID, sink)
	c.hub.attach(conn)

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": conn.ID(),
	}).Info("Connection authenticated")

	return conn
}

// Join registers the session. The first session of a user brings the user online.
// Joining twice is a no-op.
func (c *Controller) Join(ctx context.Context, conn *Connection) error {
	userID := conn.UserID()

	unlock := c.locks.lock(userID)
	defer unlock()

	if !conn.transition(StateAuthenticated, StateJoined) {
		if conn.State() == StateClosed {
			return models.ErrConnClosed
		}
		return nil
	}

	size := c.registry.Register(userID, conn.ID())

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": conn.ID(),
		"sessions":   size,
	}).Info("Session joined")

	if size == 1 {
		c.tracker.OnFirstSession(ctx, userID)
	}
	return nil
}

// Close ends the connection. The last session of a user takes the user offline.
// Repeated calls are a no-op.
func (c *Controller) Close(ctx context.Context, conn *Connection) {
	prev, ok := conn.close()
	if !ok {
		return
	}

	c.hub.detach(conn)
	if err := conn.sink.Close(); err != nil {
		logrus.WithError(err).WithField("session_id", conn.ID()).Debug("Sink close returned error")
	}

	userID := conn.UserID()
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"session_id": conn.ID(),
		"state":      prev.String(),
	}).Info("Connection closed")

	if prev != StateJoined {
		return
	}

	unlock := c.locks.lock(userID)
	defer unlock()

	if c.registry.Unregister(userID, conn.ID()) == 0 {
		c.tracker.OnLastSessionClosed(ctx, userID)
	}
}

// SendMessage relays a persisted message record to every session.
func (c *Controller) SendMessage(ctx context.Context, conn *Connection, message json.RawMessage) error {
	if conn.State() != StateJoined {
		return models.ErrNotJoined
	}
	if isEmptyPayload(message) {
		return models.ErrInvalidPayload
	}

	c.router.BroadcastMessage(ctx, message)
	return nil
}

// Call routes a call-signal from the connection's user to req.To.
func (c *Controller) Call(ctx context.Context, conn *Connection, kind CallKind, req CallRequest) error {
	if conn.State() != StateJoined {
		return models.ErrNotJoined
	}
	if req.To == "" {
		return models.ErrInvalidPayload
	}

	c.router.RouteCallSignal(ctx, kind, conn.UserID(), req.To)
	return nil
}

// Dispatch handles one inbound frame.
func (c *Controller) Dispatch(ctx context.Context, conn *Connection, frame Frame) error {
	if frame.Event == EventJoin {
		return c.Join(ctx, conn)
	}

	if frame.Event == EventSendMessage {
		return c.SendMessage(ctx, conn, frame.Data)
	}

	if kind, ok := callKindFor(frame.Event); ok {
		var req CallRequest
		if isEmptyPayload(frame.Data) {
			return models.ErrInvalidPayload
		}
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			return fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
		}
		return c.Call(ctx, conn, kind, req)
	}

	return fmt.Errorf("%w: %q", models.ErrUnknownEvent, frame.Event)
}

// Shutdown closes every open connection, running the normal disconnect path for each.
func (c *Controller) Shutdown(ctx context.Context) {
	conns := c.hub.snapshot()
	logrus.WithField("connections", len(conns)).Info("Closing realtime connections")

	for _, conn := range conns {
		c.Close(ctx, conn)
	}
}

func isEmptyPayload(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// userLocks serialises registry transitions and their presence writes per user.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

func (u *userLocks) lock(userID string) func() {
	u.mu.Lock()
	l, ok := u.locks[userID]
	if !ok {
		l = &userLock{}
		u.locks[userID] = l
	}
	l.refs++
	u.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		u.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(u.locks, userID)
		}
		u.mu.Unlock()
	}
}
