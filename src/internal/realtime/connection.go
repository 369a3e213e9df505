package realtime

import (
	"sync"
	"whisp-chat-svc/src/internal/session"
)

// State is the lifecycle state of one connection.
type State int

const (
	StateConnecting State = iota
	StateAuthenticated
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sink is the transport side of a connection.
type Sink interface {
	// Send queues an event for the client and reports whether it was accepted.
	Send(ev Event) bool
	Close() error
}

// Connection binds an authenticated session to its transport.
type Connection struct {
	mu      sync.Mutex
	session *session.Session
	state   State
	sink    Sink
}

func newConnection(userID string, sink Sink) *Connection {
	return &Connection{
		session: session.New(userID),
		state:   StateAuthenticated,
		sink:    sink,
	}
}

func (c *Connection) ID() string {
	return c.session.ID
}

func (c *Connection) UserID() string {
	return c.session.UserID
}

func (c *Connection) Session() *session.Session {
	return c.session
}

func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// transition moves the connection to next if it is currently in from.
func (c *Connection) transition(from, next State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return false
	}
	c.state = next
	return true
}

// close moves the connection to StateClosed and returns the state it left.
func (c *Connection) close() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return StateClosed, false
	}
	prev := c.state
	c.state = StateClosed
	return prev, true
}

func (c *Connection) send(ev Event) bool {
	return c.sink.Send(ev)
}
