package realtime

import (
	"context"
	"encoding/json"
	"whisp-chat-svc/src/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Router delivers events to local sessions and, when an adapter is set,
// to the sessions held by other server processes.
type Router struct {
	registry session.Registry
	hub      *Hub
	adapter  Adapter
	node     string
}

// NewRouter creates a router. adapter may be nil for a single-process deployment.
func NewRouter(registry session.Registry, hub *Hub, adapter Adapter) *Router {
	return &Router{
		registry: registry,
		hub:      hub,
		adapter:  adapter,
		node:     uuid.NewString(),
	}
}

func (r *Router) Node() string {
	return r.node
}

// Start subscribes to the adapter. It returns immediately when no adapter is configured.
func (r *Router) Start(ctx context.Context) error {
	if r.adapter == nil {
		return nil
	}

	logrus.WithField("node", r.node).Info("Subscribing to realtime adapter")
	return r.adapter.Subscribe(ctx, r.receive)
}

// BroadcastMessage relays an already persisted message record to every session.
func (r *Router) BroadcastMessage(ctx context.Context, message json.RawMessage) {
	r.broadcast(ctx, Event{Name: EventMessage, Data: message})
}

// BroadcastStatus announces a presence transition to every session.
func (r *Router) BroadcastStatus(ctx context.Context, userID string, online bool) {
	r.broadcast(ctx, Event{
		Name: EventUserStatusUpdate,
		Data: StatusUpdate{UserID: userID, IsOnline: online},
	})
}

// RouteCallSignal delivers a call-signal to every session of the target user.
// A target without sessions is dropped silently.
func (r *Router) RouteCallSignal(ctx context.Context, kind CallKind, from, to string) {
	ev, ok := kind.Event(from)
	if !ok {
		logrus.WithField("kind", kind).Warn("Unknown call signal kind")
		return
	}

	delivered := r.hub.Deliver(r.registry.SessionsFor(to), ev)

	logrus.WithFields(logrus.Fields{
		"kind":      kind,
		"from":      from,
		"to":        to,
		"delivered": delivered,
	}).Debug("Call signal routed")

	r.publish(ctx, to, ev)
}

func (r *Router) broadcast(ctx context.Context, ev Event) {
	delivered := r.hub.DeliverAll(ev)

	logrus.WithFields(logrus.Fields{
		"event":     ev.Name,
		"delivered": delivered,
	}).Debug("Event broadcast")

	r.publish(ctx, "", ev)
}

func (r *Router) publish(ctx context.Context, target string, ev Event) {
	if r.adapter == nil {
		return
	}

	env, err := newEnvelope(r.node, target, ev)
	if err != nil {
		logrus.WithError(err).WithField("event", ev.Name).Error("Failed to encode envelope")
		return
	}

	if err := r.adapter.Publish(ctx, env); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event":  ev.Name,
			"target": target,
		}).Error("Failed to publish event to adapter")
	}
}

func (r *Router) receive(env Envelope) {
	if env.Origin == r.node {
		return
	}

	ev := env.Event()
	if env.Target == "" {
		r.hub.DeliverAll(ev)
		return
	}
	r.hub.Deliver(r.registry.SessionsFor(env.Target), ev)
}
