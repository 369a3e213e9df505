package realtime

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// PresenceStore is the durable side of presence.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID string, online bool) error
	SetLastSeen(ctx context.Context, userID string, at time.Time) error
}

// Broadcaster announces presence transitions to connected sessions.
type Broadcaster interface {
	BroadcastStatus(ctx context.Context, userID string, online bool)
}

// Tracker reacts to a user's session count crossing between zero and one.
type Tracker interface {
	OnFirstSession(ctx context.Context, userID string)
	OnLastSessionClosed(ctx context.Context, userID string)
}

type tracker struct {
	store       PresenceStore
	broadcaster Broadcaster
	timeout     time.Duration
	now         func() time.Time
}

// NewTracker creates a presence tracker. Store writes are bounded by timeout.
func NewTracker(store PresenceStore, broadcaster Broadcaster, timeout time.Duration) Tracker {
	return &tracker{
		store:       store,
		broadcaster: broadcaster,
		timeout:     timeout,
		now:         time.Now,
	}
}

func (t *tracker) OnFirstSession(ctx context.Context, userID string) {
	t.persist(ctx, userID, func(ctx context.Context) error {
		return t.store.SetOnline(ctx, userID, true)
	}, "online")

	logrus.WithField("user_id", userID).Info("User is online")
	t.broadcaster.BroadcastStatus(ctx, userID, true)
}

func (t *tracker) OnLastSessionClosed(ctx context.Context, userID string) {
	t.persist(ctx, userID, func(ctx context.Context) error {
		return t.store.SetOnline(ctx, userID, false)
	}, "offline")

	seen := t.now()
	t.persist(ctx, userID, func(ctx context.Context) error {
		return t.store.SetLastSeen(ctx, userID, seen)
	}, "last_seen")

	logrus.WithField("user_id", userID).Info("User is offline")
	t.broadcaster.BroadcastStatus(ctx, userID, false)
}

// persist runs a store write. Failures are logged only; in-memory state stays authoritative.
func (t *tracker) persist(ctx context.Context, userID string, write func(context.Context) error, what string) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if err := write(ctx); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"write":   what,
		}).Error("Failed to persist presence")
	}
}
