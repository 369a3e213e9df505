package realtime

import (
	"context"
	"encoding/json"
)

// Envelope carries an event between server processes.
// An empty Target means the event goes to every session.
type Envelope struct {
	Origin string          `json:"origin"`
	Target string          `json:"target,omitempty"`
	Name   string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Event rebuilds the client event carried by the envelope.
func (e Envelope) Event() Event {
	if len(e.Data) == 0 {
		return Event{Name: e.Name}
	}
	return Event{Name: e.Name, Data: e.Data}
}

// Adapter fans events out to the other server processes.
type Adapter interface {
	Publish(ctx context.Context, env Envelope) error
	// Subscribe registers handler and delivers envelopes to it in the background
	// until ctx is done.
	Subscribe(ctx context.Context, handler func(Envelope)) error
	Close() error
}

func newEnvelope(origin, target string, ev Event) (Envelope, error) {
	if ev.Data == nil {
		return Envelope{Origin: origin, Target: target, Name: ev.Name}, nil
	}
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Origin: origin, Target: target, Name: ev.Name, Data: data}, nil
}
