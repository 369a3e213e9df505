package broker

import (
	"encoding/json"
	"errors"
	"fmt"
	"whisp-chat-svc/src/internal/realtime"
)

var errMissingEvent = errors.New("envelope has no event name")

func encode(env realtime.Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}

func decode(data []byte) (realtime.Envelope, error) {
	var env realtime.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return realtime.Envelope{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if env.Name == "" {
		return realtime.Envelope{}, errMissingEvent
	}
	return env, nil
}
