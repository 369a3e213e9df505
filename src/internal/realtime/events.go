package realtime

import "encoding/json"

// Inbound event names sent by clients.
const (
	EventJoin        = "join"
	EventSendMessage = "sendMessage"
	EventStartCall   = "startCall"
	EventAcceptCall  = "acceptCall"
	EventRejectCall  = "rejectCall"
)

// Outbound event names emitted to clients.
const (
	EventReady            = "ready"
	EventError            = "error"
	EventMessage          = "message"
	EventUserStatusUpdate = "userStatusUpdate"
	EventIncomingCall     = "incomingCall"
	EventCallAccepted     = "callAccepted"
	EventCallRejected     = "callRejected"
)

// Event is a single frame written to a client socket.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// Frame is a single frame read from a client socket.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ReadyPayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// StatusUpdate is the presence-changed event.
type StatusUpdate struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// CallRequest is the payload of startCall, acceptCall and rejectCall.
// From is accepted for compatibility but the authenticated user is always used as initiator.
type CallRequest struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
}

type CallNotice struct {
	From string `json:"from"`
}

// CallKind identifies a call-signal.
type CallKind string

const (
	CallStart  CallKind = "start"
	CallAccept CallKind = "accept"
	CallReject CallKind = "reject"
)

// Event builds the outbound event delivered to the target of the signal.
func (k CallKind) Event(from string) (Event, bool) {
	switch k {
	case CallStart:
		return Event{Name: EventIncomingCall, Data: CallNotice{From: from}}, true
	case CallAccept:
		return Event{Name: EventCallAccepted, Data: CallNotice{From: from}}, true
	case CallReject:
		return Event{Name: EventCallRejected, Data: struct{}{}}, true
	default:
		return Event{}, false
	}
}

func callKindFor(event string) (CallKind, bool) {
	switch event {
	case EventStartCall:
		return CallStart, true
	case EventAcceptCall:
		return CallAccept, true
	case EventRejectCall:
		return CallReject, true
	default:
		return "", false
	}
}
