package core

import (
	"github.com/goccy/go-json"

	"github.com/dkeye/Consult/internal/domain"
)

// Inbound event names.
const (
	EventJoinRoom     = "join-room"
	EventSendMessage  = "send-message"
	EventOffer        = "webrtc-offer"
	EventAnswer       = "webrtc-answer"
	EventICECandidate = "webrtc-ice-candidate"
	EventLeaveRoom    = "leave-room"
	EventPing         = "ping"
)

// Outbound event names.
const (
	EventJoinedRoom        = "joined-room"
	EventError             = "error"
	EventUserAlreadyInRoom = "user-already-in-room"
	EventUserJoined        = "user-joined"
	EventReceiveMessage    = "receive-message"
	EventUserLeft          = "user-left"
	EventLeftRoom          = "left-room"
	EventPong              = "pong"
)

// Envelope is the wire frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinedRoom struct {
	RoomID  domain.RoomID `json:"roomId"`
	Message string        `json:"message"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

type UserAlreadyInRoom struct {
	Message string `json:"message"`
}

type UserJoined struct {
	UserID       domain.UserID `json:"userId"`
	UserRole     domain.Role   `json:"userRole"`
	UserName     string        `json:"userName"`
	ConnectionID SessionID     `json:"connectionId"`
}

type ReceiveMessage struct {
	Message    string        `json:"message"`
	SenderName string        `json:"senderName"`
	SenderRole domain.Role   `json:"senderRole"`
	Timestamp  string        `json:"timestamp"`
	SenderID   domain.UserID `json:"senderId"`
}

type UserLeft struct {
	UserID   domain.UserID `json:"userId"`
	UserName string        `json:"userName"`
	UserRole domain.Role   `json:"userRole"`
}

type LeftRoom struct {
	RoomID domain.RoomID `json:"roomId"`
}

// SignalKind is one of the three negotiation messages relayed between peers.
type SignalKind string

const (
	SignalOffer     SignalKind = EventOffer
	SignalAnswer    SignalKind = EventAnswer
	SignalCandidate SignalKind = EventICECandidate
)

// Field is the payload key the negotiation body travels under.
func (k SignalKind) Field() string {
	switch k {
	case SignalOffer:
		return "offer"
	case SignalAnswer:
		return "answer"
	case SignalCandidate:
		return "candidate"
	}
	return ""
}

// EncodeEvent builds a wire frame for name carrying data.
func EncodeEvent(name string, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: name, Data: raw})
}
