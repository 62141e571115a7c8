package domain

import "errors"

const MaxRoomIDLen = 128

var (
	ErrRoomIDEmpty   = errors.New("room id empty")
	ErrRoomIDTooLong = errors.New("room id too long")
)

// RoomID identifies a consultation room. A room has no state of its own:
// it is the set of connections registered under the same id.
type RoomID string

func ParseRoomID(s string) (RoomID, error) {
	if s == "" {
		return "", ErrRoomIDEmpty
	}
	if len(s) > MaxRoomIDLen {
		return "", ErrRoomIDTooLong
	}
	return RoomID(s), nil
}
