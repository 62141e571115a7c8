// Package domain contains entity without logic, just meta-data
package domain

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

const (
	MaxUserIDLen   = 64
	MaxUsernameLen = 64
)

var (
	ErrUserIDEmpty     = errors.New("user id empty")
	ErrUserIDTooLong   = errors.New("user id too long")
	ErrUsernameTooLong = errors.New("username too long")
	ErrUnknownRole     = errors.New("unknown role")
)

// UserID is the identity assigned by the surrounding application.
// Clients send it either as a JSON string or as a JSON number.
type UserID string

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(strings.TrimSpace(s))
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return errors.New("user id must be a string or a number")
	}
	*id = UserID(b)
	return nil
}

type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, nil
	case RoleDoctor:
		return RoleDoctor, nil
	}
	return "", ErrUnknownRole
}

// Identity is who a connection claims to be once it has joined a room.
type Identity struct {
	ID   UserID `json:"userId"`
	Role Role   `json:"userRole"`
	Name string `json:"userName"`
}

func NewIdentity(id UserID, role Role, name string) (Identity, error) {
	if id == "" {
		return Identity{}, ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return Identity{}, ErrUserIDTooLong
	}
	if len(name) > MaxUsernameLen {
		return Identity{}, ErrUsernameTooLong
	}
	if role != RolePatient && role != RoleDoctor {
		return Identity{}, ErrUnknownRole
	}
	return Identity{ID: id, Role: role, Name: name}, nil
}
