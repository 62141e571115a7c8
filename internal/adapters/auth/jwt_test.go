package auth

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/dkeye/Consult/internal/domain"
)

func TestVerifierRoundTrip(t *testing.T) {
	v := NewVerifier("s3cret")
	token, err := v.Issue("42", domain.RoleDoctor, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := v.Verify(token, "42", domain.RoleDoctor); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := v.Verify(token, "43", domain.RoleDoctor); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("other user: %v", err)
	}
	if err := v.Verify(token, "42", domain.RolePatient); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("other role: %v", err)
	}
}

func TestVerifierRejects(t *testing.T) {
	v := NewVerifier("s3cret")
	if err := v.Verify("", "1", domain.RolePatient); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("empty token: %v", err)
	}

	other, _ := NewVerifier("different").Issue("1", domain.RolePatient, time.Minute)
	if err := v.Verify(other, "1", domain.RolePatient); err == nil {
		t.Fatal("foreign signature accepted")
	}

	expired, _ := v.Issue("1", domain.RolePatient, -time.Minute)
	if err := v.Verify(expired, "1", domain.RolePatient); !errors.Is(err, jwtlib.ErrTokenExpired) {
		t.Fatalf("expired: %v", err)
	}
}

func TestNilVerifierAcceptsEverything(t *testing.T) {
	v := NewVerifier("")
	if v != nil {
		t.Fatal("empty secret should disable verification")
	}
	if err := v.Verify("", "1", domain.RolePatient); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
