package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestManager_IssueThenParse(t *testing.T) {
	m := NewManager("secret", time.Minute)
	id := uuid.New()

	token, err := m.Issue(id, "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token.ExpiresIn != time.Minute {
		t.Fatalf("unexpected expiry %v", token.ExpiresIn)
	}

	claims, err := m.Parse(token.Value)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != id || claims.Email != "a@example.com" || claims.Subject != id.String() {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	token, _ := NewManager("other", time.Minute).Issue(uuid.New(), "a@example.com")
	if _, err := NewManager("secret", time.Minute).Parse(token.Value); err == nil || errors.Is(err, ErrExpired) {
		t.Fatalf("expected signature error, got %v", err)
	}
}

func TestManager_ReportsExpiry(t *testing.T) {
	m := NewManager("secret", time.Minute)
	token, _ := m.Issue(uuid.New(), "a@example.com")

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := m.Parse(token.Value); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestManager_RejectsGarbage(t *testing.T) {
	if _, err := NewManager("secret", time.Minute).Parse("not-a-token"); err == nil {
		t.Fatal("expected error")
	}
}
