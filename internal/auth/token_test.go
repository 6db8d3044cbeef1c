package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	sessionID := uuid.New()

	token, err := svc.Issue(sessionID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.SessionID != sessionID {
		t.Errorf("SessionID = %s, want %s", claims.SessionID, sessionID)
	}
	if claims.Subject != sessionID.String() {
		t.Errorf("Subject = %q", claims.Subject)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := NewTokenService("secret-b", time.Hour).Validate(token); err == nil {
		t.Fatal("token signed with another secret validated")
	}
}

func TestTokenExpiredRejected(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	token, err := svc.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Fatal("expired token validated")
	}
}

func TestTokenGarbageRejected(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	for _, tok := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := svc.Validate(tok); err == nil {
			t.Errorf("Validate(%q) succeeded", tok)
		}
	}
}
