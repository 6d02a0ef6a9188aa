package auth

import (
	"context"
	"testing"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ac := AuthContext{
		Email:     "alice@example.com",
		SessionID: 3,
	}

	ctx := WithAuth(context.Background(), ac)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", got.Email)
	}
	if got.SessionID != 3 {
		t.Errorf("SessionID = %d, want 3", got.SessionID)
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestEmail(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{Email: "alice@example.com"})
	if Email(ctx) != "alice@example.com" {
		t.Errorf("Email = %q", Email(ctx))
	}
}

func TestEmailMissing(t *testing.T) {
	if Email(context.Background()) != "" {
		t.Error("expected empty email for missing context")
	}
}

func TestSessionID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{SessionID: 7})
	if SessionID(ctx) != 7 {
		t.Errorf("SessionID = %d, want 7", SessionID(ctx))
	}
}

func TestSessionIDMissing(t *testing.T) {
	if SessionID(context.Background()) != 0 {
		t.Error("expected 0 for missing context")
	}
}
