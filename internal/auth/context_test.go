// ABOUTME: Tests for AuthContext propagation through request contexts

package auth

import (
	"context"
	"testing"
)

func TestWithAuthRoundTrip(t *testing.T) {
	authCtx := &AuthContext{
		UserID:   "5f3c1a34-9a75-4bc9-8f66-5a4c3c2b1a00",
		Name:     "Ana",
		Email:    "ana@example.com",
		Profiles: []string{"ROLE_USER"},
	}

	ctx := WithAuth(context.Background(), authCtx)
	got := FromContext(ctx)
	if got == nil {
		t.Fatal("FromContext returned nil")
	}
	if got.UserID != authCtx.UserID || got.Email != authCtx.Email {
		t.Errorf("got %+v, want %+v", got, authCtx)
	}
}

func TestFromContextEmpty(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext on empty context = %+v, want nil", got)
	}
}

func TestMustFromContextPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on missing AuthContext")
		}
	}()
	MustFromContext(context.Background())
}

func TestHasProfile(t *testing.T) {
	authCtx := &AuthContext{Profiles: []string{"ROLE_USER", "ROLE_MODERATOR"}}

	if !authCtx.HasProfile("ROLE_MODERATOR") {
		t.Error("expected ROLE_MODERATOR")
	}
	if authCtx.HasProfile("ROLE_ADMIN") {
		t.Error("unexpected ROLE_ADMIN")
	}
}
