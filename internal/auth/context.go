// ABOUTME: Per-request authentication context threaded through handlers
// ABOUTME: Provides WithAuth/FromContext for propagating the caller's identity

package auth

import (
	"context"
)

// AuthContext holds the authenticated identity extracted from a request.
// It is populated by the request authenticator middleware and retrieved
// from the request context in handlers. An absent AuthContext means the
// request is unauthenticated.
type AuthContext struct {
	UserID   string   // UUID of the authenticated user
	Name     string   // display name
	Email    string   // login identifier
	Profiles []string // profile names granted to this user
}

// HasProfile returns true if the user holds the named profile.
func (a *AuthContext) HasProfile(name string) bool {
	for _, p := range a.Profiles {
		if p == name {
			return true
		}
	}
	return false
}

// authContextKey is the key type for storing AuthContext in context.Context.
type authContextKey struct{}

// WithAuth returns a new context with the AuthContext attached.
func WithAuth(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// FromContext retrieves the AuthContext from the context, returning nil if
// the request is unauthenticated.
func FromContext(ctx context.Context) *AuthContext {
	val := ctx.Value(authContextKey{})
	if val == nil {
		return nil
	}
	auth, ok := val.(*AuthContext)
	if !ok {
		return nil
	}
	return auth
}

// MustFromContext retrieves the AuthContext from the context, panicking if
// not present. Only for handlers behind a RequireAuthenticated route.
func MustFromContext(ctx context.Context) *AuthContext {
	auth := FromContext(ctx)
	if auth == nil {
		panic("auth: AuthContext not found in context")
	}
	return auth
}
