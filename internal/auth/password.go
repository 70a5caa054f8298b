// ABOUTME: Email+password credential verification against bcrypt hashes
// ABOUTME: Login failures are externally indistinguishable and timing-flat

package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/totustuus/forum-api/internal/store"
)

// ErrBadCredentials is the only error returned to callers for any login
// failure. Whether the email was unknown or the password wrong is never
// exposed outside this package.
var ErrBadCredentials = errors.New("invalid credentials")

// dummyHash is a bcrypt hash of an unguessable value, compared against when
// the email is unknown so that both failure paths cost one bcrypt
// verification.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserStore is the subset of the store the authenticators need.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
}

// PasswordAuthenticator verifies login credentials for POST /auth.
type PasswordAuthenticator struct {
	users  UserStore
	logger *slog.Logger
}

// NewPasswordAuthenticator creates a credential authenticator backed by the
// given user store.
func NewPasswordAuthenticator(users UserStore, logger *slog.Logger) *PasswordAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordAuthenticator{
		users:  users,
		logger: logger.With("component", "auth"),
	}
}

// Authenticate checks email and password and returns the matching user.
// Any failure returns ErrBadCredentials; the distinct cause is only logged.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*store.User, error) {
	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Burn a comparison so unknown emails take as long as bad passwords.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			a.logger.Debug("login failed", "reason", "user_not_found")
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.logger.Debug("login failed", "reason", "password_mismatch", "user_id", user.ID)
		return nil, ErrBadCredentials
	}

	return user, nil
}
