// ABOUTME: Soft per-request bearer-token authenticator middleware
// ABOUTME: Attaches an AuthContext on success, passes through silently on failure

package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/totustuus/forum-api/internal/store"
)

// FailureRecorder counts authentication failures by reason. Implemented by
// internal/metrics; a nil recorder disables counting.
type FailureRecorder interface {
	AuthFailure(reason string)
}

// Failure reasons recorded by the middleware. An absent Authorization
// header is not a failure: anonymous requests are expected traffic.
const (
	reasonBadScheme      = "bad_scheme"
	reasonMalformedToken = "malformed_token"
	reasonBadSignature   = "bad_signature"
	reasonTokenExpired   = "token_expired"
	reasonBadSubject     = "bad_subject"
	reasonUserNotFound   = "user_not_found"
)

// Middleware returns a soft authenticator: it runs once per request, and a
// request that presents no credentials or bad credentials continues
// unauthenticated. Rejection is the route policy's job, not this layer's.
//
// On a valid token the subject's user record (with profiles) is loaded in a
// single store lookup and attached to the request context.
func Middleware(users UserStore, tokens *TokenService, logger *slog.Logger, failures FailureRecorder) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth")

	fail := func(r *http.Request, reason string, err error) {
		logger.Debug("request authentication failed",
			"reason", reason,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		if failures != nil {
			failures.AuthFailure(reason)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				fail(r, reasonBadScheme, nil)
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, ErrSignatureInvalid):
					fail(r, reasonBadSignature, err)
				case errors.Is(err, ErrExpiredToken):
					fail(r, reasonTokenExpired, err)
				default:
					fail(r, reasonMalformedToken, err)
				}
				next.ServeHTTP(w, r)
				return
			}

			subject, err := tokens.SubjectOf(claims)
			if err != nil {
				fail(r, reasonBadSubject, err)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUser(r.Context(), subject.String())
			if err != nil {
				if errors.Is(err, store.ErrUserNotFound) {
					fail(r, reasonUserNotFound, err)
				} else {
					logger.Error("user lookup failed during authentication",
						"user_id", subject.String(), "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			auth := &AuthContext{
				UserID:   user.ID,
				Name:     user.Name,
				Email:    user.Email,
				Profiles: user.ProfileNames(),
			}
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), auth)))
		})
	}
}
