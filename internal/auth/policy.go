// ABOUTME: Ordered route authorization policy with wildcard path patterns
// ABOUTME: First matching rule wins; unmatched routes require authentication

package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// Disposition is what a policy rule decides about a route.
type Disposition int

const (
	// Public routes are served regardless of authentication state.
	Public Disposition = iota
	// RequireAuthenticated routes are refused with 401 when the request
	// carries no valid identity.
	RequireAuthenticated
)

// Rule matches requests by method and path pattern. The pattern is a
// /-separated path where "*" matches exactly one segment and "**" matches
// any remaining segments (including none). An empty method matches all
// methods.
type Rule struct {
	Method      string
	Pattern     string
	Disposition Disposition
}

// Policy is an ordered rule list evaluated first-match-wins. Routes no rule
// matches require authentication, so forgetting a rule locks a route down
// instead of exposing it.
type Policy struct {
	rules []Rule
}

// NewPolicy creates a policy from rules, evaluated in the given order.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// Evaluate returns the disposition for a method and path.
func (p *Policy) Evaluate(method, path string) Disposition {
	for _, rule := range p.rules {
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if matchPattern(rule.Pattern, path) {
			return rule.Disposition
		}
	}
	return RequireAuthenticated
}

func matchPattern(pattern, path string) bool {
	patSegs := splitPath(pattern)
	pathSegs := splitPath(path)

	for i, seg := range patSegs {
		if seg == "**" {
			return true
		}
		if i >= len(pathSegs) {
			return false
		}
		if seg != "*" && seg != pathSegs[i] {
			return false
		}
	}
	return len(patSegs) == len(pathSegs)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Enforce returns middleware applying the policy. It must run after the
// request authenticator so the AuthContext is already attached. Denied
// requests get a 401 with an empty body and never reach a handler.
func (p *Policy) Enforce(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p.Evaluate(r.Method, r.URL.Path) == RequireAuthenticated {
				if FromContext(r.Context()) == nil {
					logger.Debug("unauthenticated request to protected route",
						"method", r.Method,
						"path", r.URL.Path)
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
