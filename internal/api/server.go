// ABOUTME: HTTP server assembly: routes, middleware chain, and route policy
// ABOUTME: Chain order is metrics, then soft authenticator, then policy enforcement

package api

import (
	"log/slog"
	"net/http"

	"github.com/totustuus/forum-api/internal/auth"
	"github.com/totustuus/forum-api/internal/cache"
	"github.com/totustuus/forum-api/internal/metrics"
	"github.com/totustuus/forum-api/internal/store"
)

// Server holds the forum's HTTP dependencies.
type Server struct {
	store     store.Store
	tokens    *auth.TokenService
	passwords *auth.PasswordAuthenticator
	listCache *cache.ListCache
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Options configures optional server collaborators. A nil ListCache
// disables response caching; a nil Metrics disables instrumentation.
type Options struct {
	ListCache *cache.ListCache
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewServer creates the forum API server.
func NewServer(s store.Store, tokens *auth.TokenService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     s,
		tokens:    tokens,
		passwords: auth.NewPasswordAuthenticator(s, logger),
		listCache: opts.ListCache,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "api"),
	}
}

// policy lists the public routes in evaluation order. GET /topics/* frees
// the detail and search endpoints but not deeper paths like topic replies.
// Everything unmatched requires authentication.
func (s *Server) policy() *auth.Policy {
	return auth.NewPolicy(
		auth.Rule{Method: http.MethodPost, Pattern: "/auth", Disposition: auth.Public},
		auth.Rule{Method: http.MethodGet, Pattern: "/topics", Disposition: auth.Public},
		auth.Rule{Method: http.MethodGet, Pattern: "/topics/*", Disposition: auth.Public},
		auth.Rule{Method: http.MethodGet, Pattern: "/health", Disposition: auth.Public},
		auth.Rule{Method: http.MethodGet, Pattern: "/metrics", Disposition: auth.Public},
	)
}

// Handler builds the complete HTTP handler: routes wrapped by the policy
// enforcer, the soft bearer-token authenticator, and request metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth", s.handleLogin)

	mux.HandleFunc("GET /topics", s.handleListTopics)
	mux.HandleFunc("GET /topics/search", s.handleSearchTopics)
	mux.HandleFunc("GET /topics/{id}", s.handleGetTopic)
	mux.HandleFunc("POST /topics", s.handleCreateTopic)
	mux.HandleFunc("PUT /topics/{id}", s.handleUpdateTopic)
	mux.HandleFunc("DELETE /topics/{id}", s.handleDeleteTopic)
	mux.HandleFunc("POST /topics/{id}/replies", s.handleCreateReply)
	mux.HandleFunc("POST /topics/{id}/replies/{replyID}/solution", s.handleMarkSolution)

	mux.HandleFunc("GET /courses", s.handleListCourses)
	mux.HandleFunc("POST /courses", s.handleCreateCourse)

	mux.HandleFunc("GET /me", s.handleMe)
	mux.HandleFunc("GET /health", s.handleHealth)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = s.policy().Enforce(s.logger)(handler)
	handler = auth.Middleware(s.store, s.tokens, s.logger, s.metrics)(handler)
	handler = s.instrument(handler)
	return handler
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.HTTPRequest(r.Method, r.URL.Path, rec.status)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       authCtx.UserID,
		"name":     authCtx.Name,
		"email":    authCtx.Email,
		"profiles": authCtx.Profiles,
	})
}
