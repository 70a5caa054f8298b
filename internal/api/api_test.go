// ABOUTME: HTTP handler tests over a real SQLite store
// ABOUTME: Shared fixtures: one seeded user, course, and login helper

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/totustuus/forum-api/internal/auth"
	"github.com/totustuus/forum-api/internal/cache"
	"github.com/totustuus/forum-api/internal/store"
)

const (
	testEmail    = "ana@example.com"
	testPassword = "correct-horse-battery"
	testSecret   = "0123456789abcdef0123456789abcdef"
)

type testEnv struct {
	handler http.Handler
	store   *store.SQLiteStore
	tokens  *auth.TokenService
	userID  string
	course  *store.Course
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	profile, err := s.EnsureProfile(ctx, "ROLE_USER")
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &store.User{
		ID:           uuid.New().String(),
		Name:         "Ana",
		Email:        testEmail,
		PasswordHash: string(hash),
		Profiles:     []store.Profile{*profile},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateUser(ctx, user))

	course := &store.Course{
		ID:        uuid.New().String(),
		Name:      "Spring Boot",
		Category:  "Programming",
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateCourse(ctx, course))

	tokens, err := auth.NewTokenService([]byte(testSecret), time.Hour, "forum-api")
	require.NoError(t, err)

	server := NewServer(s, tokens, Options{
		ListCache: cache.New(16, time.Minute),
	})

	return &testEnv{
		handler: server.Handler(),
		store:   s,
		tokens:  tokens,
		userID:  user.ID,
		course:  course,
	}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	rec := e.request(t, http.MethodPost, "/auth", "", map[string]string{
		"email":    testEmail,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body)

	var resp struct {
		Token  string `json:"token"`
		Scheme string `json:"scheme"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Bearer", resp.Scheme)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) createTopic(t *testing.T, token, title string) string {
	t.Helper()

	rec := e.request(t, http.MethodPost, "/topics", token, map[string]string{
		"title":       title,
		"message":     "A long enough message about the problem at hand.",
		"course_name": e.course.Name,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "create topic failed: %s", rec.Body)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	for name, creds := range map[string]map[string]string{
		"wrong password": {"email": testEmail, "password": "nope-nope-nope"},
		"unknown email":  {"email": "ghost@example.com", "password": testPassword},
	} {
		rec := env.request(t, http.MethodPost, "/auth", "", creds)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid credentials", resp["error"], name)
	}
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/auth", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errs []FieldError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errs))
	assert.Len(t, errs, 2)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/topics", "", map[string]string{
		"title":       "A perfectly valid title",
		"message":     "A perfectly valid message body for this topic.",
		"course_name": env.course.Name,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.Bytes(), "401 must carry an empty body")
}

func TestPublicRoutesWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.request(t, http.MethodGet, "/topics", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.request(t, http.MethodGet, "/health", "", nil).Code)
}

func TestCreateTopicValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.request(t, http.MethodPost, "/topics", token, map[string]string{
		"title":       "abc", // too short
		"message":     "short",
		"course_name": "x",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errs []FieldError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errs))

	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["message"])
	assert.True(t, fields["course_name"])
}

func TestCreateTopicUnknownCourse(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.request(t, http.MethodPost, "/topics", token, map[string]string{
		"title":       "A perfectly valid title",
		"message":     "A perfectly valid message body for this topic.",
		"course_name": "Nonexistent",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errs []FieldError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "course_name", errs[0].Field)
}

func TestCreateTopicSetsLocation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.request(t, http.MethodPost, "/topics", token, map[string]string{
		"title":       "Where is my topic?",
		"message":     "The Location header should point at the new topic.",
		"course_name": env.course.Name,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/topics/")
}

func TestTopicListAndDetail(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	topicID := env.createTopic(t, token, "A question about **bold** text")

	rec := env.request(t, http.MethodGet, "/topics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list topicListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Ana", list.Topics[0].Author)
	assert.Equal(t, "Spring Boot", list.Topics[0].Course)
	assert.Equal(t, store.TopicUnanswered, list.Topics[0].Status)

	rec = env.request(t, http.MethodGet, "/topics/"+topicID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail topicDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Contains(t, detail.MessageHTML, "<strong>bold</strong>")
	assert.Empty(t, detail.Replies)
}

func TestTopicDetailNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(t, http.MethodGet, "/topics/"+uuid.New().String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTopicSearch(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.createTopic(t, token, "Transactions in practice")
	env.createTopic(t, token, "Goroutines and channels")

	rec := env.request(t, http.MethodGet, "/topics/search?title=Goroutines", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list topicListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Goroutines and channels", list.Topics[0].Title)

	rec = env.request(t, http.MethodGet, "/topics/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopicListCacheInvalidatedByWrites(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	env.createTopic(t, token, "First topic before caching")

	var first topicListResponse
	rec := env.request(t, http.MethodGet, "/topics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Equal(t, 1, first.Total)

	// Second read comes from cache; a write must purge it.
	env.createTopic(t, token, "Second topic purges cache")

	var second topicListResponse
	rec = env.request(t, http.MethodGet, "/topics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, 2, second.Total)
}

func TestUpdateAndDeleteTopic(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	topicID := env.createTopic(t, token, "Original topic title")

	rec := env.request(t, http.MethodPut, "/topics/"+topicID, token, map[string]string{
		"title":   "Corrected topic title",
		"message": "The corrected message body for this topic.",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/topics/"+topicID, "", nil)
	var detail topicDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Corrected topic title", detail.Title)

	rec = env.request(t, http.MethodDelete, "/topics/"+topicID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/topics/"+topicID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(t, http.MethodPut, "/topics/"+topicID, token, map[string]string{
		"title":   "Ghost topic title here",
		"message": "Updating a deleted topic should 404 now.",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRepliesAndSolution(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	topicID := env.createTopic(t, token, "Needs an answer soon")

	// Replies are protected even though GET /topics/* is public.
	rec := env.request(t, http.MethodPost, "/topics/"+topicID+"/replies", "", map[string]string{
		"message": "An anonymous reply that must be refused.",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPost, "/topics/"+topicID+"/replies", token, map[string]string{
		"message": "Here is the answer you were looking for.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "create reply failed: %s", rec.Body)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.request(t, http.MethodPost, "/topics/"+topicID+"/replies/"+created.ID+"/solution", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, "mark solution failed: %s", rec.Body)

	rec = env.request(t, http.MethodGet, "/topics/"+topicID, "", nil)
	var detail topicDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, store.TopicSolved, detail.Status)
	require.Len(t, detail.Replies, 1)
	assert.True(t, detail.Replies[0].Solution)
}

func TestMarkSolutionRequiresAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := env.login(t)
	topicID := env.createTopic(t, token, "Someone else's topic")

	rec := env.request(t, http.MethodPost, "/topics/"+topicID+"/replies", token, map[string]string{
		"message": "A reply to be marked by the wrong person.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// A second user without the moderator profile may not mark solutions.
	hash, err := bcrypt.GenerateFromPassword([]byte("other-password-1"), bcrypt.MinCost)
	require.NoError(t, err)
	other := &store.User{
		ID:           uuid.New().String(),
		Name:         "Bia",
		Email:        "bia@example.com",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, env.store.CreateUser(ctx, other))

	otherID, err := uuid.Parse(other.ID)
	require.NoError(t, err)
	otherToken, err := env.tokens.Issue(otherID)
	require.NoError(t, err)

	rec = env.request(t, http.MethodPost, "/topics/"+topicID+"/replies/"+created.ID+"/solution", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCourses(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.request(t, http.MethodGet, "/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "course list is protected")

	rec = env.request(t, http.MethodPost, "/courses", token, map[string]string{
		"name":     "Go Basics",
		"category": "Programming",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "create course failed: %s", rec.Body)

	rec = env.request(t, http.MethodPost, "/courses", token, map[string]string{
		"name":     "Go Basics",
		"category": "Programming",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate course name")

	rec = env.request(t, http.MethodGet, "/courses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var courses []courseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
	assert.Len(t, courses, 2)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.request(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		ID       string   `json:"id"`
		Email    string   `json:"email"`
		Profiles []string `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, env.userID, me.ID)
	assert.Equal(t, testEmail, me.Email)
	assert.Contains(t, me.Profiles, "ROLE_USER")

	rec = env.request(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
