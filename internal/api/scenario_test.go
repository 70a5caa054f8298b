// ABOUTME: End-to-end lifecycle: login, use the token, then expiry and tampering

package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// Login and use the token on a protected route.
	token := env.login(t)
	rec := env.request(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// An expired token signed with the real key is refused exactly like a
	// missing one: 401, empty body.
	expiredClaims := jwt.MapClaims{
		"iss": "forum-api",
		"sub": env.userID,
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	withExpired := env.request(t, http.MethodGet, "/me", expired, nil)
	withNothing := env.request(t, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, withExpired.Code)
	assert.Equal(t, withNothing.Code, withExpired.Code)
	assert.Equal(t, withNothing.Body.String(), withExpired.Body.String())

	// A tampered token gets the same treatment.
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	withTampered := env.request(t, http.MethodGet, "/me", tampered, nil)
	assert.Equal(t, http.StatusUnauthorized, withTampered.Code)
	assert.Empty(t, withTampered.Body.Bytes())

	// Bad credentials on public routes do not block the request.
	publicWithTampered := env.request(t, http.MethodGet, "/topics", tampered, nil)
	assert.Equal(t, http.StatusOK, publicWithTampered.Code)

	// A token for a user deleted after issuance stops working.
	ghostID := uuid.New()
	ghostToken, err := env.tokens.Issue(ghostID)
	require.NoError(t, err)
	withGhost := env.request(t, http.MethodGet, "/me", ghostToken, nil)
	assert.Equal(t, http.StatusUnauthorized, withGhost.Code)
}

func TestLoginResponseShape(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/auth", "", map[string]string{
		"email":    testEmail,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Contains(t, resp, "token")
	assert.Equal(t, "Bearer", resp["scheme"])

	// Three dot-separated base64 sections.
	tokenStr, _ := resp["token"].(string)
	assert.Len(t, strings.Split(tokenStr, "."), 3)
}
