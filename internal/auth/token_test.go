// ABOUTME: Tests for JWT issuance and validation

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, time.Hour, "forum-api")
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	return svc
}

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	_, err := NewTokenService([]byte("too short"), time.Hour, "forum-api")
	if err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestNewTokenServiceRejectsZeroTTL(t *testing.T) {
	_, err := NewTokenService(testSecret, 0, "forum-api")
	if err == nil {
		t.Fatal("expected error for zero TTL")
	}
}

func TestNewTokenServiceRejectsEmptyIssuer(t *testing.T) {
	_, err := NewTokenService(testSecret, time.Hour, "")
	if err == nil {
		t.Fatal("expected error for empty issuer")
	}
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()

	token, err := svc.Issue(userID)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	subject, err := svc.SubjectOf(claims)
	if err != nil {
		t.Fatalf("SubjectOf failed: %v", err)
	}
	if subject != userID {
		t.Errorf("subject = %s, want %s", subject, userID)
	}

	if iss, _ := claims["iss"].(string); iss != "forum-api" {
		t.Errorf("iss = %q, want forum-api", iss)
	}
}

func TestValidateIsRepeatable(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Validate(token); err != nil {
			t.Fatalf("Validate #%d failed: %v", i+1, err)
		}
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	for _, input := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := svc.Validate(input)
		if !errors.Is(err, ErrMalformedToken) {
			t.Errorf("Validate(%q) = %v, want ErrMalformedToken", input, err)
		}
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the payload; the recomputed signature no longer matches.
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = svc.Validate(tampered)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Validate(tampered) = %v, want ErrSignatureInvalid", err)
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	svc := newTestService(t)
	other, err := NewTokenService([]byte("ffffffffffffffffffffffffffffffff"), time.Hour, "forum-api")
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}

	token, err := other.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = svc.Validate(token)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Validate(wrong key) = %v, want ErrSignatureInvalid", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := newTestService(t)

	claims := jwt.MapClaims{
		"iss": "forum-api",
		"sub": uuid.New().String(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	_, err = svc.Validate(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Validate(expired) = %v, want ErrExpiredToken", err)
	}
}

func TestTamperedExpiredTokenFailsOnSignature(t *testing.T) {
	// A tampered token must never be reported as merely expired: the
	// signature check wins regardless of claim contents.
	svc := newTestService(t)

	claims := jwt.MapClaims{
		"iss": "forum-api",
		"sub": uuid.New().String(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("ffffffffffffffffffffffffffffffff"))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	_, err = svc.Validate(token)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Validate(tampered expired) = %v, want ErrSignatureInvalid", err)
	}
	if errors.Is(err, ErrExpiredToken) {
		t.Error("tampered token reported as expired")
	}
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	svc := newTestService(t)

	claims := jwt.MapClaims{
		"iss": "forum-api",
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := svc.Validate(token); err == nil {
		t.Fatal("expected unsigned token to be rejected")
	}
}

func TestValidateRejectsOtherHMACVariant(t *testing.T) {
	svc := newTestService(t)

	claims := jwt.MapClaims{
		"iss": "forum-api",
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := svc.Validate(token); err == nil {
		t.Fatal("expected HS384 token to be rejected")
	}
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	svc := newTestService(t)
	other, err := NewTokenService(testSecret, time.Hour, "someone-else")
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}

	token, err := other.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := svc.Validate(token); err == nil {
		t.Fatal("expected wrong-issuer token to be rejected")
	}
}

func TestSubjectOfRejectsMissingOrBadSub(t *testing.T) {
	svc := newTestService(t)

	cases := []jwt.MapClaims{
		{},
		{"sub": ""},
		{"sub": 42},
		{"sub": "not-a-uuid"},
	}
	for _, claims := range cases {
		if _, err := svc.SubjectOf(claims); !errors.Is(err, ErrInvalidSubject) {
			t.Errorf("SubjectOf(%v) = %v, want ErrInvalidSubject", claims, err)
		}
	}
}
