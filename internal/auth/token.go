// ABOUTME: JWT issuance and validation for the forum's stateless bearer auth
// ABOUTME: Uses HS256 signing with a configured secret, TTL, and issuer

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the minimum accepted signing secret length in bytes.
// HS256 secrets shorter than the hash output weaken the signature.
const MinSecretLength = 32

// Token errors
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrSignatureInvalid = errors.New("token signature mismatch")
	ErrExpiredToken     = errors.New("token expired")
	ErrInvalidSubject   = errors.New("invalid subject claim")
)

// TokenService issues and validates the signed bearer tokens returned by
// POST /auth. Tokens are self-contained: validation needs no server-side
// session state, only the configured secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenService creates a token service with the given signing secret,
// token lifetime, and issuer name.
func NewTokenService(secret []byte, ttl time.Duration, issuer string) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	if issuer == "" {
		return nil, fmt.Errorf("issuer must not be empty")
	}
	return &TokenService{secret: secret, ttl: ttl, issuer: issuer}, nil
}

// Issue creates a signed token for the given user ID, expiring after the
// configured TTL.
func (s *TokenService) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate decodes the token, recomputes the signature with the configured
// secret, and checks expiry and issuer. The signing algorithm is pinned to
// HS256; the alg declared in the token header is never trusted. Returns the
// claims on success or one of the sentinel token errors.
func (s *TokenService) Validate(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	if !token.Valid {
		return nil, ErrMalformedToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformedToken
	}

	return claims, nil
}

// SubjectOf parses the "sub" claim back into a user ID.
func (s *TokenService) SubjectOf(claims jwt.MapClaims) (uuid.UUID, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return uuid.Nil, fmt.Errorf("%w: sub missing", ErrInvalidSubject)
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidSubject, err)
	}
	return id, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
