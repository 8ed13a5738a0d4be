// Package token issues and validates the signed, stateless session tokens
// used to authenticate API requests.
//
// Tokens are compact JWS strings (HS512) carrying the subject (user ID),
// a fixed issuer, issued-at and expiry claims. Nothing is stored on the
// server: a token is valid iff its signature verifies against the signing
// key and the current time is strictly before its expiry.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Issuer is the value of the "iss" claim of every token.
	Issuer = "todo app"
	// DefaultTTL is how long an issued token stays valid.
	DefaultTTL = 24 * time.Hour
)

var (
	// ErrMalformedToken is returned when a token cannot be parsed or its
	// claims are incomplete.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature is returned when the signature does not match
	// (tampered token, wrong key or unexpected algorithm).
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrTokenExpired is returned for correctly signed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrEmptySubject is returned by Issue when no user ID is given.
	ErrEmptySubject = errors.New("empty token subject")
	// ErrEmptyKey is returned by NewService when the signing key is empty.
	ErrEmptyKey = errors.New("empty signing key")
)

var signingMethod = jwt.SigningMethodHS512

// Service issues and validates session tokens. It is safe for concurrent
// use: the key is copied on construction and never mutated.
type Service struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock overrides the time source used for issued-at, expiry and
// validation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service signing with key.
func NewService(key []byte, opts ...Option) (*Service, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	s := &Service{
		key: append([]byte(nil), key...),
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a signed token for an already authenticated user.
// It does not verify credentials.
func (s *Service) Issue(userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptySubject
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies tokenString and returns the user ID it was issued for.
// The returned error wraps exactly one of ErrMalformedToken,
// ErrInvalidSignature or ErrTokenExpired.
func (s *Service) Validate(tokenString string) (string, error) {
	if !canonicalSignature(tokenString) {
		return "", ErrInvalidSignature
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithStrictDecoding(),
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		default:
			return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return claims.Subject, nil
}

// canonicalSignature reports false when the header and payload segments
// decode but the signature segment is not canonical unpadded base64url.
// Lenient decoding ignores the trailing bits of the last character, so a
// rewritten signature could otherwise decode to the original bytes.
// Anything else is left to the parser.
func canonicalSignature(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return true
	}
	enc := base64.RawURLEncoding.Strict()
	if _, err := enc.DecodeString(parts[0]); err != nil {
		return true
	}
	if _, err := enc.DecodeString(parts[1]); err != nil {
		return true
	}
	_, err := enc.DecodeString(parts[2])
	return err == nil
}
