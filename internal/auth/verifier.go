package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken indicates a missing or malformed Authorization header.
var ErrNoToken = errors.New("no bearer token provided")

// ErrInvalidToken indicates a token that was present but failed validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity claims extracted from a verified bearer token.
// They live for the duration of one request and are never persisted.
type Claims struct {
	Subject string
	Email   string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Verifier validates bearer credentials issued by the identity provider.
type Verifier struct {
	secret string
}

// NewVerifier returns a Verifier bound to the provider's signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify parses and validates a bearer token, yielding the caller's claims.
func (v *Verifier) Verify(token string) (Claims, error) {
	if strings.TrimSpace(v.secret) == "" {
		return Claims{}, errors.New("jwt secret not configured")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &tokenClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(v.secret), nil
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Email == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
	}, nil
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
