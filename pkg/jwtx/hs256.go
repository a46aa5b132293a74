package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeySize is the smallest accepted HMAC key.
const MinKeySize = 32

// HS256 signs and verifies session cookies with a shared HMAC-SHA256 key.
type HS256 struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewHS256 returns a signer/verifier bound to issuer.
func NewHS256(key []byte, issuer string) (*HS256, error) {
	if len(key) < MinKeySize {
		return nil, ErrWeakKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &HS256{key: k, issuer: issuer, now: time.Now}, nil
}

// WithClock overrides the time source used for expiry checks.
func (h *HS256) WithClock(now func() time.Time) *HS256 {
	h.now = now
	return h
}

// Alg returns the JOSE algorithm name.
func (h *HS256) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign serializes claims into a compact JWS.
func (h *HS256) Sign(c CookieClaims) (string, error) {
	if c.SID == "" {
		return "", ErrMissingSID
	}
	if c.Issuer == "" {
		c.Issuer = h.issuer
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	s, err := tok.SignedString(h.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return s, nil
}

// Verify checks signature, issuer and expiry and returns the claims.
func (h *HS256) Verify(tokenStr string) (CookieClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.now),
	)

	var claims CookieClaims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return h.key, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return CookieClaims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return CookieClaims{}, ErrMalformed
	default:
		return CookieClaims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return CookieClaims{}, err
	}
	if claims.SID == "" {
		return CookieClaims{}, ErrMissingSID
	}
	return claims, nil
}
