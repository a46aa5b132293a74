package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrMissingSID = errors.New("jwtx: missing session id")
	ErrWeakKey    = errors.New("jwtx: signing key shorter than 32 bytes")
)

// CookieClaims is the payload of a session cookie. The cookie only names a
// server-side session; it never carries profile data or provider tokens.
type CookieClaims struct {
	jwt.RegisteredClaims

	// SID is the opaque session identifier.
	SID string `json:"sid"`
}

// NewCookieClaims builds claims for sid valid for ttl from now.
func NewCookieClaims(sid, issuer string, ttl time.Duration, now time.Time) CookieClaims {
	return CookieClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SID: sid,
	}
}

// ValidateIssuer checks iss when expected is non-empty.
func (c *CookieClaims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry reports ErrExpired once now has passed exp.
func (c *CookieClaims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil || !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
