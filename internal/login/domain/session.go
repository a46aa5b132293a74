package domain

import "time"

// Session is the server-side record behind a browser's session cookie.
type Session struct {
	ID          string
	Profile     Profile
	AccessToken string // never leaves the server
	LoginAt     time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
