package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/kakaologin/pkg/jwtx"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
)

// CookieConfig holds the session cookie flags. Both server modes share it.
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
	TTL      time.Duration
}

// ParseSameSite maps lax, strict and none to their http.SameSite values.
func ParseSameSite(s string) (http.SameSite, bool) {
	switch strings.ToLower(s) {
	case "lax", "":
		return http.SameSiteLaxMode, true
	case "strict":
		return http.SameSiteStrictMode, true
	case "none":
		return http.SameSiteNoneMode, true
	default:
		return http.SameSiteDefaultMode, false
	}
}

// SessionCookies carries a session id to the browser inside an HS256 JWT,
// so a forged or expired cookie never reaches the session store.
type SessionCookies struct {
	Config CookieConfig
	Signer *jwtx.HS256
	Now    func() time.Time
}

func (c *SessionCookies) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Set writes a signed cookie naming sid.
func (c *SessionCookies) Set(w http.ResponseWriter, sid string) error {
	value, err := c.Signer.Sign(jwtx.NewCookieClaims(sid, "", c.Config.TTL, c.now()))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Config.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.Config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Config.Secure,
		SameSite: c.Config.SameSite,
	})
	return nil
}

// Clear expires the cookie.
func (c *SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Config.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Config.Secure,
		SameSite: c.Config.SameSite,
	})
}

// SessionID returns the session id in the request's cookie, or "" when the
// cookie is absent or does not verify.
func (c *SessionCookies) SessionID(r *http.Request) string {
	cookie, err := r.Cookie(c.Config.Name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	claims, err := c.Signer.Verify(cookie.Value)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("ignoring session cookie", "error", err.Error())
		return ""
	}
	return claims.SID
}
