package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
)

// SessionService answers "who is logged in" and tears sessions down.
type SessionService struct {
	Sessions store.Sessions
	Provider IdentityProvider
	Logger   *slog.Logger
}

// LogoutResult reports what logout did. Warnings carry a failed remote
// revoke; the local session is gone either way.
type LogoutResult struct {
	Profile  domain.Profile
	Warnings []Warning
}

// CurrentUser returns the session behind sessionID. A missing, unknown or
// expired session is ErrAuthenticationRequired.
func (s *SessionService) CurrentUser(ctx context.Context, sessionID string) (domain.Session, error) {
	if sessionID == "" {
		return domain.Session{}, newLoginError(ErrAuthenticationRequired, "no session cookie", nil)
	}
	sess, err := s.Sessions.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, newLoginError(ErrAuthenticationRequired, "session not found or expired", nil)
	}
	if err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// Logout revokes the access token at the provider, best-effort, then
// destroys the local session. Only the local destroy can fail the call.
func (s *SessionService) Logout(ctx context.Context, sessionID string) (LogoutResult, error) {
	l := s.logger(ctx)

	sess, err := s.CurrentUser(ctx, sessionID)
	if err != nil {
		return LogoutResult{}, err
	}
	res := LogoutResult{Profile: sess.Profile}

	if sess.AccessToken != "" {
		if err := s.Provider.Revoke(ctx, sess.AccessToken); err != nil {
			l.Warn("provider revoke failed", "user_id", sess.Profile.ID, "error", err.Error())
			res.Warnings = append(res.Warnings, Warning{Stage: "revoke", Err: errors.Join(ErrRevoke, err)})
		}
	}

	// already gone is the outcome logout wants
	if err := s.Sessions.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		l.Error("failed to destroy session", "user_id", sess.Profile.ID, "error", err.Error())
		return res, newLoginError(ErrSessionDestroy, "", err)
	}

	l.Info("user logged out", "user_id", sess.Profile.ID, "warnings", len(res.Warnings))
	return res, nil
}

func (s *SessionService) logger(ctx context.Context) *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slogx.FromContext(ctx)
}

