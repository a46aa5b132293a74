package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/aussiebroadwan/kakaologin/pkg/cryptox"
	"github.com/aussiebroadwan/kakaologin/pkg/idx"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
)

// State is a step of a login attempt.
type State string

const (
	StateAwaitingCode         State = "awaiting_code"
	StateExchangingToken      State = "exchanging_token"
	StateFetchingProfile      State = "fetching_profile"
	StateSessionEstablished   State = "session_established"
	StatePersistenceAttempted State = "persistence_attempted"
	StateComplete             State = "complete"
	StateFailed               State = "failed"
)

// DefaultSessionTTL matches the session cookie lifetime.
const DefaultSessionTTL = 24 * time.Hour

// CallbackParams are the query parameters the provider redirects back with.
type CallbackParams struct {
	Code             string
	Error            string
	ErrorDescription string
}

func CallbackParamsFromQuery(q url.Values) CallbackParams {
	return CallbackParams{
		Code:             q.Get("code"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// LoginResult is what a successful login hands back to the adapters. It
// never carries the access token.
type LoginResult struct {
	AttemptID idx.ID
	SessionID string
	Profile   domain.Profile
	LoginAt   time.Time
	ExpiresAt time.Time
	Warnings  []Warning
}

// LoginService drives one authorization-code login from callback to
// session. Steps run strictly in sequence; the only shared state is in
// Sessions and Users.
type LoginService struct {
	Provider   IdentityProvider
	Sessions   store.Sessions
	Users      store.Users
	Logger     *slog.Logger // falls back to the request logger
	SessionTTL time.Duration

	Now          func() time.Time
	NewSessionID func() (string, error)
}

// BeginLogin returns the provider URL the browser should be sent to.
func (s *LoginService) BeginLogin() string {
	return s.Provider.AuthCodeURL()
}

// HandleCallback runs the login state machine. previousSessionID is the
// session the browser already held, if any; it is replaced on success.
func (s *LoginService) HandleCallback(ctx context.Context, params CallbackParams, previousSessionID string) (LoginResult, error) {
	a := &attempt{
		id:    idx.New(),
		state: StateAwaitingCode,
		log:   s.logger(ctx),
	}

	if params.Error != "" {
		detail := "provider returned " + params.Error
		if params.ErrorDescription != "" {
			detail += ": " + params.ErrorDescription
		}
		return LoginResult{}, a.fail(ErrInvalidCallback, detail, nil)
	}
	if params.Code == "" {
		return LoginResult{}, a.fail(ErrInvalidCallback, "missing code parameter", nil)
	}

	a.to(StateExchangingToken, "code_prefix", codePrefix(params.Code))
	token, err := s.Provider.Exchange(ctx, params.Code)
	if err != nil {
		return LoginResult{}, a.fail(ErrExchange, "", err)
	}

	a.to(StateFetchingProfile)
	profile, err := s.Provider.FetchProfile(ctx, token)
	if err != nil {
		return LoginResult{}, a.fail(ErrProfileFetch, "", err)
	}

	a.to(StateSessionEstablished, "user_id", profile.ID)
	sess, err := s.newSession(profile, token)
	if err != nil {
		return LoginResult{}, a.fail(ErrSessionWrite, "generate session id", err)
	}
	if err := s.Sessions.SaveSession(ctx, sess); err != nil {
		return LoginResult{}, a.fail(ErrSessionWrite, "", err)
	}

	res := LoginResult{
		AttemptID: a.id,
		SessionID: sess.ID,
		Profile:   profile,
		LoginAt:   sess.LoginAt,
		ExpiresAt: sess.ExpiresAt,
	}

	if previousSessionID != "" && previousSessionID != sess.ID {
		if err := s.Sessions.DeleteSession(ctx, previousSessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
			res.Warnings = append(res.Warnings, a.warn("replace_session", err))
		}
	}

	a.to(StatePersistenceAttempted)
	if _, err := s.Users.UpsertUser(ctx, profile, sess.LoginAt); err != nil {
		res.Warnings = append(res.Warnings, a.warn("persistence", fmt.Errorf("%w: %v", ErrPersistence, err)))
	}

	a.to(StateComplete, "warnings", len(res.Warnings))
	return res, nil
}

// DiscardSession removes a session that was saved but never reached the
// browser. Failures are logged only.
func (s *LoginService) DiscardSession(ctx context.Context, id string) {
	if err := s.Sessions.DeleteSession(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger(ctx).Warn("failed to discard undelivered session",
			"session", cryptox.FingerprintToken(id),
			"error", err,
		)
	}
}

func (s *LoginService) newSession(profile domain.Profile, token string) (domain.Session, error) {
	newID := s.NewSessionID
	if newID == nil {
		newID = func() (string, error) { return cryptox.GenerateToken(cryptox.TokenSize256) }
	}
	id, err := newID()
	if err != nil {
		return domain.Session{}, err
	}

	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	now := s.now()
	return domain.Session{
		ID:          id,
		Profile:     profile,
		AccessToken: token,
		LoginAt:     now,
		ExpiresAt:   now.Add(ttl),
	}, nil
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *LoginService) logger(ctx context.Context) *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slogx.FromContext(ctx)
}

// attempt tracks one pass through the state machine and logs every
// transition as a login_transition record.
type attempt struct {
	id    idx.ID
	state State
	log   *slog.Logger
}

func (a *attempt) to(next State, args ...any) {
	attrs := append([]any{"attempt_id", a.id.String(), "from", string(a.state), "to", string(next)}, args...)
	a.log.Info("login_transition", attrs...)
	a.state = next
}

func (a *attempt) fail(kind error, detail string, cause error) error {
	attrs := []any{"attempt_id", a.id.String(), "from", string(a.state), "to", string(StateFailed), "reason", kind.Error()}
	if cause != nil {
		attrs = append(attrs, "error", cause.Error())
	} else if detail != "" {
		attrs = append(attrs, "error", detail)
	}
	a.log.Warn("login_transition", attrs...)
	a.state = StateFailed
	return newLoginError(kind, detail, cause)
}

func (a *attempt) warn(stage string, err error) Warning {
	a.log.Warn("login_warning", "attempt_id", a.id.String(), "stage", stage, "error", err.Error())
	return Warning{Stage: stage, Err: err}
}

// codePrefix keeps enough of an authorization code to correlate logs
// without making the code replayable from them.
func codePrefix(code string) string {
	const n = 10
	if len(code) <= n {
		return code[:len(code)/2] + "..."
	}
	return code[:n] + "..."
}
