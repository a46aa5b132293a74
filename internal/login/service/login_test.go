package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/aussiebroadwan/kakaologin/internal/login/provider"
	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/aussiebroadwan/kakaologin/internal/login/store/drivers/memory"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHandleCallbackInvalidCallback(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params CallbackParams
	}{
		{name: "error only", params: CallbackParams{Error: "access_denied", ErrorDescription: "User denied access"}},
		{name: "error wins over code", params: CallbackParams{Code: "abc123", Error: "access_denied"}},
		{name: "missing code and error", params: CallbackParams{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, failingUsers{err: errBoom})

			_, err := f.login.HandleCallback(context.Background(), tc.params, "")
			require.ErrorIs(t, err, ErrInvalidCallback)
			require.Equal(t, ErrInvalidCallback, KindOf(err))

			exchange, profile, revoke := f.provider.calls()
			require.Zero(t, exchange, "provider must not be called")
			require.Zero(t, profile)
			require.Zero(t, revoke)

			recs := f.recorder.Filter("login_transition")
			require.Len(t, recs, 1)
			require.Equal(t, "awaiting_code", recs[0].Attrs["from"])
			require.Equal(t, "failed", recs[0].Attrs["to"])
			require.Equal(t, "invalid_callback", recs[0].Attrs["reason"])
			require.Zero(t, f.sessions.Len())
		})
	}
}

func TestCallbackParamsFromQuery(t *testing.T) {
	t.Parallel()

	p := CallbackParamsFromQuery(map[string][]string{
		"code":              {"abc123"},
		"error":             {"access_denied"},
		"error_description": {"nope"},
	})
	require.Equal(t, CallbackParams{Code: "abc123", Error: "access_denied", ErrorDescription: "nope"}, p)
}

func TestHandleCallbackSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	res, err := f.login.HandleCallback(ctx, CallbackParams{Code: "abc123"}, "")
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	require.Equal(t, domain.Profile{ID: 42, DisplayName: "Alice"}, res.Profile)
	require.Equal(t, f.now, res.LoginAt)
	require.Equal(t, f.now.Add(time.Hour), res.ExpiresAt)
	require.False(t, res.AttemptID.IsZero())

	require.Equal(t, "abc123", f.provider.lastCode)
	require.Equal(t, "tok-1", f.provider.lastToken)

	sess, err := f.sessions.GetSession(ctx, res.SessionID)
	require.NoError(t, err)
	require.Equal(t, res.Profile, sess.Profile)
	require.Equal(t, "tok-1", sess.AccessToken)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "tok-1")

	require.Equal(t, []string{
		"exchanging_token",
		"fetching_profile",
		"session_established",
		"persistence_attempted",
		"complete",
	}, f.transitions())

	for _, rec := range f.recorder.Records() {
		for _, v := range rec.Attrs {
			require.NotEqual(t, "tok-1", v, "access token leaked into %q", rec.Message)
			require.NotEqual(t, "abc123", v, "full code leaked into %q", rec.Message)
		}
	}
}

func TestHandleCallbackProviderFailures(t *testing.T) {
	t.Parallel()

	t.Run("exchange", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		f.provider.exchangeErr = errors.Join(provider.ErrExchange, errors.New("status 400"))

		_, err := f.login.HandleCallback(context.Background(), CallbackParams{Code: "used-code"}, "")
		require.ErrorIs(t, err, ErrExchange)
		require.ErrorIs(t, err, provider.ErrExchange)

		exchange, profile, _ := f.provider.calls()
		require.Equal(t, 1, exchange, "codes are single use and never retried")
		require.Zero(t, profile)
		require.Equal(t, []string{"exchanging_token", "failed"}, f.transitions())
		require.Zero(t, f.sessions.Len())
	})

	t.Run("profile", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		f.provider.profileErr = provider.ErrProfileFetch

		_, err := f.login.HandleCallback(context.Background(), CallbackParams{Code: "abc123"}, "")
		require.ErrorIs(t, err, ErrProfileFetch)
		require.Equal(t, []string{"exchanging_token", "fetching_profile", "failed"}, f.transitions())
		require.Zero(t, f.sessions.Len())
	})

	t.Run("timeout surfaces as the call's kind", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		f.provider.exchangeErr = context.DeadlineExceeded

		_, err := f.login.HandleCallback(context.Background(), CallbackParams{Code: "abc123"}, "")
		require.Equal(t, ErrExchange, KindOf(err))
	})
}

func TestHandleCallbackSessionWriteFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.login.Sessions = &faultySessions{Sessions: f.sessions, saveErr: errBoom}

	_, err := f.login.HandleCallback(context.Background(), CallbackParams{Code: "abc123"}, "")
	require.ErrorIs(t, err, ErrSessionWrite)
	require.ErrorIs(t, err, errBoom)

	last := f.recorder.Filter("login_transition")
	require.Equal(t, "session_established", last[len(last)-1].Attrs["from"])
	require.Equal(t, "session_write_failed", last[len(last)-1].Attrs["reason"])

	count, err := f.users.CountUsers(context.Background())
	require.NoError(t, err)
	require.Zero(t, count, "nothing is persisted without a session")
}

func TestHandleCallbackPersistenceFailureIsNonFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, failingUsers{err: errBoom})

	res, err := f.login.HandleCallback(ctx, CallbackParams{Code: "abc123"}, "")
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	require.Equal(t, "persistence", res.Warnings[0].Stage)
	require.ErrorIs(t, res.Warnings[0].Err, ErrPersistence)

	_, err = f.sessions.GetSession(ctx, res.SessionID)
	require.NoError(t, err)

	require.Equal(t, "complete", f.transitions()[len(f.transitions())-1])
	require.Len(t, f.recorder.Filter("login_warning"), 1)
}

func TestHandleCallbackUnavailableStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t, store.NewUnavailable(store.Info{Driver: "sqlite"}, errBoom).Users())
	res, err := f.login.HandleCallback(context.Background(), CallbackParams{Code: "abc123"}, "")
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	require.ErrorIs(t, res.Warnings[0].Err, ErrPersistence)
}

func TestHandleCallbackReplacesPreviousSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	first, err := f.login.HandleCallback(ctx, CallbackParams{Code: "code-1"}, "")
	require.NoError(t, err)

	second, err := f.login.HandleCallback(ctx, CallbackParams{Code: "code-2"}, first.SessionID)
	require.NoError(t, err)
	require.NotEqual(t, first.SessionID, second.SessionID)
	require.Empty(t, second.Warnings)

	_, err = f.sessions.GetSession(ctx, first.SessionID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Equal(t, 1, f.sessions.Len())

	t.Run("unknown previous session is ignored", func(t *testing.T) {
		res, err := f.login.HandleCallback(ctx, CallbackParams{Code: "code-3"}, "forged")
		require.NoError(t, err)
		require.Empty(t, res.Warnings)
	})
}

func TestDiscardSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil)

	res, err := f.login.HandleCallback(ctx, CallbackParams{Code: "code-1"}, "")
	require.NoError(t, err)

	f.login.DiscardSession(ctx, res.SessionID)
	_, err = f.sessions.GetSession(ctx, res.SessionID)
	require.ErrorIs(t, err, store.ErrNotFound)

	f.login.DiscardSession(ctx, res.SessionID)
	require.Empty(t, f.recorder.Filter("failed to discard undelivered session"))

	t.Run("delete failure is logged", func(t *testing.T) {
		rec := slogx.NewRecorder()
		login := &LoginService{
			Sessions: &faultySessions{Sessions: memory.NewSessions(), deleteErr: errors.New("redis down")},
			Logger:   rec.Logger(),
		}

		login.DiscardSession(ctx, "sid-x")
		require.Len(t, rec.Filter("failed to discard undelivered session"), 1)
	})
}

// A callback with code=abc123, token tok-1 and profile {42, Alice} ends
// with a session, a sanitized result and a persisted row.
func TestLoginEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := newUserStore(t).Users()
	f := newFixture(t, users)

	res, err := f.login.HandleCallback(ctx, CallbackParams{Code: "abc123"}, "")
	require.NoError(t, err)

	sess, err := f.sessions.GetSession(ctx, res.SessionID)
	require.NoError(t, err)
	require.Equal(t, int64(42), sess.Profile.ID)
	require.Equal(t, "Alice", sess.Profile.DisplayName)

	raw, err := json.Marshal(res.Profile)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "accessToken")
	require.NotContains(t, string(raw), "tok-1")

	row, err := users.GetUser(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "Alice", row.DisplayName)
	require.True(t, row.LastLogin.Equal(f.now))
}

func TestCodePrefix(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0123456789...", codePrefix("0123456789abcdef"))
	require.Equal(t, "abc...", codePrefix("abc123"))
	require.Equal(t, "...", codePrefix(""))
}
