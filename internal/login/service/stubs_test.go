package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/aussiebroadwan/kakaologin/internal/login/store/drivers/memory"
	"github.com/aussiebroadwan/kakaologin/internal/login/store/drivers/sqlite"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// stubProvider counts calls so tests can assert which steps ran.
type stubProvider struct {
	mu sync.Mutex

	token   string
	profile domain.Profile

	exchangeErr error
	profileErr  error
	revokeErr   error

	exchangeCalls int
	profileCalls  int
	revokeCalls   int
	lastCode      string
	lastToken     string
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		token:   "tok-1",
		profile: domain.Profile{ID: 42, DisplayName: "Alice"},
	}
}

func (p *stubProvider) AuthCodeURL() string {
	return "https://kauth.kakao.com/oauth/authorize?client_id=test&response_type=code"
}

func (p *stubProvider) Exchange(ctx context.Context, code string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exchangeCalls++
	p.lastCode = code
	if p.exchangeErr != nil {
		return "", p.exchangeErr
	}
	return p.token, nil
}

func (p *stubProvider) FetchProfile(ctx context.Context, token string) (domain.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profileCalls++
	p.lastToken = token
	if p.profileErr != nil {
		return domain.Profile{}, p.profileErr
	}
	return p.profile, nil
}

func (p *stubProvider) Revoke(ctx context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revokeCalls++
	p.lastToken = token
	return p.revokeErr
}

func (p *stubProvider) calls() (exchange, profile, revoke int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exchangeCalls, p.profileCalls, p.revokeCalls
}

// failingUsers fails every write and finds nothing.
type failingUsers struct{ err error }

func (f failingUsers) UpsertUser(ctx context.Context, p domain.Profile, at time.Time) (int64, error) {
	return 0, f.err
}

func (f failingUsers) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return domain.User{}, f.err
}

func (f failingUsers) ListUsers(ctx context.Context) ([]domain.User, error) { return nil, f.err }

func (f failingUsers) DeleteUser(ctx context.Context, id int64) (bool, error) { return false, f.err }

func (f failingUsers) CountUsers(ctx context.Context) (int64, error) { return 0, f.err }

// faultySessions wraps the memory store and injects write or delete failures.
type faultySessions struct {
	*memory.Sessions
	saveErr   error
	deleteErr error
}

func (f *faultySessions) SaveSession(ctx context.Context, s domain.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Sessions.SaveSession(ctx, s)
}

func (f *faultySessions) DeleteSession(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Sessions.DeleteSession(ctx, id)
}

func newUserStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

// fixture bundles a LoginService wired to stubs plus a log recorder.
type fixture struct {
	provider *stubProvider
	sessions *memory.Sessions
	users    store.Users
	recorder *slogx.Recorder
	login    *LoginService
	now      time.Time
}

func newFixture(t *testing.T, users store.Users) *fixture {
	t.Helper()

	if users == nil {
		users = newUserStore(t).Users()
	}
	f := &fixture{
		provider: newStubProvider(),
		sessions: memory.NewSessions(),
		users:    users,
		recorder: slogx.NewRecorder(),
		now:      time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	f.sessions.WithClock(func() time.Time { return f.now })

	ids := 0
	f.login = &LoginService{
		Provider:   f.provider,
		Sessions:   f.sessions,
		Users:      f.users,
		Logger:     f.recorder.Logger(),
		SessionTTL: time.Hour,
		Now:        func() time.Time { return f.now },
		NewSessionID: func() (string, error) {
			ids++
			return "sid-" + string(rune('0'+ids)), nil
		},
	}
	return f
}

// transitions lists the to-states of every login_transition record.
func (f *fixture) transitions() []string {
	var out []string
	for _, rec := range f.recorder.Filter("login_transition") {
		out = append(out, rec.Attrs["to"].(string))
	}
	return out
}
