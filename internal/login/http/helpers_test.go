package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/aussiebroadwan/kakaologin/internal/login/service"
	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/aussiebroadwan/kakaologin/internal/login/store/drivers/memory"
	"github.com/aussiebroadwan/kakaologin/internal/login/store/drivers/sqlite"
	"github.com/aussiebroadwan/kakaologin/pkg/httpx"
	"github.com/aussiebroadwan/kakaologin/pkg/jwtx"
	"github.com/aussiebroadwan/kakaologin/pkg/loginsdk"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// fakeProvider hands out one profile per code and records revokes.
type fakeProvider struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
	revoked  []string
	failWith error
}

func (p *fakeProvider) AuthCodeURL() string {
	return "https://kauth.kakao.com/oauth/authorize?client_id=test&response_type=code"
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return "", p.failWith
	}
	if _, ok := p.profiles[code]; !ok {
		return "", errors.New("invalid_grant")
	}
	return "token-" + code, nil
}

func (p *fakeProvider) FetchProfile(ctx context.Context, token string) (domain.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profiles[token[len("token-"):]], nil
}

func (p *fakeProvider) Revoke(ctx context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = append(p.revoked, token)
	return nil
}

type harness struct {
	router   *Router
	provider *fakeProvider
	sessions *memory.Sessions
	store    store.Store
	server   *httptest.Server
	client   *loginsdk.Client
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	mode       string
	production bool
	store      store.Store
}

func withMode(mode string) harnessOption {
	return func(c *harnessConfig) { c.mode = mode }
}

func withProduction() harnessOption {
	return func(c *harnessConfig) { c.production = true }
}

func withStore(st store.Store) harnessOption {
	return func(c *harnessConfig) { c.store = st }
}

func newTestCookies(t *testing.T) *SessionCookies {
	t.Helper()

	signer, err := jwtx.NewHS256(testKey, "kakaologin")
	require.NoError(t, err)
	return &SessionCookies{
		Config: CookieConfig{Name: "kakaologin.sid", SameSite: http.SameSiteLaxMode, TTL: time.Hour},
		Signer: signer,
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	cfg := harnessConfig{mode: ModeAPI}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.store == nil {
		st, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "http.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		require.NoError(t, st.ApplyMigrations())
		cfg.store = st
	}

	h := &harness{
		provider: &fakeProvider{profiles: map[string]domain.Profile{
			"code-alice": {ID: 1001, DisplayName: "Alice", Email: "alice@example.com"},
			"code-bob":   {ID: 1002, DisplayName: "Bob"},
		}},
		sessions: memory.NewSessions(),
		store:    cfg.store,
	}

	logger := slogx.Discard()
	r := NewRouter(cfg.mode, "test", cfg.store, newTestCookies(t), httpx.CORSConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
	}, logger)
	r.Production = cfg.production
	r.ModerateLimit = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	r.LenientLimit = r.ModerateLimit
	r.LoginService = &service.LoginService{
		Provider:   h.provider,
		Sessions:   h.sessions,
		Users:      cfg.store.Users(),
		Logger:     logger,
		SessionTTL: time.Hour,
	}
	r.SessionService = &service.SessionService{Sessions: h.sessions, Provider: h.provider, Logger: logger}
	r.UserService = &service.UserService{Users: cfg.store.Users()}
	r.ApplyRoutes()
	h.router = r

	h.server = httptest.NewServer(r)
	t.Cleanup(h.server.Close)

	client, err := loginsdk.NewClient(h.server.URL)
	require.NoError(t, err)
	h.client = client
	return h
}

// do runs a single request straight through the router.
func (h *harness) do(method, target string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}
