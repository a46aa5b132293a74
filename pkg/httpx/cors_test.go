package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/kakaologin/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestCORSWithOrigins(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := httpx.CORSWithOrigins(httpx.CORSConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
	})(ok)

	t.Run("no origin passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/user", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allowed origin gets credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/logout", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Requested-With")
	})

	t.Run("unknown origin is refused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSSameOriginPassesThrough(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := httpx.CORSWithOrigins(httpx.CORSConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
	})(ok)

	tests := []struct {
		name    string
		method  string
		target  string
		origin  string
		headers map[string]string
		want    int
	}{
		{"logout from own page", http.MethodPost, "http://login.example:8080/auth/logout", "http://login.example:8080", nil, http.StatusOK},
		{"delete from admin page", http.MethodDelete, "http://login.example:8080/api/users/7", "http://login.example:8080", nil, http.StatusOK},
		{"forwarded https", http.MethodPost, "http://login.example/auth/logout", "https://login.example", map[string]string{"X-Forwarded-Proto": "https"}, http.StatusOK},
		{"scheme mismatch", http.MethodPost, "http://login.example/auth/logout", "https://login.example", nil, http.StatusForbidden},
		{"port mismatch", http.MethodPost, "http://login.example:8080/auth/logout", "http://login.example:9090", nil, http.StatusForbidden},
		{"other host", http.MethodPost, "http://login.example/auth/logout", "http://evil.example", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("Origin", tt.origin)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.want, rec.Code)
			require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSameOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:8080/", nil)

	require.True(t, httpx.SameOrigin(req, "http://127.0.0.1:8080"))
	require.False(t, httpx.SameOrigin(req, "null"))
	require.False(t, httpx.SameOrigin(req, "://bad"))
	require.False(t, httpx.SameOrigin(req, "http://127.0.0.1"))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}
