package httpx

import (
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket refilled at RequestsPerWindow per
// Window, holding at most Burst tokens.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

func (c RateLimitConfig) limit() rate.Limit {
	if c.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// Rate limit profiles, overridable through
// RATELIMIT_{MODERATE,LENIENT}_{REQUESTS,WINDOW_SEC,BURST}.
var (
	// ModerateLimit guards login start, callback, logout and deletes.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards reads and health probes.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

func init() {
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
}

// ParseRateLimitFromEnv overlays RATELIMIT_{prefix}_{REQUESTS,WINDOW_SEC,BURST}
// onto def. Values that are not positive integers are ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	overrides := []struct {
		suffix string
		apply  func(n int)
	}{
		{"REQUESTS", func(n int) { cfg.RequestsPerWindow = n }},
		{"WINDOW_SEC", func(n int) { cfg.Window = time.Duration(n) * time.Second }},
		{"BURST", func(n int) { cfg.Burst = n }},
	}

	for _, o := range overrides {
		raw, ok := os.LookupEnv("RATELIMIT_" + prefix + "_" + o.suffix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
			o.apply(n)
		}
	}
	return cfg
}

// KeyExtractor picks the bucket a request is charged against. An empty key
// bypasses limiting.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client address, preferring the first
// X-Forwarded-For hop, then X-Real-IP, then the connection peer.
func IPKeyExtractor(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

const bucketIdleTTL = 10 * time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// bucketSet holds one limiter per key. Buckets idle for bucketIdleTTL are
// swept on the next insert.
type bucketSet struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newBucketSet(cfg RateLimitConfig) *bucketSet {
	return &bucketSet{
		cfg:       cfg,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// take consumes one token for key. When the bucket is empty it reports how
// long until the next token is available.
func (s *bucketSet) take(key string, now time.Time) (bool, time.Duration) {
	s.mu.Lock()
	b, ok := s.buckets[key]
	if !ok {
		s.sweep(now)
		b = &bucket{lim: rate.NewLimiter(s.cfg.limit(), s.cfg.Burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	s.mu.Unlock()

	if b.lim.AllowN(now, 1) {
		return true, 0
	}

	r := b.lim.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// sweep must be called with mu held.
func (s *bucketSet) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < bucketIdleTTL {
		return
	}
	s.lastSweep = now
	for key, b := range s.buckets {
		if now.Sub(b.lastSeen) >= bucketIdleTTL {
			delete(s.buckets, key)
		}
	}
}

// RateLimitMiddleware charges each request to the bucket chosen by keyFn and
// answers 429 with Retry-After once the bucket is empty.
func RateLimitMiddleware(cfg RateLimitConfig, keyFn KeyExtractor) Middleware {
	set := newBucketSet(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key for request, letting it through",
					"path", r.URL.Path,
				)
				next.ServeHTTP(w, r)
				return
			}

			if ok, wait := set.take(key, time.Now()); !ok {
				rejectRateLimited(w, r, cfg, key, wait)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(w http.ResponseWriter, r *http.Request, cfg RateLimitConfig, key string, wait time.Duration) {
	retryAfter := max(int(math.Ceil(wait.Seconds())), 1)

	h := w.Header()
	h.Set("Retry-After", strconv.Itoa(retryAfter))
	h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
	h.Set("X-RateLimit-Window", cfg.Window.String())

	slogx.FromContext(r.Context()).Warn("rate limit exceeded",
		"key", key,
		"path", r.URL.Path,
		"retry_after_s", retryAfter,
	)

	WriteJSON(w, http.StatusTooManyRequests, map[string]any{
		"success": false,
		"error":   "Too many requests. Please try again later.",
	})
}

// RateLimitByIP limits per client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}
