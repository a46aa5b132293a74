package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	httpapi "github.com/aussiebroadwan/kakaologin/internal/login/http"
)

// DevSessionSecret is the fallback cookie secret. It is refused when
// ENV=production.
const DevSessionSecret = "kakaologin-dev-session-secret-change-me"

type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`         // dev, staging, production
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json, text

	Port                 int           `env:"PORT" envDefault:"8080"`
	Mode                 string        `env:"SERVER_MODE" envDefault:"api"` // api, web
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"10m"`

	KakaoClientID     string `env:"KAKAO_CLIENT_ID"`
	KakaoClientSecret string `env:"KAKAO_CLIENT_SECRET"`
	KakaoRedirectURI  string `env:"KAKAO_REDIRECT_URI"`

	// Endpoint overrides, mostly for tests. Empty means the public Kakao URLs.
	KakaoAuthURL        string        `env:"KAKAO_AUTH_URL"`
	KakaoTokenURL       string        `env:"KAKAO_TOKEN_URL"`
	KakaoProfileURL     string        `env:"KAKAO_PROFILE_URL"`
	KakaoLogoutURL      string        `env:"KAKAO_LOGOUT_URL"`
	ProviderCallTimeout time.Duration `env:"PROVIDER_CALL_TIMEOUT" envDefault:"5s"`

	SessionSecret     string        `env:"SESSION_SECRET" envDefault:"kakaologin-dev-session-secret-change-me"`
	SessionBackend    string        `env:"SESSION_BACKEND" envDefault:"memory"` // memory, redis
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"kakaologin.sid"`
	CookieSecure      bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSameSite    string        `env:"COOKIE_SAMESITE" envDefault:"lax"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DBDriver         string        `env:"DB_DRIVER" envDefault:"sqlite"` // sqlite, postgres
	DBFile           string        `env:"DB_FILE" envDefault:"kakaologin.db"`
	DBHost           string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort           int           `env:"DB_PORT" envDefault:"5432"`
	DBUser           string        `env:"DB_USER"`
	DBPassword       string        `env:"DB_PASSWORD"`
	DBName           string        `env:"DB_NAME" envDefault:"kakaologin"`
	DBSSLMode        string        `env:"DB_SSLMODE" envDefault:"disable"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:3001,http://localhost:5173"`
}

// LoadConfig reads the configuration from the environment. It does not
// validate; call Validate once flag overrides have been applied.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	for i, origin := range cfg.CORSAllowedOrigins {
		cfg.CORSAllowedOrigins[i] = strings.TrimSpace(origin)
	}
	return cfg, nil
}

// Production reports whether internal error details must be withheld.
func (c Config) Production() bool {
	return c.Env == "production"
}

func (c Config) Validate() error {
	var errs []error

	if c.KakaoClientID == "" {
		errs = append(errs, errors.New("KAKAO_CLIENT_ID is required"))
	}
	if c.KakaoRedirectURI == "" {
		errs = append(errs, errors.New("KAKAO_REDIRECT_URI is required"))
	}
	if c.Mode != httpapi.ModeAPI && c.Mode != httpapi.ModeWeb {
		errs = append(errs, fmt.Errorf("SERVER_MODE must be api or web, got %q", c.Mode))
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver))
	}
	if c.SessionBackend != "memory" && c.SessionBackend != "redis" {
		errs = append(errs, fmt.Errorf("SESSION_BACKEND must be memory or redis, got %q", c.SessionBackend))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	sameSite, ok := httpapi.ParseSameSite(c.CookieSameSite)
	if !ok {
		errs = append(errs, fmt.Errorf("COOKIE_SAMESITE must be lax, strict or none, got %q", c.CookieSameSite))
	} else if sameSite == http.SameSiteNoneMode && !c.CookieSecure {
		errs = append(errs, errors.New("COOKIE_SAMESITE=none requires COOKIE_SECURE=true"))
	}

	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	} else if c.Production() && c.SessionSecret == DevSessionSecret {
		errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
	}

	return errors.Join(errs...)
}
