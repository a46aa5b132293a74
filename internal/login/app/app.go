package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/kakaologin/internal/login/http"
	"github.com/aussiebroadwan/kakaologin/internal/login/provider"
	"github.com/aussiebroadwan/kakaologin/internal/login/service"
	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/aussiebroadwan/kakaologin/internal/login/store/drivers/memory"
	"github.com/aussiebroadwan/kakaologin/internal/login/store/drivers/postgres"
	"github.com/aussiebroadwan/kakaologin/internal/login/store/drivers/redis"
	"github.com/aussiebroadwan/kakaologin/internal/login/store/drivers/sqlite"
	"github.com/aussiebroadwan/kakaologin/pkg/cryptox"
	"github.com/aussiebroadwan/kakaologin/pkg/httpx"
	"github.com/aussiebroadwan/kakaologin/pkg/jwtx"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

const (
	serviceName = "kakaologin"

	// cookieKeyPurpose binds the derived cookie key to this use of SESSION_SECRET.
	cookieKeyPurpose = "kakaologin session cookie v1"
)

// Application encapsulates the login service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	users    store.Store
	sessions store.Sessions
	provider *provider.Kakao
	cookies  *httpapi.SessionCookies

	// Services
	loginService        *service.LoginService
	sessionService      *service.SessionService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService // memory backend only
	housekeepingRunning bool

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialised. A user
// store that cannot be reached does not fail startup; the service runs
// session-only until restarted.
func New(cfg Config) (*Application, error) {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput is New with logs written to out.
func NewWithOutput(cfg Config, out io.Writer) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  out,
		}),
	}

	ctx := context.Background()
	app.initUserStore(ctx)

	if err := app.initSessions(ctx); err != nil {
		_ = app.users.Close()
		return nil, err
	}

	if err := app.initCookies(); err != nil {
		app.closeStores()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
		app.housekeepingRunning = true
	}

	app.logger.Info("login service starting",
		"port", app.cfg.Port,
		"mode", app.cfg.Mode,
		"db_driver", app.users.Info().Driver,
		"session_backend", app.cfg.SessionBackend,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.closeStores()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig.String())

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down login service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingRunning {
		app.housekeepingService.Stop()
		app.housekeepingRunning = false
	}

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("login service stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if err := app.sessions.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
		errs = append(errs, err)
	}
	if err := app.users.Close(); err != nil {
		app.logger.Error("error closing user store", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initUserStore opens the configured user store and applies migrations. On
// failure the store is replaced by one that reports itself unavailable.
func (app *Application) initUserStore(ctx context.Context) {
	st, err := openUserStore(ctx, app.cfg)
	if err == nil {
		if err = st.ApplyMigrations(); err != nil {
			_ = st.Close()
			err = fmt.Errorf("apply migrations: %w", err)
		}
	}
	if err != nil {
		app.logger.Warn("user store unavailable, running session-only",
			"driver", app.cfg.DBDriver,
			"error", err,
		)
		app.users = store.NewUnavailable(userStoreTarget(app.cfg), err)
		return
	}

	info := st.Info()
	app.logger.Info("user store ready", "driver", info.Driver, "database", info.Database, "host", info.Host)
	app.users = st
}

// initSessions opens the session backend. Unlike the user store, sessions
// are essential, so failure aborts startup.
func (app *Application) initSessions(ctx context.Context) error {
	switch app.cfg.SessionBackend {
	case "redis":
		ctx, cancel := context.WithTimeout(ctx, connectTimeout(app.cfg))
		defer cancel()

		sessions, err := redis.Open(ctx, redis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize session store: %w", err)
		}
		app.sessions = sessions
	default:
		sessions := memory.NewSessions()
		app.sessions = sessions
		app.housekeepingService = service.NewHousekeepingService(
			sessions,
			app.logger,
			app.cfg.HousekeepingInterval,
		)
	}

	app.logger.Info("session store ready", "backend", app.cfg.SessionBackend)
	return nil
}

// initCookies derives the cookie signing key from SESSION_SECRET.
func (app *Application) initCookies() error {
	key, err := cryptox.DeriveKey([]byte(app.cfg.SessionSecret), cookieKeyPurpose, jwtx.MinKeySize)
	if err != nil {
		return fmt.Errorf("failed to derive cookie key: %w", err)
	}
	signer, err := jwtx.NewHS256(key, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize cookie signer: %w", err)
	}

	// Validate has already accepted the value.
	sameSite, _ := httpapi.ParseSameSite(app.cfg.CookieSameSite)
	app.cookies = &httpapi.SessionCookies{
		Config: httpapi.CookieConfig{
			Name:     app.cfg.SessionCookieName,
			Secure:   app.cfg.CookieSecure,
			SameSite: sameSite,
			TTL:      app.cfg.SessionTTL,
		},
		Signer: signer,
	}
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.provider = provider.NewKakao(provider.Config{
		ClientID:     app.cfg.KakaoClientID,
		ClientSecret: app.cfg.KakaoClientSecret,
		RedirectURI:  app.cfg.KakaoRedirectURI,
		AuthURL:      app.cfg.KakaoAuthURL,
		TokenURL:     app.cfg.KakaoTokenURL,
		ProfileURL:   app.cfg.KakaoProfileURL,
		LogoutURL:    app.cfg.KakaoLogoutURL,
		CallTimeout:  app.cfg.ProviderCallTimeout,
	})

	app.loginService = &service.LoginService{
		Provider:   app.provider,
		Sessions:   app.sessions,
		Users:      app.users.Users(),
		SessionTTL: app.cfg.SessionTTL,
	}
	app.sessionService = &service.SessionService{
		Sessions: app.sessions,
		Provider: app.provider,
	}
	app.userService = &service.UserService{Users: app.users.Users()}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.cfg.Mode,
		BuildVersion,
		app.users,
		app.cookies,
		httpx.CORSConfig{AllowedOrigins: app.cfg.CORSAllowedOrigins},
		app.logger,
	)

	router.Production = app.cfg.Production()
	router.LoginService = app.loginService
	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// openUserStore connects to the configured user store, bounded by
// DB_CONNECT_TIMEOUT. Migrations are not applied.
func openUserStore(ctx context.Context, cfg Config) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
	defer cancel()

	switch cfg.DBDriver {
	case "postgres":
		st, err := postgres.Open(ctx, postgresOptions(cfg))
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		st, err := sqlite.Open(ctx, cfg.DBFile)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}

func connectTimeout(cfg Config) time.Duration {
	if cfg.DBConnectTimeout <= 0 {
		return 5 * time.Second
	}
	return cfg.DBConnectTimeout
}

func postgresOptions(cfg Config) postgres.Options {
	return postgres.Options{
		Host:           cfg.DBHost,
		Port:           cfg.DBPort,
		User:           cfg.DBUser,
		Password:       cfg.DBPassword,
		Database:       cfg.DBName,
		SSLMode:        cfg.DBSSLMode,
		ConnectTimeout: cfg.DBConnectTimeout,
	}
}

// userStoreTarget describes where the user store was supposed to be, for
// status reporting when it could not be opened.
func userStoreTarget(cfg Config) store.Info {
	if cfg.DBDriver == "postgres" {
		return store.Info{Driver: "postgres", Database: cfg.DBName, Host: cfg.DBHost, Port: cfg.DBPort}
	}
	return store.Info{Driver: "sqlite", Database: cfg.DBFile}
}
