package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/service"
	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/aussiebroadwan/kakaologin/pkg/httpx"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"

	_ "github.com/aussiebroadwan/kakaologin/api/login" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Server modes. Both run the same services; they differ only in how the
// login outcome is framed.
const (
	ModeAPI = "api" // JSON responses for a separate frontend
	ModeWeb = "web" // server-rendered pages and redirects
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	mode         string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	cookies      *SessionCookies

	// endpoints maps "METHOD /path" to a short description, for /api and 404s.
	endpoints map[string]string

	LoginService   *service.LoginService
	SessionService *service.SessionService
	UserService    *service.UserService

	Production    bool
	ModerateLimit httpx.RateLimitConfig
	LenientLimit  httpx.RateLimitConfig
}

func NewRouter(
	mode, buildVersion string,
	st store.Store,
	cookies *SessionCookies,
	cors httpx.CORSConfig,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		mode:          mode,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		logger:        logger,
		store:         st,
		cookies:       cookies,
		endpoints:     make(map[string]string),
		ModerateLimit: httpx.ModerateLimit,
		LenientLimit:  httpx.LenientLimit,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSWithOrigins(cors),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	if r.mode == ModeWeb {
		r.registerPages()
	} else {
		r.registerAPIAuth()
	}
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// Everything unmatched, registered last so the catalogue is complete.
	r.Mux.Handle("/", NotFoundHandler(r.endpoints))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Kakao Login Service API
//	@version		0.1.0
//	@description	Server-side "login with Kakao": authorization-code exchange, server-side sessions
//	@description	and a persisted copy of every user who has logged in.
//	@description
//	@description	Sessions are carried in an HttpOnly cookie holding a signed session id. Kakao access tokens never leave the server.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/kakaologin
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h on pattern behind mws and records it in the catalogue.
func (r *Router) handle(pattern, description string, h http.Handler, mws ...httpx.Middleware) {
	r.Mux.Handle(pattern, httpx.Chain(h, mws...))
	r.endpoints[strings.Replace(pattern, "{$}", "", 1)] = description
}

func (r *Router) registerAPIAuth() {
	h := &AuthHandler{
		LoginService:   r.LoginService,
		SessionService: r.SessionService,
		Cookies:        r.cookies,
		Production:     r.Production,
	}

	// Login start and callback each reach Kakao, so they share the moderate limit.
	r.handle("GET /api/auth/kakao", "Kakao authorization URL",
		http.HandlerFunc(h.HandleBegin),
		httpx.RateLimitByIP(r.ModerateLimit),
	)
	r.handle("GET /auth/kakao", "Redirect to Kakao",
		http.HandlerFunc(h.HandleBeginRedirect),
		httpx.RateLimitByIP(r.ModerateLimit),
	)
	r.handle("GET /api/auth/kakao/callback", "Kakao login callback",
		http.HandlerFunc(h.HandleCallback),
		httpx.RateLimitByIP(r.ModerateLimit),
	)
	r.handle("GET /api/auth/user", "Current session user",
		http.HandlerFunc(h.HandleCurrentUser),
		httpx.RateLimitByIP(r.LenientLimit),
	)
	r.handle("POST /api/auth/logout", "Log out",
		http.HandlerFunc(h.HandleLogout),
		httpx.RateLimitByIP(r.ModerateLimit),
	)
}

func (r *Router) registerPages() {
	h := &PageHandler{
		LoginService:   r.LoginService,
		SessionService: r.SessionService,
		Cookies:        r.cookies,
		Production:     r.Production,
	}

	r.handle("GET /{$}", "Login page", http.HandlerFunc(h.HandleIndex),
		httpx.RateLimitByIP(r.LenientLimit),
	)
	r.handle("GET /auth/kakao", "Redirect to Kakao", http.HandlerFunc(h.HandleBegin),
		httpx.RateLimitByIP(r.ModerateLimit),
	)
	r.handle("GET /api/auth/kakao/callback", "Kakao login callback", http.HandlerFunc(h.HandleCallback),
		httpx.RateLimitByIP(r.ModerateLimit),
	)
	r.handle("GET /success", "Login success page", http.HandlerFunc(h.HandleSuccess),
		httpx.RateLimitByIP(r.LenientLimit),
	)
	r.handle("GET /error", "Login error page", http.HandlerFunc(h.HandleError),
		httpx.RateLimitByIP(r.LenientLimit),
	)
	r.handle("GET /admin", "User administration page", http.HandlerFunc(h.HandleAdmin),
		httpx.RateLimitByIP(r.LenientLimit),
	)
	r.handle("GET /api/user", "Current session user", http.HandlerFunc(h.HandleProfile),
		httpx.RateLimitByIP(r.LenientLimit),
	)
	r.handle("POST /auth/logout", "Log out", http.HandlerFunc(h.HandleLogout),
		httpx.RateLimitByIP(r.ModerateLimit),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService, Production: r.Production}

	r.handle("GET /api/users", "List users", http.HandlerFunc(h.HandleList),
		httpx.RateLimitByIP(r.LenientLimit),
	)
	r.handle("GET /api/users/{id}", "Get user", http.HandlerFunc(h.HandleGet),
		httpx.RateLimitByIP(r.LenientLimit),
	)
	r.handle("DELETE /api/users/{id}", "Delete user", http.HandlerFunc(h.HandleDelete),
		httpx.RateLimitByIP(r.ModerateLimit),
	)
}

func (r *Router) registerSystem() {
	// Monitoring may poll these often.
	r.handle("GET /health", "Health check", HealthHandler(r.startTime, r.buildVersion),
		httpx.RateLimitByIP(r.LenientLimit),
	)
	r.handle("GET /api/db/status", "User store status", DBStatusHandler(r.store, r.Production),
		httpx.RateLimitByIP(r.LenientLimit),
	)
	// /api is registered last among catalogued routes so it lists itself too.
	r.endpoints["GET /api"] = "Service information"
	r.Mux.Handle("GET /api", httpx.Chain(InfoHandler(r.mode, r.buildVersion, r.endpoints),
		httpx.RateLimitByIP(r.LenientLimit),
	))
}
