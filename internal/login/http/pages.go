package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/domain"
	"github.com/aussiebroadwan/kakaologin/internal/login/service"
	"github.com/aussiebroadwan/kakaologin/pkg/httpx"
	"github.com/aussiebroadwan/kakaologin/pkg/loginsdk"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages holds one parsed template set per page, each wrapped in the layout.
var pages = parsePages("index", "success", "error", "admin")

func parsePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}

// PageHandler is the server-rendered flavour of the login flow. The login
// outcome is a redirect instead of a JSON body.
type PageHandler struct {
	LoginService   *service.LoginService
	SessionService *service.SessionService
	Cookies        *SessionCookies
	Production     bool
}

type pageData struct {
	User    *domain.Profile
	LoginAt time.Time
	Message string
	Reason  string
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		slogx.FromContext(r.Context()).Error("failed to render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// HandleIndex renders the landing page with the login button.
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	var data pageData
	if sess, err := h.SessionService.CurrentUser(r.Context(), h.Cookies.SessionID(r)); err == nil {
		data.User = &sess.Profile
	}
	renderPage(w, r, http.StatusOK, "index", data)
}

// HandleBegin sends the browser to Kakao.
func (h *PageHandler) HandleBegin(w http.ResponseWriter, r *http.Request) {
	httpx.Redirect(w, r, h.LoginService.BeginLogin())
}

// HandleCallback godoc
//
//	@Summary		Kakao login callback (page mode)
//	@Description	Redirects to /success once the session is open, or to /error?reason=<kind>.
//	@Tags			Pages
//	@Param			code	query	string	false	"Authorization code"
//	@Param			error	query	string	false	"Error reported by Kakao"
//	@Success		302
//	@Router			/api/auth/kakao/callback [get].
func (h *PageHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := service.CallbackParamsFromQuery(r.URL.Query())
	res, err := h.LoginService.HandleCallback(ctx, params, h.Cookies.SessionID(r))
	if err != nil {
		_, _, reason := classify(err)
		httpx.Redirect(w, r, "/error?"+url.Values{"reason": {reason}}.Encode())
		return
	}

	if err := h.Cookies.Set(w, res.SessionID); err != nil {
		slogx.FromContext(ctx).Error("failed to sign session cookie", "error", err)
		h.LoginService.DiscardSession(ctx, res.SessionID)
		httpx.Redirect(w, r, "/error?"+url.Values{"reason": {service.ErrSessionWrite.Error()}}.Encode())
		return
	}
	httpx.Redirect(w, r, "/success")
}

// HandleSuccess shows the logged-in profile, or sends the browser back to the
// start page when there is no session.
func (h *PageHandler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	sess, err := h.SessionService.CurrentUser(r.Context(), h.Cookies.SessionID(r))
	if err != nil {
		httpx.Redirect(w, r, "/")
		return
	}
	renderPage(w, r, http.StatusOK, "success", pageData{User: &sess.Profile, LoginAt: sess.LoginAt})
}

// HandleError shows a login failure. Only the reason code from the query is
// displayed; internal details never reach this page.
func (h *PageHandler) HandleError(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("reason")
	renderPage(w, r, http.StatusOK, "error", pageData{
		Message: errorPageMessage(reason),
		Reason:  reason,
	})
}

func errorPageMessage(reason string) string {
	for _, m := range errorMappings {
		if m.kind.Error() == reason {
			return m.message
		}
	}
	return "Something went wrong while logging in."
}

// HandleAdmin renders the user administration page. The page itself calls
// the JSON users API.
func (h *PageHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, "admin", pageData{})
}

// HandleProfile godoc
//
//	@Summary		Current user (page mode)
//	@Description	Returns the bare session profile.
//	@Tags			Pages
//	@Produce		json
//	@Success		200	{object}	loginsdk.User
//	@Failure		401	{object}	loginsdk.ErrorResponse
//	@Router			/api/user [get].
func (h *PageHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := h.SessionService.CurrentUser(r.Context(), h.Cookies.SessionID(r))
	if err != nil {
		writeError(w, r, err, h.Production)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKUser(sess.Profile))
}

// HandleLogout godoc
//
//	@Summary		Log out (page mode)
//	@Tags			Pages
//	@Produce		json
//	@Success		200	{object}	loginsdk.MessageResponse
//	@Failure		401	{object}	loginsdk.ErrorResponse
//	@Router			/auth/logout [post].
func (h *PageHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	res, err := h.SessionService.Logout(r.Context(), h.Cookies.SessionID(r))
	if err != nil {
		writeError(w, r, err, h.Production)
		return
	}
	h.Cookies.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, loginsdk.MessageResponse{
		Success:  true,
		Message:  fmt.Sprintf("Goodbye, %s", displayName(res.Profile)),
		Warnings: warningStrings(res.Warnings),
	})
}

func displayName(p domain.Profile) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return fmt.Sprintf("user %d", p.ID)
}
