package http

import (
	"net/http"

	"github.com/aussiebroadwan/kakaologin/internal/login/service"
	"github.com/aussiebroadwan/kakaologin/pkg/httpx"
	"github.com/aussiebroadwan/kakaologin/pkg/loginsdk"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
)

// AuthHandler is the JSON flavour of the login flow, for a separate frontend.
type AuthHandler struct {
	LoginService   *service.LoginService
	SessionService *service.SessionService
	Cookies        *SessionCookies
	Production     bool
}

// HandleBegin godoc
//
//	@Summary		Start Kakao login
//	@Description	Returns the Kakao authorization URL the frontend should navigate to.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	loginsdk.AuthURLResponse
//	@Failure		429	{object}	loginsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/api/auth/kakao [get].
func (h *AuthHandler) HandleBegin(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, loginsdk.AuthURLResponse{
		Success: true,
		AuthURL: h.LoginService.BeginLogin(),
		Message: "Redirect the browser to authUrl to log in with Kakao",
	})
}

// HandleBeginRedirect godoc
//
//	@Summary		Start Kakao login
//	@Description	Sends the browser straight to Kakao. Available in both server modes.
//	@Tags			Auth
//	@Success		302
//	@Router			/auth/kakao [get].
func (h *AuthHandler) HandleBeginRedirect(w http.ResponseWriter, r *http.Request) {
	httpx.Redirect(w, r, h.LoginService.BeginLogin())
}

// HandleCallback godoc
//
//	@Summary		Kakao login callback
//	@Description	Exchanges the authorization code, loads the Kakao profile and opens a session.
//	@Description	The access token is kept server-side and never returned.
//	@Tags			Auth
//	@Produce		json
//	@Param			code	query		string	false	"Authorization code"
//	@Param			error	query		string	false	"Error reported by Kakao"
//	@Success		200		{object}	loginsdk.LoginResponse
//	@Failure		400		{object}	loginsdk.ErrorResponse	"Missing code or provider error"
//	@Failure		502		{object}	loginsdk.ErrorResponse	"Kakao call failed"
//	@Failure		500		{object}	loginsdk.ErrorResponse	"Session could not be stored"
//	@Router			/api/auth/kakao/callback [get].
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := service.CallbackParamsFromQuery(r.URL.Query())
	res, err := h.LoginService.HandleCallback(ctx, params, h.Cookies.SessionID(r))
	if err != nil {
		writeError(w, r, err, h.Production)
		return
	}

	if err := h.Cookies.Set(w, res.SessionID); err != nil {
		slogx.FromContext(ctx).Error("failed to sign session cookie", "error", err)
		h.LoginService.DiscardSession(ctx, res.SessionID)
		writeError(w, r, err, h.Production)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginsdk.LoginResponse{
		Success:  true,
		Message:  "Login successful",
		User:     toSDKUser(res.Profile),
		Warnings: warningStrings(res.Warnings),
	})
}

// HandleCurrentUser godoc
//
//	@Summary		Current user
//	@Description	Returns the profile stored in the caller's session.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	loginsdk.CurrentUserResponse
//	@Failure		401	{object}	loginsdk.ErrorResponse	"No active session"
//	@Router			/api/auth/user [get].
func (h *AuthHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	sess, err := h.SessionService.CurrentUser(r.Context(), h.Cookies.SessionID(r))
	if err != nil {
		status, message, reason := classify(err)
		if status != http.StatusUnauthorized {
			writeError(w, r, err, h.Production)
			return
		}
		authenticated := false
		httpx.WriteJSON(w, status, loginsdk.ErrorResponse{
			Error:         message,
			Reason:        reason,
			Authenticated: &authenticated,
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginsdk.CurrentUserResponse{
		Success:       true,
		Authenticated: true,
		User:          toSDKUser(sess.Profile),
	})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the Kakao token (best effort) and destroys the session.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	loginsdk.MessageResponse
//	@Failure		401	{object}	loginsdk.ErrorResponse	"No active session"
//	@Failure		500	{object}	loginsdk.ErrorResponse	"Session could not be destroyed"
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	res, err := h.SessionService.Logout(r.Context(), h.Cookies.SessionID(r))
	if err != nil {
		writeError(w, r, err, h.Production)
		return
	}

	h.Cookies.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, loginsdk.MessageResponse{
		Success:  true,
		Message:  "Logged out",
		Warnings: warningStrings(res.Warnings),
	})
}
