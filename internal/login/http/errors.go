package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/kakaologin/internal/login/service"
	"github.com/aussiebroadwan/kakaologin/pkg/httpx"
	"github.com/aussiebroadwan/kakaologin/pkg/loginsdk"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
)

var errInvalidUserID = errors.New("invalid_user_id")

type errorMapping struct {
	kind    error
	status  int
	message string
}

// errorMappings is checked in order; the first kind err matches wins.
var errorMappings = []errorMapping{
	{service.ErrInvalidCallback, http.StatusBadRequest, "Invalid login callback"},
	{service.ErrExchange, http.StatusBadGateway, "Failed to exchange authorization code"},
	{service.ErrProfileFetch, http.StatusBadGateway, "Failed to fetch user profile"},
	{service.ErrSessionWrite, http.StatusInternalServerError, "Failed to establish session"},
	{service.ErrSessionDestroy, http.StatusInternalServerError, "Failed to log out"},
	{service.ErrAuthenticationRequired, http.StatusUnauthorized, "Not authenticated"},
	{service.ErrNotFound, http.StatusNotFound, "User not found"},
	{service.ErrUnavailable, http.StatusServiceUnavailable, "User store unavailable"},
	{errInvalidUserID, http.StatusBadRequest, "User id must be an integer"},
}

// classify returns the status, generic message and reason for err.
func classify(err error) (int, string, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			return m.status, m.message, m.kind.Error()
		}
	}
	return http.StatusInternalServerError, "Internal server error", "internal_error"
}

// writeError renders err as an ErrorResponse. Internal details are attached
// only outside production.
func writeError(w http.ResponseWriter, r *http.Request, err error, production bool) {
	status, message, reason := classify(err)

	log := slogx.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "reason", reason, "error", err.Error())
	} else {
		log.Info("request rejected", "reason", reason, "error", err.Error())
	}

	resp := loginsdk.ErrorResponse{
		Success: false,
		Error:   message,
		Reason:  reason,
	}
	if !production {
		resp.Details = service.DetailOf(err)
	}
	httpx.WriteJSON(w, status, resp)
}

func warningStrings(ws []service.Warning) []string {
	if len(ws) == 0 {
		return nil
	}
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Stage)
	}
	return out
}
