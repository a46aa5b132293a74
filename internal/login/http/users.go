package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/kakaologin/internal/login/service"
	"github.com/aussiebroadwan/kakaologin/pkg/httpx"
	"github.com/aussiebroadwan/kakaologin/pkg/loginsdk"
)

type UsersHandler struct {
	UserService *service.UserService
	Production  bool
}

// HandleList godoc
//
//	@Summary		List users
//	@Description	Returns every persisted user, most recent login first.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	loginsdk.UsersResponse
//	@Failure		503	{object}	loginsdk.ErrorResponse	"User store unavailable"
//	@Router			/api/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err, h.Production)
		return
	}

	resp := loginsdk.UsersResponse{
		Success: true,
		Count:   len(users),
		Users:   make([]loginsdk.StoredUser, len(users)),
	}
	for i, u := range users {
		resp.Users[i] = toSDKStoredUser(u)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary		Get user
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		int	true	"Kakao user id"
//	@Success		200	{object}	loginsdk.UserResponse
//	@Failure		400	{object}	loginsdk.ErrorResponse	"id is not an integer"
//	@Failure		404	{object}	loginsdk.ErrorResponse	"No such user"
//	@Failure		503	{object}	loginsdk.ErrorResponse	"User store unavailable"
//	@Router			/api/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathUserID(r)
	if err != nil {
		writeError(w, r, err, h.Production)
		return
	}

	u, err := h.UserService.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Production)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginsdk.UserResponse{Success: true, User: toSDKStoredUser(u)})
}

// HandleDelete godoc
//
//	@Summary		Delete user
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		int	true	"Kakao user id"
//	@Success		200	{object}	loginsdk.MessageResponse
//	@Failure		400	{object}	loginsdk.ErrorResponse	"id is not an integer"
//	@Failure		404	{object}	loginsdk.ErrorResponse	"No such user"
//	@Failure		503	{object}	loginsdk.ErrorResponse	"User store unavailable"
//	@Router			/api/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUserID(r)
	if err != nil {
		writeError(w, r, err, h.Production)
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err, h.Production)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginsdk.MessageResponse{
		Success: true,
		Message: fmt.Sprintf("User %d deleted", id),
	})
}

func pathUserID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidUserID, raw)
	}
	return id, nil
}
