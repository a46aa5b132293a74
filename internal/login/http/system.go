package http

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/aussiebroadwan/kakaologin/internal/login/store"
	"github.com/aussiebroadwan/kakaologin/pkg/httpx"
	"github.com/aussiebroadwan/kakaologin/pkg/loginsdk"
	"github.com/aussiebroadwan/kakaologin/pkg/slogx"
)

const serviceName = "kakaologin"

// dbStatusTimeout bounds the ping behind /api/db/status.
const dbStatusTimeout = 5 * time.Second

// HealthHandler godoc
//
//	@Summary		Health check
//	@Description	Always 200 while the process is serving.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	loginsdk.HealthResponse
//	@Router			/health [get].
func HealthHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, loginsdk.HealthResponse{
			Status:    "OK",
			Timestamp: time.Now().UTC(),
			Service:   serviceName,
			Version:   version,
			Uptime:    time.Since(startTime).Seconds(),
		})
	}
}

// InfoHandler godoc
//
//	@Summary		Service information
//	@Description	Lists the routes served in the current mode.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	loginsdk.InfoResponse
//	@Router			/api [get].
func InfoHandler(mode, version string, endpoints map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, loginsdk.InfoResponse{
			Service:   serviceName,
			Version:   version,
			Mode:      mode,
			Endpoints: endpoints,
		})
	}
}

// DBStatusHandler godoc
//
//	@Summary		User store status
//	@Description	Pings the user store and reports where it points. Credentials are never included, and the ping error is omitted in production.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	loginsdk.DBStatusResponse
//	@Failure		500	{object}	loginsdk.DBStatusResponse	"Store unreachable"
//	@Router			/api/db/status [get].
func DBStatusHandler(st store.Store, production bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), dbStatusTimeout)
		defer cancel()

		info := st.Info()
		resp := loginsdk.DBStatusResponse{
			Driver:    info.Driver,
			Database:  info.Database,
			Host:      info.Host,
			Port:      info.Port,
			Timestamp: time.Now().UTC(),
		}

		if err := st.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Warn("user store ping failed", "driver", info.Driver, "error", err)
			if !production {
				resp.Error = err.Error()
			}
			httpx.WriteJSON(w, http.StatusInternalServerError, resp)
			return
		}

		if n, err := st.Users().CountUsers(ctx); err == nil {
			resp.Users = &n
		}
		resp.Success = true
		resp.Connected = true
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}

// NotFoundHandler answers every unmatched route with the list of routes that
// do exist.
func NotFoundHandler(endpoints map[string]string) http.HandlerFunc {
	available := make([]string, 0, len(endpoints))
	for route := range endpoints {
		available = append(available, route)
	}
	slices.Sort(available)

	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, loginsdk.NotFoundResponse{
			Success:            false,
			Error:              "Route not found",
			Path:               r.URL.Path,
			AvailableEndpoints: available,
		})
	}
}
