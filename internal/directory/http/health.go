package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/aussiebroadwan/directory/pkg/httpx"
)

// Pinger is an optional dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning status, uptime and version. Always 200 while the process runs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	directorysdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, directorysdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the database and the optional session and photo backends
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	directorysdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	directorysdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &directorysdk.HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		for name, p := range pingers {
			result := "ok"
			if err := p.Ping(r.Context()); err != nil {
				result = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
			switch name {
			case "sessions":
				checks.Sessions = result
			case "photos":
				checks.Photos = result
			}
		}

		httpx.WriteJSON(w, statusCode, directorysdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
