package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/directory/internal/directory/debug"
	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/pkg/directorysdk"
	"github.com/aussiebroadwan/directory/pkg/httpx"
)

// DebugHandler exposes the admin introspection operations. Every one of
// them is gated inside debug.Service.
type DebugHandler struct {
	DebugService *debug.Service
}

// HandleSystem handles GET /v1/debug/system
//
//	@Summary	System Information
//	@Tags		Debug
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	directorysdk.SystemInfo
//	@Failure	403	{object}	httpx.ErrorBody	"permission_denied"
//	@Router		/v1/debug/system [get].
func (h *DebugHandler) HandleSystem(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	info, err := h.DebugService.GetSystemInfo(r.Context(), sess)
	respond(w, r, info, err)
}

// HandleStats handles GET /v1/debug/stats
//
//	@Summary	Database Statistics
//	@Tags		Debug
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	directorysdk.DatabaseStats
//	@Router		/v1/debug/stats [get].
func (h *DebugHandler) HandleStats(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	stats, err := h.DebugService.GetDatabaseStats(r.Context(), sess)
	respond(w, r, stats, err)
}

// HandleLogs handles GET /v1/debug/logs
//
//	@Summary	Buffered Logs
//	@Tags		Debug
//	@Produce	json
//	@Security	BearerAuth
//	@Param		level		query	string	false	"minimum level"
//	@Param		category	query	string	false	"category"
//	@Param		q			query	string	false	"text search"
//	@Param		limit		query	int		false	"maximum entries"
//	@Success	200			{array}	directorysdk.LogEntry
//	@Router		/v1/debug/logs [get].
func (h *DebugHandler) HandleLogs(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	q := r.URL.Query()
	f := debug.LogFilter{
		Level:    q.Get("level"),
		Category: q.Get("category"),
		Text:     q.Get("q"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	entries, err := h.DebugService.GetLogs(r.Context(), sess, f)
	respond(w, r, list(entries), err)
}

// HandleClearLogs handles DELETE /v1/debug/logs
//
//	@Summary	Clear Logs
//	@Tags		Debug
//	@Security	BearerAuth
//	@Success	204
//	@Router		/v1/debug/logs [delete].
func (h *DebugHandler) HandleClearLogs(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	if err := h.DebugService.ClearLogs(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleExport handles GET /v1/debug/export
//
//	@Summary		Export Data
//	@Description	Every record without password credentials.
//	@Tags			Debug
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	directorysdk.Export
//	@Router			/v1/debug/export [get].
func (h *DebugHandler) HandleExport(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	out, err := h.DebugService.ExportData(r.Context(), sess)
	if err == nil {
		w.Header().Set("Content-Disposition", `attachment; filename="directory-export.json"`)
	}
	respond(w, r, out, err)
}

// HandleQuery handles POST /v1/debug/query
//
//	@Summary		Execute Query
//	@Description	Supports SELECT * FROM t and SELECT COUNT(*) [AS alias] FROM t for users, businesses and reviews.
//	@Tags			Debug
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		directorysdk.QueryRequest	true	"query"
//	@Success		200		{object}	directorysdk.QueryResult
//	@Failure		400		{object}	httpx.ErrorBody	"unsupported_query"
//	@Router			/v1/debug/query [post].
func (h *DebugHandler) HandleQuery(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	var req directorysdk.QueryRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	res, err := h.DebugService.ExecuteQuery(r.Context(), sess, req.Query)
	respond(w, r, res, err)
}

// HandlePerf handles POST /v1/debug/perf
//
//	@Summary	Performance Test
//	@Tags		Debug
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	directorysdk.PerformanceResult
//	@Router		/v1/debug/perf [post].
func (h *DebugHandler) HandlePerf(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	res, err := h.DebugService.RunPerformanceTest(r.Context(), sess)
	respond(w, r, res, err)
}

// HandleImport handles POST /v1/debug/import
//
//	@Summary		Import Sample Data
//	@Description	Adds whichever sample records are missing and reports how many were added.
//	@Tags			Debug
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	directorysdk.ImportResult
//	@Router			/v1/debug/import [post].
func (h *DebugHandler) HandleImport(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	res, err := h.DebugService.ImportSampleData(r.Context(), sess)
	respond(w, r, res, err)
}

func respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}
