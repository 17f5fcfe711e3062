// Package grid exposes the last simulation result and the run history over a
// read-only HTTP API.
package grid

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/kilianp07/gridsim/core/allocation/logging"
	"github.com/kilianp07/gridsim/core/report"
	"github.com/kilianp07/gridsim/infra/store"
)

// RunStore lists and loads stored runs.
type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error)
	GetRun(ctx context.Context, id string) (report.Report, error)
}

// DefaultRunLimit is the number of runs listed when no limit is given.
const DefaultRunLimit = 20

// Handler serves the API. The zero value is not usable; call NewHandler.
type Handler struct {
	last  atomic.Pointer[report.Report]
	runs  RunStore
	logs  logging.LogStore
	token string
}

// NewHandler returns a handler. runs and logs may be nil, in which case the
// matching endpoints answer 503. When token is non-empty requests must carry
// an "Authorization: Bearer <token>" header.
func NewHandler(runs RunStore, logs logging.LogStore, token string) *Handler {
	return &Handler{runs: runs, logs: logs, token: token}
}

// SetReport publishes the result of a finished cycle.
func (h *Handler) SetReport(r report.Report) { h.last.Store(&r) }

// Routes returns the router. metrics is mounted on GET /metrics when non-nil.
func (h *Handler) Routes(metrics http.Handler) http.Handler {
	r := httprouter.New()
	r.GET("/api/report", h.auth(h.withReport(func(w http.ResponseWriter, rep *report.Report) {
		writeJSON(w, rep)
	})))
	r.GET("/api/areas", h.auth(h.withReport(func(w http.ResponseWriter, rep *report.Report) {
		writeJSON(w, rep.Areas)
	})))
	r.GET("/api/plants", h.auth(h.withReport(func(w http.ResponseWriter, rep *report.Report) {
		writeJSON(w, rep.Plants)
	})))
	r.GET("/api/lines", h.auth(h.withReport(func(w http.ResponseWriter, rep *report.Report) {
		writeJSON(w, rep.Lines)
	})))
	r.GET("/api/runs", h.auth(h.listRuns))
	r.GET("/api/runs/:id", h.auth(h.getRun))
	r.GET("/api/logs", h.auth(h.queryLogs))
	if metrics != nil {
		r.Handler(http.MethodGet, "/metrics", metrics)
	}
	return r
}

func (h *Handler) auth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if h.token != "" && !validBearer(r.Header.Get("Authorization"), h.token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r, ps)
	}
}

// validBearer reports whether header carries token, compared in constant time.
func validBearer(header, token string) bool {
	return subtle.ConstantTimeCompare([]byte(header), []byte("Bearer "+token)) == 1
}

func (h *Handler) withReport(fn func(http.ResponseWriter, *report.Report)) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		rep := h.last.Load()
		if rep == nil {
			http.Error(w, "no simulation cycle has finished yet", http.StatusServiceUnavailable)
			return
		}
		fn(w, rep)
	}
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.runs == nil {
		http.Error(w, "run history disabled", http.StatusServiceUnavailable)
		return
	}
	limit := DefaultRunLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	writeJSON(w, runs)
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if h.runs == nil {
		http.Error(w, "run history disabled", http.StatusServiceUnavailable)
		return
	}
	rep, err := h.runs.GetRun(r.Context(), ps.ByName("id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rep)
}

func (h *Handler) queryLogs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.logs == nil {
		http.Error(w, "allocation log disabled", http.StatusServiceUnavailable)
		return
	}
	v := r.URL.Query()
	q := logging.LogQuery{RunID: v.Get("run_id"), Area: v.Get("area"), Outcome: v.Get("outcome")}
	var err error
	if q.Start, err = parseTime(v.Get("start")); err != nil {
		http.Error(w, "invalid start: "+err.Error(), http.StatusBadRequest)
		return
	}
	if q.End, err = parseTime(v.Get("end")); err != nil {
		http.Error(w, "invalid end: "+err.Error(), http.StatusBadRequest)
		return
	}
	records, err := h.logs.Query(r.Context(), q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []logging.LogRecord{}
	}
	writeJSON(w, records)
}

// parseTime accepts RFC 3339. Empty means unbounded.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
