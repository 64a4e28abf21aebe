package processes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/burstline/core/pkg/audit"
	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/models/api"
	"github.com/burstline/core/pkg/registry"
	"github.com/burstline/core/pkg/scheduler"
)

// Handler serves the live process listing and external cancellation.
type Handler struct {
	jobs    *registry.JobRegistry
	sched   *scheduler.Scheduler
	stopKey string
	audit   *audit.Store
	logger  *logger.Logger
}

func NewHandler(jobs *registry.JobRegistry, sched *scheduler.Scheduler, stopKey string, auditStore *audit.Store, log *logger.Logger) *Handler {
	return &Handler{
		jobs:    jobs,
		sched:   sched,
		stopKey: stopKey,
		audit:   auditStore,
		logger:  log,
	}
}

// List handles GET /total. Each row carries its 1-based position in the
// listing, which is also the handle Stop accepts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.jobs.Snapshot())
}

// Stop handles POST /api/stop/{sessionId}. The path segment is the
// positional rank from the listing. Stopping is idempotent: a second stop of
// the same job reports not-found.
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	positionStr := r.URL.Path[len("/api/stop/"):]
	position, err := strconv.Atoi(positionStr)
	if err != nil || position < 1 {
		respond(w, http.StatusNotFound, api.MessageResponse{
			Status: http.StatusNotFound,
			Error:  "Process not found",
		})
		return
	}

	var req api.KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key != h.stopKey {
		respond(w, http.StatusUnauthorized, api.MessageResponse{
			Status: http.StatusUnauthorized,
			Error:  "Invalid stop key",
		})
		return
	}

	err = h.sched.Stop(position)
	h.recordAudit(r.Context(), audit.Entry{
		Action:    "stop",
		SessionID: int64(position),
		Actor:     r.RemoteAddr,
		OK:        err == nil,
	})
	if errors.Is(err, scheduler.ErrNotFound) {
		respond(w, http.StatusNotFound, api.MessageResponse{
			Status: http.StatusNotFound,
			Error:  "Process not found",
		})
		return
	}
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "stop_failed").
			Int("position", position).
			Msg("Failed to stop process")
		respond(w, http.StatusInternalServerError, api.MessageResponse{
			Status: http.StatusInternalServerError,
			Error:  "Failed to stop process",
		})
		return
	}

	respond(w, http.StatusOK, api.MessageResponse{
		Status:  http.StatusOK,
		Message: "Process stopped successfully",
	})
}

func (h *Handler) recordAudit(ctx context.Context, e audit.Entry) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Record(ctx, e); err != nil {
		h.logger.Warn().
			Err(err).
			Str("action", "audit_failed").
			Msg("Failed to record audit entry")
	}
}

func respond(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
