package historyapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/burstline/core/pkg/audit"
	"github.com/burstline/core/pkg/history"
	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/models"
	"github.com/burstline/core/pkg/models/api"
)

// Handler exposes the completion history.
type Handler struct {
	store  *history.Store
	audit  *audit.Store
	logger *logger.Logger
}

func NewHandler(store *history.Store, auditStore *audit.Store, log *logger.Logger) *Handler {
	return &Handler{
		store:  store,
		audit:  auditStore,
		logger: log,
	}
}

// List handles GET /api/history, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.store.List())
}

// Save handles POST /api/history/save. Posted entries run through the same
// dedup, ordering and cap rules as terminal reconciliations.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var entries []models.HistoryEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		respond(w, http.StatusBadRequest, api.MessageResponse{
			Status: http.StatusBadRequest,
			Error:  "History payload must be a sequence of entries",
		})
		return
	}

	if err := h.store.SaveAll(entries); err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "history_save_failed").
			Msg("Failed to persist history")
		respond(w, http.StatusInternalServerError, api.MessageResponse{
			Status: http.StatusInternalServerError,
			Error:  "Failed to save history",
		})
		return
	}

	respond(w, http.StatusOK, api.MessageResponse{
		Status:  http.StatusOK,
		Message: "History saved successfully",
	})
}

// Clear handles POST /api/history/clear, guarded by the clear secret.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	var req api.KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, api.MessageResponse{
			Status: http.StatusBadRequest,
			Error:  "Invalid request body",
		})
		return
	}

	err := h.store.Clear(req.Key)
	h.recordAudit(r.Context(), audit.Entry{
		Action: "clear",
		Actor:  r.RemoteAddr,
		OK:     err == nil,
	})
	if errors.Is(err, history.ErrUnauthorized) {
		respond(w, http.StatusUnauthorized, api.MessageResponse{
			Status: http.StatusUnauthorized,
			Error:  "Invalid clear key",
		})
		return
	}
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "history_clear_failed").
			Msg("Failed to clear history")
		respond(w, http.StatusInternalServerError, api.MessageResponse{
			Status: http.StatusInternalServerError,
			Error:  "Failed to clear history",
		})
		return
	}

	respond(w, http.StatusOK, api.MessageResponse{
		Status:  http.StatusOK,
		Message: "History cleared successfully",
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
