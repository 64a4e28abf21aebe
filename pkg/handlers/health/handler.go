package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/burstline/core/pkg/history"
	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/models/api"
	"github.com/burstline/core/pkg/scheduler"
)

// Handler handles health check requests
type Handler struct {
	sched  *scheduler.Scheduler
	store  *history.Store
	logger *logger.Logger
}

// NewHandler creates a new health handler
func NewHandler(sched *scheduler.Scheduler, store *history.Store, log *logger.Logger) *Handler {
	return &Handler{
		sched:  sched,
		store:  store,
		logger: log,
	}
}

// HealthCheck handles the /health endpoint
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := api.HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now(),
		ActiveJobs: h.sched.ActiveCount(),
		History:    len(h.store.List()),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "health_check_failed").
			Str("endpoint", "/health").
			Msg("Failed to encode health response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
