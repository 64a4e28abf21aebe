package statistics

import (
	"encoding/json"
	"net/http"

	"github.com/burstline/core/pkg/history"
	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/models/api"
)

// Handler serves aggregate history statistics.
type Handler struct {
	store  *history.Store
	logger *logger.Logger
}

func NewHandler(store *history.Store, log *logger.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: log,
	}
}

// Get handles GET /api/statistics.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	response := api.StatisticsResponse{
		Status:     http.StatusOK,
		Statistics: h.store.Statistics(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "statistics_encode_failed").
			Msg("Failed to encode statistics response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
