package submit

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/burstline/core/pkg/audit"
	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/models/api"
	"github.com/burstline/core/pkg/registry"
	"github.com/burstline/core/pkg/scheduler"
	"github.com/burstline/core/pkg/services"
	"github.com/burstline/core/pkg/utils"
)

// Handler accepts job submissions. Both external lookups are awaited before
// anything is registered, so a failed lookup leaves no trace behind.
type Handler struct {
	sessions *registry.SessionRegistry
	sched    *scheduler.Scheduler
	targets  services.TargetResolver
	tokens   services.TokenResolver
	action   services.Action
	audit    *audit.Store
	logger   *logger.Logger
}

func NewHandler(sessions *registry.SessionRegistry, sched *scheduler.Scheduler, targets services.TargetResolver, tokens services.TokenResolver, action services.Action, auditStore *audit.Store, log *logger.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		sched:    sched,
		targets:  targets,
		tokens:   tokens,
		action:   action,
		audit:    auditStore,
		logger:   log,
	}
}

// Submit handles POST /api/submit. It returns once the job is registered and
// the first tick is scheduled, never after the job completes.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, api.MessageResponse{
			Status: http.StatusBadRequest,
			Error:  "Invalid request body",
		})
		return
	}

	if req.Username == "" || req.Cookie == "" || req.URL == "" || req.Amount <= 0 || req.Interval <= 0 {
		respond(w, http.StatusBadRequest, api.MessageResponse{
			Status: http.StatusBadRequest,
			Error:  "Missing username, cookie, url, amount, or interval",
		})
		return
	}

	credential, err := services.CredentialFromCookies(req.Cookie)
	if err != nil {
		respond(w, http.StatusBadRequest, api.MessageResponse{
			Status: http.StatusBadRequest,
			Error:  err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	targetID, err := h.targets.ResolveTarget(ctx, req.URL)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "target_lookup_failed").
			Str("url", req.URL).
			Msg("Target lookup failed, rejecting submission")
		respond(w, http.StatusInternalServerError, api.MessageResponse{
			Status: http.StatusInternalServerError,
			Error:  err.Error(),
		})
		return
	}

	token, err := h.tokens.ResolveToken(ctx, credential)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("action", "token_lookup_failed").
			Msg("Token lookup failed, rejecting submission")
		respond(w, http.StatusInternalServerError, api.MessageResponse{
			Status: http.StatusInternalServerError,
			Error:  err.Error(),
		})
		return
	}

	sessionID := h.sessions.Next()
	err = h.sched.Start(scheduler.StartRequest{
		SessionID: sessionID,
		Username:  req.Username,
		URL:       req.URL,
		TargetID:  targetID,
		Token:     token,
		Target:    req.Amount,
		Interval:  time.Duration(req.Interval) * time.Second,
		Action:    h.action,
	})
	h.recordAudit(r.Context(), audit.Entry{
		Action:    "submit",
		SessionID: sessionID,
		Actor:     req.Username,
		Detail:    utils.ProcessSlug(req.Username, req.URL),
		OK:        err == nil,
	})
	if err != nil {
		respond(w, http.StatusInternalServerError, api.MessageResponse{
			Status: http.StatusInternalServerError,
			Error:  err.Error(),
		})
		return
	}

	respond(w, http.StatusOK, api.SubmitResponse{
		Status:    http.StatusOK,
		SessionID: sessionID,
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
