package server

import (
	"embed"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/time/rate"

	"github.com/burstline/core/internal/config"
	"github.com/burstline/core/pkg/audit"
	"github.com/burstline/core/pkg/handlers/health"
	"github.com/burstline/core/pkg/handlers/historyapi"
	"github.com/burstline/core/pkg/handlers/processes"
	"github.com/burstline/core/pkg/handlers/statistics"
	"github.com/burstline/core/pkg/handlers/submit"
	"github.com/burstline/core/pkg/history"
	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/middleware"
	"github.com/burstline/core/pkg/registry"
	"github.com/burstline/core/pkg/scheduler"
	"github.com/burstline/core/pkg/services"
)

//go:embed static/index.html
var staticFS embed.FS

// Server wires the registries, scheduler, stores and HTTP surface together.
type Server struct {
	router   *http.ServeMux
	port     string
	logger   *logger.Logger
	store    *history.Store
	audit    *audit.Store
	sched    *scheduler.Scheduler
	submitRL *rate.Limiter
	handlers struct {
		submit     *submit.Handler
		processes  *processes.Handler
		history    *historyapi.Handler
		statistics *statistics.Handler
		health     *health.Handler
	}
}

// New creates a fully wired server instance.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	store, err := history.New(cfg.Storage.HistoryFile, cfg.Secrets.ClearKey, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	auditStore, err := audit.Open(cfg.Storage.AuditDB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit store: %w", err)
	}

	jobs := registry.NewJobRegistry()
	sessions := registry.NewSessionRegistry()
	sched := scheduler.New(jobs, sessions, store, log, scheduler.Options{})

	lookups := services.NewLookupClient(cfg, log)
	action := services.NewHTTPAction(cfg, log)

	server := &Server{
		router: http.NewServeMux(),
		port:   port,
		logger: log,
		store:  store,
		audit:  auditStore,
		sched:  sched,
		submitRL: rate.NewLimiter(
			rate.Limit(float64(cfg.Submit.RatePerMinute)/60.0),
			cfg.Submit.Burst,
		),
	}

	server.handlers.submit = submit.NewHandler(sessions, sched, lookups, lookups, action, auditStore, log)
	server.handlers.processes = processes.NewHandler(jobs, sched, cfg.Secrets.StopKey, auditStore, log)
	server.handlers.history = historyapi.NewHandler(store, auditStore, log)
	server.handlers.statistics = statistics.NewHandler(store, log)
	server.handlers.health = health.NewHandler(sched, store, log)

	server.setupRoutes()

	log.Info().
		Str("action", "server_wired").
		Str("port", port).
		Str("history_file", cfg.Storage.HistoryFile).
		Msg("Server components wired")

	return server, nil
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	wrap := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.CORS(middleware.RequestID(s.logger, h))
	}

	s.router.HandleFunc("/api/submit", wrap(middleware.RateLimit(s.submitRL, s.handlers.submit.Submit)))
	s.router.HandleFunc("/total", wrap(s.handlers.processes.List))
	s.router.HandleFunc("/api/stop/", wrap(s.handlers.processes.Stop))
	s.router.HandleFunc("/api/history", wrap(s.handlers.history.List))
	s.router.HandleFunc("/api/history/save", wrap(s.handlers.history.Save))
	s.router.HandleFunc("/api/history/clear", wrap(s.handlers.history.Clear))
	s.router.HandleFunc("/api/statistics", wrap(s.handlers.statistics.Get))
	s.router.HandleFunc("/health", wrap(s.handlers.health.HealthCheck))

	s.router.HandleFunc("/", wrap(s.landing))
}

// landing serves the embedded landing page on the exact root path.
func (s *Server) landing(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "Failed to load landing page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().
		Str("action", "server_start").
		Str("port", s.port).
		Msg("Starting control API server")

	if err := http.ListenAndServe(":"+s.port, s.router); err != nil {
		return fmt.Errorf("server failed to start on port %s: %w", s.port, err)
	}

	return nil
}

// Close shuts the scheduler down and closes the audit store.
func (s *Server) Close() {
	s.sched.Shutdown()
	if s.audit != nil {
		if err := s.audit.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to close audit store")
		}
	}
	s.logger.Info().Msg("Server components shut down")
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
