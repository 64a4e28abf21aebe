package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/burstline/core/pkg/history"
	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/models/api"
	"github.com/burstline/core/pkg/registry"
	"github.com/burstline/core/pkg/scheduler"
)

func TestHealthCheck(t *testing.T) {
	log := logger.New("test")
	store, err := history.New(filepath.Join(t.TempDir(), "history.json"), "secret", log)
	if err != nil {
		t.Fatalf("history.New() error = %v", err)
	}
	sched := scheduler.New(registry.NewJobRegistry(), registry.NewSessionRegistry(), store, log, scheduler.Options{})
	t.Cleanup(sched.Shutdown)

	h := NewHandler(sched, store, log)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp api.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.ActiveJobs != 0 || resp.History != 0 {
		t.Errorf("counts = %d/%d, want 0/0", resp.ActiveJobs, resp.History)
	}
	if time.Since(resp.Timestamp) > time.Minute {
		t.Error("timestamp not current")
	}
}
