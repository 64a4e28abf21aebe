package historyapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/burstline/core/pkg/history"
	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/models"
)

func newTestHandler(t *testing.T) (*Handler, *history.Store) {
	t.Helper()
	log := logger.New("test")
	store, err := history.New(filepath.Join(t.TempDir(), "history.json"), "shareddd", log)
	if err != nil {
		t.Fatalf("history.New() error = %v", err)
	}
	return NewHandler(store, nil, log), store
}

func do(fn http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func TestList(t *testing.T) {
	h, store := newTestHandler(t)
	if err := store.Append(models.NewHistoryEntry(models.StatusCompleted, 1, "alice", "http://example.com", 3, 3)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	rec := do(h.List, http.MethodGet, "/api/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "alice" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestSave(t *testing.T) {
	h, store := newTestHandler(t)

	body := `[{"id":"completed-1-1","status":"completed","sessionId":1,"url":"http://example.com","username":"alice","count":3,"target":3,"timestamp":"2026-08-30T10:00:00Z","completed":true}]`
	rec := do(h.Save, http.MethodPost, "/api/history/save", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(store.List()) != 1 {
		t.Errorf("store has %d entries, want 1", len(store.List()))
	}
}

func TestSave_InvalidPayload(t *testing.T) {
	h, store := newTestHandler(t)

	for _, body := range []string{`{"not":"a list"}`, "hello", ""} {
		rec := do(h.Save, http.MethodPost, "/api/history/save", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
	if len(store.List()) != 0 {
		t.Error("invalid payload modified the store")
	}
}

func TestClear(t *testing.T) {
	h, store := newTestHandler(t)
	if err := store.Append(models.NewHistoryEntry(models.StatusStopped, 1, "alice", "http://example.com", 1, 3)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	rec := do(h.Clear, http.MethodPost, "/api/history/clear", `{"key":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key status = %d, want 401", rec.Code)
	}
	if len(store.List()) != 1 {
		t.Error("unauthorized clear wiped the store")
	}

	rec = do(h.Clear, http.MethodPost, "/api/history/clear", `{"key":"shareddd"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(store.List()) != 0 {
		t.Error("store not empty after clear")
	}
}
