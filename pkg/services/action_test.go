package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/burstline/core/pkg/logger"
)

func newTestAction(url string) *HTTPAction {
	return &HTTPAction{
		actionURL: url,
		client:    &http.Client{Timeout: 5 * time.Second},
		logger:    logger.New("test"),
	}
}

func TestHTTPAction_Perform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if r.Form.Get("target") != "42" || r.Form.Get("access_token") != "TOK" {
			t.Errorf("unexpected form: %v", r.Form)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestAction(srv.URL).Perform(context.Background(), "42", "TOK"); err != nil {
		t.Fatalf("Perform() error = %v", err)
	}
}

func TestHTTPAction_SoftRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestAction(srv.URL).Perform(context.Background(), "42", "TOK")
	if !errors.Is(err, ErrActionRejected) {
		t.Fatalf("Perform() error = %v, want ErrActionRejected", err)
	}
}

func TestHTTPAction_TransportFailureIsHard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // unreachable on purpose

	err := newTestAction(srv.URL).Perform(context.Background(), "42", "TOK")
	if err == nil {
		t.Fatal("Perform() against closed server should fail")
	}
	if errors.Is(err, ErrActionRejected) {
		t.Fatal("transport failure must not look like a soft rejection")
	}
}
