package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/burstline/core/internal/config"
	"github.com/burstline/core/pkg/logger"
)

// ErrActionRejected marks a soft failure: the action endpoint was reachable
// but refused the attempt. Soft failures never advance a job's count and
// never terminate it.
var ErrActionRejected = errors.New("action rejected")

// HTTPAction performs the repeat action against the remote endpoint.
type HTTPAction struct {
	actionURL string
	client    *http.Client
	logger    *logger.Logger
}

func NewHTTPAction(cfg *config.Config, log *logger.Logger) *HTTPAction {
	return &HTTPAction{
		actionURL: cfg.External.ActionURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.External.Timeout) * time.Second,
		},
		logger: log,
	}
}

// Perform fires one attempt. A transport error is a hard failure and is
// returned as-is; a non-2xx response wraps ErrActionRejected.
func (a *HTTPAction) Perform(ctx context.Context, targetID, token string) error {
	form := url.Values{
		"target":       {targetID},
		"access_token": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.actionURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.LogAPICall(http.MethodPost, a.actionURL, 0, time.Since(start), err)
		return fmt.Errorf("action request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	a.logger.LogAPICall(http.MethodPost, a.actionURL, resp.StatusCode, time.Since(start), nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrActionRejected, resp.StatusCode)
	}
	return nil
}
