package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/burstline/core/internal/config"
	"github.com/burstline/core/pkg/logger"
)

var tokenPattern = regexp.MustCompile(`"accessToken":\s*"([^"]+)"`)

// LookupClient resolves target identifiers and authorization tokens through
// the two external lookup services. Both calls run through one circuit
// breaker so a flapping upstream fails submissions fast instead of stalling
// them.
type LookupClient struct {
	resolverURL string
	tokenURL    string
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker
	logger      *logger.Logger
}

func NewLookupClient(cfg *config.Config, log *logger.Logger) *LookupClient {
	return &LookupClient{
		resolverURL: cfg.External.ResolverURL,
		tokenURL:    cfg.External.TokenURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.External.Timeout) * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "external-lookups",
			Timeout: 30 * time.Second,
		}),
		logger: log,
	}
}

// ResolveTarget asks the resolver service for the target identifier behind
// the submitted URL. An empty identifier means the target is not reachable
// for this submitter.
func (c *LookupClient) ResolveTarget(ctx context.Context, link string) (string, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		form := url.Values{"link": {link}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolverURL,
			strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to make request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("resolver returned status %d", resp.StatusCode)
		}

		var body struct {
			ID json.Number `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode resolver response: %w", err)
		}
		return body.ID.String(), nil
	})
	c.logger.LogAPICall(http.MethodPost, c.resolverURL, 0, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("target lookup failed: %w", err)
	}

	id := result.(string)
	if id == "" {
		return "", fmt.Errorf("unable to resolve target id: the target may be private or restricted")
	}
	return id, nil
}

// ResolveToken fetches the token page with the rebuilt credential and
// extracts the embedded authorization token.
func (c *LookupClient) ResolveToken(ctx context.Context, credential string) (string, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tokenURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Cookie", credential)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to make request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read token response: %w", err)
		}

		match := tokenPattern.FindSubmatch(data)
		if match == nil {
			return nil, fmt.Errorf("no authorization token in response")
		}
		return string(match[1]), nil
	})
	c.logger.LogAPICall(http.MethodGet, c.tokenURL, 0, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("token lookup failed: %w", err)
	}
	return result.(string), nil
}
