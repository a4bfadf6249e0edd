// Package event publishes audit events to the external event API. The
// engine's verdicts are observed by this collaborator after the fact; the
// verdict path never depends on event publication succeeding.
package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// tokenSkew is how long before expiry a cached token is considered stale.
const tokenSkew = time.Minute

// Source identifies this service in published events.
const Source = "assure-code-compliance"

// Event is one audit event.
type Event struct {
	EventType   string         `json:"eventType"`
	WorkspaceID string         `json:"workspaceId"`
	UserID      string         `json:"userId"`
	Metadata    map[string]any `json:"metadata"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Source      string         `json:"source"`
}

// token is the cached OAuth access token. The cache entry is owned by the
// client and written only under mu; readers take the same lock.
type token struct {
	accessToken string
	expiresAt   time.Time
}

// fresh reports whether the token is still usable at now, honoring the skew.
func (t token) fresh(now time.Time) bool {
	return t.accessToken != "" && t.expiresAt.Sub(now) > tokenSkew
}

// Client talks to the event API using the OAuth client-credentials grant.
// A zero BaseURL disables publication: Publish becomes a logged no-op so an
// unconfigured deployment keeps working.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger

	mu    sync.Mutex
	cache token

	// now is swappable for tests.
	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates an event API client.
func NewClient(baseURL, clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has an event API to talk to.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// accessToken returns a fresh access token, requesting a new one via the
// client-credentials flow when the cached entry is missing or near expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache.fresh(c.now()) {
		return c.cache.accessToken, nil
	}

	body, err := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed: %s", resp.Status)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.cache = token{
		accessToken: tr.AccessToken,
		expiresAt:   c.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	return c.cache.accessToken, nil
}

// Publish sends one event. Callers on the verdict path should log and
// continue on error rather than failing the request.
func (c *Client) Publish(ctx context.Context, ev Event) error {
	if !c.Configured() {
		c.logger.Debug("Event API not configured, skipping event", "event_type", ev.EventType)
		return nil
	}

	accessToken, err := c.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("get access token: %w", err)
	}

	if ev.Timestamp == "" {
		ev.Timestamp = c.now().UTC().Format(time.RFC3339)
	}
	ev.Source = Source

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/events", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create event request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("event request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("event request failed: %s %s", resp.Status, msg)
	}

	c.logger.Debug("Event published", "event_type", ev.EventType)
	return nil
}

// ComplianceCheckResult is the subset of a verdict the audit log records.
type ComplianceCheckResult struct {
	Frameworks     []string
	Status         string
	ViolationCount int
}

// LogComplianceCheck publishes a compliance.check.completed event.
func (c *Client) LogComplianceCheck(ctx context.Context, workspaceID, userID string, result ComplianceCheckResult) error {
	return c.Publish(ctx, Event{
		EventType:   "compliance.check.completed",
		WorkspaceID: workspaceID,
		UserID:      userID,
		Metadata: map[string]any{
			"frameworks":            result.Frameworks,
			"severity":              result.Status,
			"violationCount":        result.ViolationCount,
			"hasBlockingViolations": result.Status == "blocking-violations",
		},
	})
}

// LogSpecificationGeneration publishes a specification.generated.* event.
func (c *Client) LogSpecificationGeneration(ctx context.Context, workspaceID, userID, specificationID string, success bool) error {
	eventType := "specification.generated.failure"
	if success {
		eventType = "specification.generated.success"
	}
	return c.Publish(ctx, Event{
		EventType:   eventType,
		WorkspaceID: workspaceID,
		UserID:      userID,
		Metadata: map[string]any{
			"specificationId": specificationID,
		},
	})
}

// LogWorkspaceCreated publishes a workspace.created event.
func (c *Client) LogWorkspaceCreated(ctx context.Context, workspaceID, userID, name string) error {
	return c.Publish(ctx, Event{
		EventType:   "workspace.created",
		WorkspaceID: workspaceID,
		UserID:      userID,
		Metadata: map[string]any{
			"workspaceName": name,
		},
	})
}
