package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/pilotdeck/pilotdeck/pkg/config"
)

const (
	adminTokenHeader = "X-PM-Token"
	agentTokenHeader = "X-PM-Agent-Token"

	// defaultAttempts applies to idempotent reads
	defaultAttempts = 2
)

// authMode selects which token header a request carries
type authMode int

const (
	authNone authMode = iota
	authAdmin
	authAgent
)

// client is the PilotDeck API client
type client struct {
	config     *config.Config
	httpClient *http.Client
}

var _ Client = (*client)(nil)

// NewClient creates a new API client
func NewClient(cfg *config.Config) (Client, error) {
	if cfg.GetAPIBaseURL() == "" {
		return nil, fmt.Errorf("no server URL configured")
	}
	return &client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// requestOptions tunes a single call to request
type requestOptions struct {
	auth     authMode
	attempts uint
}

// request makes an HTTP request to the PilotDeck API with retry logic.
// Transport failures are retried; any HTTP response other than 2xx is final.
func (c *client) request(ctx context.Context, method, path string, body any, opts requestOptions) ([]byte, error) {
	if opts.attempts == 0 {
		opts.attempts = defaultAttempts
	}

	var token string
	switch opts.auth {
	case authAdmin:
		token = c.config.GetAdminToken()
		if token == "" {
			slog.Warn("Admin endpoint called without a token", "path", path)
			return nil, ErrAdminTokenMissing
		}
	case authAgent:
		token = c.config.GetAgentToken()
	}

	var respBody []byte
	attempt := 0

	err := retry.Do(
		func() error {
			attempt++

			reqURL := c.config.GetAPIBaseURL() + path

			slog.Debug("API request",
				"method", method,
				"path", path,
				"url", reqURL,
				"auth", opts.auth,
				"attempt", attempt,
			)

			var bodyReader io.Reader
			if body != nil {
				jsonBody, err := json.Marshal(body)
				if err != nil {
					slog.Error("Failed to marshal request body", "error", err, "path", path)
					return retry.Unrecoverable(fmt.Errorf("failed to marshal request body: %w", err))
				}
				bodyReader = bytes.NewReader(jsonBody)
				slog.Debug("Request body marshalled", "size", len(jsonBody))
			}

			req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
			if err != nil {
				slog.Error("Failed to create HTTP request", "error", err, "method", method, "url", reqURL)
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}

			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json")
			req.Header.Set("X-Source", "cli")

			switch {
			case opts.auth == authAdmin:
				req.Header.Set(adminTokenHeader, token)
			case opts.auth == authAgent && token != "":
				req.Header.Set(agentTokenHeader, token)
			}

			startTime := time.Now()
			resp, err := c.httpClient.Do(req)
			duration := time.Since(startTime)

			if err != nil {
				slog.Warn("HTTP request failed",
					"error", err,
					"method", method,
					"path", path,
					"duration", duration,
					"attempt", attempt,
				)
				// A cancelled caller is not a network problem
				if ctxErr := ctx.Err(); ctxErr != nil {
					return retry.Unrecoverable(ctxErr)
				}
				return fmt.Errorf("%w: %w", ErrNetworkUnreachable, err)
			}
			defer resp.Body.Close() //nolint:errcheck // Deferred close, error not actionable

			respBody, err = io.ReadAll(resp.Body)
			if err != nil {
				slog.Error("Failed to read response body", "error", err, "statusCode", resp.StatusCode)
				return fmt.Errorf("%w: failed to read response: %w", ErrNetworkUnreachable, err)
			}

			slog.Debug("API response",
				"statusCode", resp.StatusCode,
				"responseSize", len(respBody),
				"duration", duration,
				"method", method,
				"path", path,
			)

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				slog.Info("API request successful",
					"method", method,
					"path", path,
					"statusCode", resp.StatusCode,
					"duration", duration,
				)
				return nil
			}

			apiErr := newAPIError(resp.StatusCode, respBody)
			slog.Error("API error",
				"statusCode", resp.StatusCode,
				"message", apiErr.Message,
				"path", path,
				"method", method,
			)
			return retry.Unrecoverable(apiErr)
		},
		retry.Attempts(opts.attempts),
		retry.Context(ctx),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}

	return respBody, nil
}

func unmarshal(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(body, v)
}

// GetProjects retrieves projects in server order, optionally filtered
func (c *client) GetProjects(ctx context.Context, filters ProjectFilters) ([]Project, error) {
	params := url.Values{}
	if filters.Status != "" {
		params.Set("status", string(filters.Status))
	}
	if filters.Priority != "" {
		params.Set("priority", string(filters.Priority))
	}
	if filters.Category != "" {
		params.Set("category", filters.Category)
	}

	body, err := c.request(ctx, http.MethodGet, withQuery("/projects", params), nil, requestOptions{})
	if err != nil {
		return nil, err
	}

	var resp envelope[[]Project]
	if err := unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse projects response: %w", err)
	}

	return resp.Data, nil
}

// GetProject retrieves a single project by ID
func (c *client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	body, err := c.request(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID), nil, requestOptions{})
	if err != nil {
		return nil, err
	}

	var resp envelope[*Project]
	if err := unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse project response: %w", err)
	}
	if resp.Data == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "Project not found"}
	}

	return resp.Data, nil
}

// GetStats retrieves project statistics
func (c *client) GetStats(ctx context.Context) (*Stats, error) {
	body, err := c.request(ctx, http.MethodGet, "/stats", nil, requestOptions{})
	if err != nil {
		return nil, err
	}

	var resp envelope[Stats]
	if err := unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse stats response: %w", err)
	}

	return &resp.Data, nil
}

// GetMeta retrieves service metadata
func (c *client) GetMeta(ctx context.Context) (*Meta, error) {
	body, err := c.request(ctx, http.MethodGet, "/meta", nil, requestOptions{})
	if err != nil {
		return nil, err
	}

	var resp envelope[Meta]
	if err := unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse meta response: %w", err)
	}

	return &resp.Data, nil
}

// GetHealth checks the service health endpoint. Unlike the other endpoints
// the payload is not wrapped in data.
func (c *client) GetHealth(ctx context.Context) (*Health, error) {
	body, err := c.request(ctx, http.MethodGet, "/health", nil, requestOptions{})
	if err != nil {
		return nil, err
	}

	var health Health
	if err := unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}

	return &health, nil
}

// GetAgentRuns lists agent runs, newest first
func (c *client) GetAgentRuns(ctx context.Context, filters AgentRunFilters) (*AgentRunList, error) {
	params := url.Values{}
	if filters.ProjectID != "" {
		params.Set("projectId", filters.ProjectID)
	}
	if filters.AgentID != "" {
		params.Set("agentId", filters.AgentID)
	}
	if filters.Status != "" {
		params.Set("status", string(filters.Status))
	}
	if filters.Limit > 0 {
		params.Set("limit", strconv.Itoa(filters.Limit))
	}
	if filters.Offset > 0 {
		params.Set("offset", strconv.Itoa(filters.Offset))
	}

	body, err := c.request(ctx, http.MethodGet, withQuery("/agent/runs", params), nil, requestOptions{auth: authAgent})
	if err != nil {
		return nil, err
	}

	var list AgentRunList
	if err := unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse agent runs response: %w", err)
	}

	return &list, nil
}

// GetAgentEvents lists agent events matching the filters
func (c *client) GetAgentEvents(ctx context.Context, filters AgentEventFilters) ([]AgentEvent, error) {
	params := url.Values{}
	if filters.ProjectID != "" {
		params.Set("projectId", filters.ProjectID)
	}
	if filters.RunID != "" {
		params.Set("runId", filters.RunID)
	}
	if filters.AgentID != "" {
		params.Set("agentId", filters.AgentID)
	}
	if filters.Type != "" {
		params.Set("type", filters.Type)
	}
	if !filters.Since.IsZero() {
		params.Set("since", filters.Since.UTC().Format(time.RFC3339))
	}
	if filters.Limit > 0 {
		params.Set("limit", strconv.Itoa(filters.Limit))
	}

	body, err := c.request(ctx, http.MethodGet, withQuery("/agent/events", params), nil, requestOptions{auth: authAgent})
	if err != nil {
		return nil, err
	}

	var resp envelope[[]AgentEvent]
	if err := unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse agent events response: %w", err)
	}

	return resp.Data, nil
}

// StartDeploy starts the pull-and-restart job on the server. Not retried:
// a second POST would start a second job.
func (c *client) StartDeploy(ctx context.Context) (*DeployStartResponse, error) {
	body, err := c.request(ctx, http.MethodPost, "/admin/deploy", nil, requestOptions{auth: authAdmin, attempts: 1})
	if err != nil {
		return nil, err
	}

	var resp DeployStartResponse
	if err := unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse deploy response: %w", err)
	}

	return &resp, nil
}

// GetDeployStatus fetches the state of the current deploy job. Single
// attempt: callers that poll own the backoff.
func (c *client) GetDeployStatus(ctx context.Context) (*DeployStatus, error) {
	body, err := c.request(ctx, http.MethodGet, "/admin/deploy/status", nil, requestOptions{auth: authAdmin, attempts: 1})
	if err != nil {
		return nil, err
	}

	var resp envelope[DeployStatus]
	if err := unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse deploy status response: %w", err)
	}
	resp.Data.State = resp.Data.State.Normalize()

	return &resp.Data, nil
}

// GetDeployLog fetches the current tail window of the deploy log
func (c *client) GetDeployLog(ctx context.Context) (*DeployLogResponse, error) {
	body, err := c.request(ctx, http.MethodGet, "/admin/deploy/log", nil, requestOptions{auth: authAdmin, attempts: 1})
	if err != nil {
		return nil, err
	}

	var resp DeployLogResponse
	if err := unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse deploy log response: %w", err)
	}
	if resp.Lines == nil {
		resp.Lines = []string{}
	}

	return &resp, nil
}

// PushData runs the server's push script
func (c *client) PushData(ctx context.Context, mode PushMode) (*OpsResult, error) {
	if mode == "" {
		mode = PushDataOnly
	}
	payload := map[string]string{"mode": string(mode)}

	body, err := c.request(ctx, http.MethodPost, "/admin/push", payload, requestOptions{auth: authAdmin, attempts: 1})
	if err != nil {
		return nil, err
	}

	var result OpsResult
	if err := unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse push response: %w", err)
	}

	return &result, nil
}

// PullDataRepo runs the server's data pull script
func (c *client) PullDataRepo(ctx context.Context) (*OpsResult, error) {
	body, err := c.request(ctx, http.MethodPost, "/admin/data/pull", nil, requestOptions{auth: authAdmin, attempts: 1})
	if err != nil {
		return nil, err
	}

	var result OpsResult
	if err := unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse pull response: %w", err)
	}

	return &result, nil
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
