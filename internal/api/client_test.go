package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotdeck/pilotdeck/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, adminToken string) Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("PILOTDECK_SERVER_URL", "")
	t.Setenv("PM_ADMIN_TOKEN", "")
	t.Setenv("PM_AGENT_TOKEN", "")

	cfg, err := config.New(config.EnvProd, server.URL+"/api", adminToken)
	require.NoError(t, err)

	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestClient_GetDeployLog(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/admin/deploy/log", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-PM-Token"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"lines":   []string{"a", "b"},
		})
	}, "secret")

	resp, err := c.GetDeployLog(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, resp.Lines)
}

func TestClient_GetDeployLog_NullLines(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	}, "secret")

	resp, err := c.GetDeployLog(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, resp.Lines)
	assert.Empty(t, resp.Lines)
}

func TestClient_GetDeployStatus(t *testing.T) {
	tcs := []struct {
		name     string
		state    string
		expected DeployJobState
	}{
		{name: "running", state: "running", expected: DeployStateRunning},
		{name: "success", state: "success", expected: DeployStateSuccess},
		{name: "failed", state: "failed", expected: DeployStateFailed},
		{name: "unrecognized maps to unknown", state: "queued", expected: DeployStateUnknown},
		{name: "missing maps to unknown", state: "", expected: DeployStateUnknown},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/admin/deploy/status", r.URL.Path)
				writeJSON(t, w, http.StatusOK, map[string]any{
					"success": true,
					"data":    map[string]any{"state": tc.state, "method": "systemd-run", "exitCode": 0},
				})
			}, "secret")

			status, err := c.GetDeployStatus(t.Context())
			require.NoError(t, err)
			assert.Equal(t, tc.expected, status.State)
			assert.Equal(t, "systemd-run", status.Method)
		})
	}
}

func TestClient_AdminTokenMissing(t *testing.T) {
	var called atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	}, "")

	_, err := c.GetDeployLog(t.Context())
	require.ErrorIs(t, err, ErrAdminTokenMissing)
	assert.False(t, called.Load(), "no request should be sent without a token")
}

func TestClient_ErrorResponses(t *testing.T) {
	tcs := []struct {
		name            string
		status          int
		body            string
		expectedMessage string
		expectedOutput  string
	}{
		{
			name:            "unauthorized",
			status:          http.StatusUnauthorized,
			body:            `{"success":false,"error":"Unauthorized"}`,
			expectedMessage: "Unauthorized",
		},
		{
			name:            "server missing admin token",
			status:          http.StatusServiceUnavailable,
			body:            `{"success":false,"error":"Admin token not configured. Set PM_ADMIN_TOKEN in service environment."}`,
			expectedMessage: "Admin token not configured. Set PM_ADMIN_TOKEN in service environment.",
		},
		{
			name:            "message field fallback",
			status:          http.StatusBadRequest,
			body:            `{"success":false,"message":"bad mode"}`,
			expectedMessage: "bad mode",
		},
		{
			name:            "non-json gateway error",
			status:          http.StatusBadGateway,
			body:            `<html>502 Bad Gateway</html>`,
			expectedMessage: "HTTP 502",
		},
		{
			name:            "empty body",
			status:          http.StatusGatewayTimeout,
			expectedMessage: "HTTP 504",
		},
		{
			name:            "script failure with output",
			status:          http.StatusConflict,
			body:            `{"success":false,"error":"[ERROR] dirty worktree","output":"line1\nline2","exitCode":2}`,
			expectedMessage: "[ERROR] dirty worktree",
			expectedOutput:  "line1\nline2",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			var requests atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, "secret")

			_, err := c.PullDataRepo(t.Context())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "expected *APIError, got %T", err)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.expectedMessage, apiErr.Message)
			assert.Equal(t, tc.expectedOutput, apiErr.Output)
			assert.Equal(t, int32(1), requests.Load(), "HTTP errors are not retried")
		})
	}
}

func TestClient_NetworkUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	t.Setenv("PILOTDECK_SERVER_URL", "")
	t.Setenv("PM_ADMIN_TOKEN", "")
	cfg, err := config.New(config.EnvProd, baseURL+"/api", "secret")
	require.NoError(t, err)
	c, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = c.GetDeployStatus(t.Context())
	require.ErrorIs(t, err, ErrNetworkUnreachable)
}

func TestClient_GetRetriesTransportFailure(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			// Drop the connection without a response
			hj, ok := w.(http.Hijacker)
			if !assert.True(t, ok) {
				return
			}
			conn, _, err := hj.Hijack()
			if assert.NoError(t, err) {
				_ = conn.Close()
			}
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"status": "healthy", "timestamp": "2026-01-02T03:04:05"})
	}, "")

	health, err := c.GetHealth(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, int32(2), requests.Load())
}

func TestClient_GetProjects(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects", r.URL.Path)
		assert.Equal(t, "in-progress", r.URL.Query().Get("status"))
		assert.Equal(t, "high", r.URL.Query().Get("priority"))
		assert.Empty(t, r.Header.Get("X-PM-Token"), "public endpoints carry no admin token")
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "p1", "name": "Alpha", "status": "in-progress", "priority": "high", "progress": 40, "tags": []string{"web"}, "cost": map[string]any{"total": 10.5}},
			},
		})
	}, "secret")

	projects, err := c.GetProjects(t.Context(), ProjectFilters{Status: ProjectStatusInProgress, Priority: PriorityHigh})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, 40, projects[0].Progress)
	assert.InDelta(t, 10.5, projects[0].Cost.Total, 0.001)
}

func TestClient_GetProject_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "data": nil})
	}, "")

	_, err := c.GetProject(t.Context(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_GetAgentEvents(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/agent/events", r.URL.Path)
		assert.Equal(t, "p1", q.Get("projectId"))
		assert.Equal(t, "milestone", q.Get("type"))
		assert.Equal(t, "2026-03-01T12:00:00Z", q.Get("since"))
		assert.Equal(t, "25", q.Get("limit"))
		assert.Empty(t, q.Get("runId"))
		assert.Equal(t, "agent-secret", r.Header.Get("X-PM-Agent-Token"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "e1", "ts": "2026-03-01T12:30:00+00:00", "type": "milestone", "level": "info", "title": "shipped"},
			},
			"total": 1,
		})
	}, "")
	t.Setenv("PM_AGENT_TOKEN", "agent-secret")

	events, err := c.GetAgentEvents(t.Context(), AgentEventFilters{ProjectID: "p1", Type: "milestone", Since: since, Limit: 25})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "shipped", events[0].Title)
	assert.Equal(t, 30, events[0].Timestamp.Minute())
}

func TestClient_GetAgentRuns(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "running", q.Get("status"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Empty(t, q.Get("offset"))
		assert.Empty(t, r.Header.Get("X-PM-Agent-Token"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    []map[string]any{{"id": "r1", "status": "running", "finishedAt": nil}},
			"total":   7,
			"limit":   10,
			"offset":  0,
		})
	}, "")

	list, err := c.GetAgentRuns(t.Context(), AgentRunFilters{Status: AgentRunRunning, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 7, list.Total)
	require.Len(t, list.Runs, 1)
	assert.True(t, list.Runs[0].FinishedAt.IsZero())
}

func TestClient_PushData(t *testing.T) {
	tcs := []struct {
		name     string
		mode     PushMode
		expected string
	}{
		{name: "default is data-only", mode: "", expected: "data-only"},
		{name: "all", mode: PushAll, expected: "all"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				var body map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, tc.expected, body["mode"])
				writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "output": "pushed"})
			}, "secret")

			result, err := c.PushData(t.Context(), tc.mode)
			require.NoError(t, err)
			assert.Equal(t, "pushed", result.Output)
		})
	}
}

func TestClient_StartDeploy(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/admin/deploy", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"jobId":   "20260301-120000",
			"method":  "systemd-run",
			"unit":    "pm-deploy-20260301",
			"pid":     nil,
			"logFile": "deploy_run.log",
		})
	}, "secret")

	resp, err := c.StartDeploy(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "20260301-120000", resp.JobID)
	assert.Equal(t, "pm-deploy-20260301", resp.Unit)
	assert.Nil(t, resp.PID)
	assert.Equal(t, int32(1), requests.Load())
}
