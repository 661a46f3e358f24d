package api

import (
	"encoding/json"
	"strings"
	"time"
)

type NullableTime struct {
	time.Time
}

func (nt *NullableTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	// Handle null, empty string, or missing
	if s == "null" || s == `""` || s == "" {
		return nil
	}

	// The server writes both offset-aware and naive ISO timestamps
	var lastErr error
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		t, err := time.Parse(`"`+layout+`"`, s)
		if err == nil {
			nt.Time = t
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusPaused     ProjectStatus = "paused"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// ProjectPriority orders projects in the priority sort
type ProjectPriority string

const (
	PriorityLow    ProjectPriority = "low"
	PriorityMedium ProjectPriority = "medium"
	PriorityHigh   ProjectPriority = "high"
	PriorityUrgent ProjectPriority = "urgent"
)

// Rank returns the sort weight of the priority, highest first.
// Unknown priorities sort after low.
func (p ProjectPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Money is the {total: n, ...} shape used for project cost and revenue
type Money struct {
	Total float64 `json:"total"`
}

// OrderItem is a customer order attached to a project
type OrderItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Customer  string  `json:"customer"`
	Amount    float64 `json:"amount"`
	Cost      float64 `json:"cost"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
	DueDate   string  `json:"dueDate,omitempty"`
	Note      string  `json:"note,omitempty"`
}

// Project represents a PilotDeck project
type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Notes       string          `json:"notes"`
	Status      ProjectStatus   `json:"status"`
	Priority    ProjectPriority `json:"priority"`
	Category    string          `json:"category,omitempty"`
	Progress    int             `json:"progress"` // 0-100
	Tags        []string        `json:"tags"`
	Cost        Money           `json:"cost"`
	Revenue     Money           `json:"revenue"`
	GitHub      string          `json:"github,omitempty"`
	Workspace   string          `json:"workspace,omitempty"`
	Orders      []OrderItem     `json:"orders,omitempty"`
	CreatedAt   NullableTime    `json:"createdAt"`
	UpdatedAt   NullableTime    `json:"updatedAt"`
}

// ProjectFilters are the server-side filters of GET /projects
type ProjectFilters struct {
	Status   ProjectStatus
	Priority ProjectPriority
	Category string
}

// FinancialStats summarizes cost and revenue across projects
type FinancialStats struct {
	TotalCost    float64 `json:"totalCost"`
	TotalRevenue float64 `json:"totalRevenue"`
	NetProfit    float64 `json:"netProfit"`
}

// Stats is returned by GET /stats
type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority"`
	Financial  FinancialStats `json:"financial"`
}

// Meta describes the server, returned by GET /meta
type Meta struct {
	Service         string          `json:"service"`
	APIBase         string          `json:"apiBase"`
	DataLastUpdated string          `json:"dataLastUpdated"`
	ProjectCount    int             `json:"projectCount"`
	Enums           MetaEnums       `json:"enums"`
	Auth            MetaAuth        `json:"auth"`
	Capabilities    map[string]bool `json:"capabilities"`
}

type MetaEnums struct {
	Status   []string `json:"status"`
	Priority []string `json:"priority"`
}

type MetaAuth struct {
	AgentTokenRequired bool   `json:"agentTokenRequired"`
	AdminTokenRequired bool   `json:"adminTokenRequired"`
	AgentHeader        string `json:"agentHeader"`
	AdminHeader        string `json:"adminHeader"`
}

// Health is returned by GET /health
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// AgentRunStatus is the state of an agent run
type AgentRunStatus string

const (
	AgentRunRunning   AgentRunStatus = "running"
	AgentRunCompleted AgentRunStatus = "completed"
	AgentRunFailed    AgentRunStatus = "failed"
	AgentRunCancelled AgentRunStatus = "cancelled"
)

// AgentRun is one unit of agent work tracked by the server
type AgentRun struct {
	ID         string         `json:"id"`
	ProjectID  string         `json:"projectId"`
	AgentID    string         `json:"agentId"`
	Title      string         `json:"title"`
	Summary    string         `json:"summary"`
	Status     AgentRunStatus `json:"status"`
	CreatedAt  NullableTime   `json:"createdAt"`
	UpdatedAt  NullableTime   `json:"updatedAt"`
	StartedAt  NullableTime   `json:"startedAt"`
	FinishedAt NullableTime   `json:"finishedAt"`
	Links      []string       `json:"links"`
	Tags       []string       `json:"tags"`
	Metrics    map[string]any `json:"metrics"`
	Meta       map[string]any `json:"meta"`
}

// AgentRunFilters are the query parameters of GET /agent/runs.
// Zero values are omitted; the server clamps Limit to 1..500.
type AgentRunFilters struct {
	ProjectID string
	AgentID   string
	Status    AgentRunStatus
	Limit     int
	Offset    int
}

// AgentRunList is a page of agent runs
type AgentRunList struct {
	Runs   []AgentRun `json:"data"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// AgentEvent is an entry in the agent event stream
type AgentEvent struct {
	ID        string          `json:"id"`
	Timestamp NullableTime    `json:"ts"`
	Type      string          `json:"type"`  // note, action, result, error, milestone
	Level     string          `json:"level"` // debug, info, warn, error
	ProjectID string          `json:"projectId"`
	RunID     string          `json:"runId"`
	AgentID   string          `json:"agentId"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// AgentEventFilters are the query parameters of GET /agent/events.
// The server clamps Limit to 1..2000.
type AgentEventFilters struct {
	ProjectID string
	RunID     string
	AgentID   string
	Type      string
	Since     time.Time
	Limit     int
}

// DeployStartResponse is returned by POST /admin/deploy
type DeployStartResponse struct {
	JobID   string `json:"jobId"`
	Method  string `json:"method"`
	Unit    string `json:"unit"`
	PID     *int   `json:"pid"`
	LogFile string `json:"logFile"`
}

// DeployJobState is the server-reported state of the current deploy job
type DeployJobState string

const (
	DeployStateRunning DeployJobState = "running"
	DeployStateSuccess DeployJobState = "success"
	DeployStateFailed  DeployJobState = "failed"
	DeployStateUnknown DeployJobState = "unknown"
)

// Normalize maps anything the client doesn't recognize to unknown
func (s DeployJobState) Normalize() DeployJobState {
	switch DeployJobState(strings.ToLower(strings.TrimSpace(string(s)))) {
	case DeployStateRunning:
		return DeployStateRunning
	case DeployStateSuccess:
		return DeployStateSuccess
	case DeployStateFailed:
		return DeployStateFailed
	default:
		return DeployStateUnknown
	}
}

// IsTerminal reports whether the job has finished
func (s DeployJobState) IsTerminal() bool {
	return s == DeployStateSuccess || s == DeployStateFailed
}

// DeployStatus is the data payload of GET /admin/deploy/status
type DeployStatus struct {
	State     DeployJobState `json:"state"`
	Method    string         `json:"method,omitempty"`
	Unit      string         `json:"unit,omitempty"`
	PID       *int           `json:"pid,omitempty"`
	ExitCode  *int           `json:"exitCode,omitempty"`
	Message   string         `json:"message,omitempty"`
	StartedAt string         `json:"startedAt,omitempty"`
	UpdatedAt string         `json:"updatedAt,omitempty"`
}

// DeployLogResponse is the tail window of the deploy log. The window is
// bounded server-side and slides as the job writes.
type DeployLogResponse struct {
	Lines []string `json:"lines"`
}

// PushMode selects what POST /admin/push sends to the remote
type PushMode string

const (
	PushDataOnly PushMode = "data-only"
	PushAll      PushMode = "all"
)

// OpsResult is the outcome of an admin git sync script
type OpsResult struct {
	Output string `json:"output"`
}

// envelope is the {success, data} wrapper used by most endpoints
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// ErrorResponse is the body of a non-2xx response
type ErrorResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Message  string `json:"message"`
	Output   string `json:"output"`
	ExitCode *int   `json:"exitCode"`
}
