package api

import "context"

type Client interface {
	// Project methods
	GetProjects(ctx context.Context, filters ProjectFilters) ([]Project, error)
	GetProject(ctx context.Context, projectID string) (*Project, error)
	GetStats(ctx context.Context) (*Stats, error)
	GetMeta(ctx context.Context) (*Meta, error)
	GetHealth(ctx context.Context) (*Health, error)

	// Agent methods
	GetAgentRuns(ctx context.Context, filters AgentRunFilters) (*AgentRunList, error)
	GetAgentEvents(ctx context.Context, filters AgentEventFilters) ([]AgentEvent, error)

	// Admin methods, sent with the admin token
	StartDeploy(ctx context.Context) (*DeployStartResponse, error)
	GetDeployStatus(ctx context.Context) (*DeployStatus, error)
	GetDeployLog(ctx context.Context) (*DeployLogResponse, error)
	PushData(ctx context.Context, mode PushMode) (*OpsResult, error)
	PullDataRepo(ctx context.Context) (*OpsResult, error)
}
