package mock

// Mock for the Client interface, in mockery's testify style.
//
// Usage in tests:
//   mockClient := mock.NewMockClient(t)
//   mockClient.On("GetDeployLog", ctx).Return(&api.DeployLogResponse{...}, nil)
//
// Expectations are asserted automatically at test cleanup.

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

// MockClient is a testify mock of api.Client
type MockClient struct {
	mock.Mock
}

var _ api.Client = (*MockClient)(nil)

// NewMockClient creates a MockClient and registers AssertExpectations on cleanup
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// result resolves a Return value that may be a value or a function of the call arguments
func result[T any](ret mock.Arguments, i int, args ...any) T {
	var zero T
	v := ret.Get(i)
	switch fn := v.(type) {
	case nil:
		return zero
	case T:
		return fn
	case func() T:
		return fn()
	case func(context.Context) T:
		return fn(args[0].(context.Context))
	}
	return v.(T)
}

func errResult(ret mock.Arguments, i int, args ...any) error {
	switch fn := ret.Get(i).(type) {
	case func() error:
		return fn()
	case func(context.Context) error:
		return fn(args[0].(context.Context))
	}
	return ret.Error(i)
}

func (m *MockClient) GetProjects(ctx context.Context, filters api.ProjectFilters) ([]api.Project, error) {
	ret := m.Called(ctx, filters)
	return result[[]api.Project](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) GetProject(ctx context.Context, projectID string) (*api.Project, error) {
	ret := m.Called(ctx, projectID)
	return result[*api.Project](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) GetStats(ctx context.Context) (*api.Stats, error) {
	ret := m.Called(ctx)
	return result[*api.Stats](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) GetMeta(ctx context.Context) (*api.Meta, error) {
	ret := m.Called(ctx)
	return result[*api.Meta](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) GetHealth(ctx context.Context) (*api.Health, error) {
	ret := m.Called(ctx)
	return result[*api.Health](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) GetAgentRuns(ctx context.Context, filters api.AgentRunFilters) (*api.AgentRunList, error) {
	ret := m.Called(ctx, filters)
	return result[*api.AgentRunList](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) GetAgentEvents(ctx context.Context, filters api.AgentEventFilters) ([]api.AgentEvent, error) {
	ret := m.Called(ctx, filters)
	return result[[]api.AgentEvent](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) StartDeploy(ctx context.Context) (*api.DeployStartResponse, error) {
	ret := m.Called(ctx)
	return result[*api.DeployStartResponse](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) GetDeployStatus(ctx context.Context) (*api.DeployStatus, error) {
	ret := m.Called(ctx)
	return result[*api.DeployStatus](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) GetDeployLog(ctx context.Context) (*api.DeployLogResponse, error) {
	ret := m.Called(ctx)
	return result[*api.DeployLogResponse](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) PushData(ctx context.Context, mode api.PushMode) (*api.OpsResult, error) {
	ret := m.Called(ctx, mode)
	return result[*api.OpsResult](ret, 0, ctx), errResult(ret, 1, ctx)
}

func (m *MockClient) PullDataRepo(ctx context.Context) (*api.OpsResult, error) {
	ret := m.Called(ctx)
	return result[*api.OpsResult](ret, 0, ctx), errResult(ret, 1, ctx)
}
