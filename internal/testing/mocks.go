package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/ranchup/internal/platform/rancher"
	"github.com/imamik/ranchup/internal/upgrade"
)

// MockClusterClient is a testify mock of upgrade.ClusterClient.
type MockClusterClient struct {
	mock.Mock
}

var _ upgrade.ClusterClient = (*MockClusterClient)(nil)

// FindStack implements upgrade.ClusterClient.
func (m *MockClusterClient) FindStack(ctx context.Context, name string) (*rancher.Stack, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rancher.Stack), args.Error(1)
}

// FindService implements upgrade.ClusterClient.
func (m *MockClusterClient) FindService(ctx context.Context, name, stackID string) (*rancher.Service, error) {
	args := m.Called(ctx, name, stackID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rancher.Service), args.Error(1)
}

// GetService implements upgrade.ClusterClient.
func (m *MockClusterClient) GetService(ctx context.Context, selfURL string) (*rancher.Service, error) {
	args := m.Called(ctx, selfURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rancher.Service), args.Error(1)
}

// StartUpgrade implements upgrade.ClusterClient.
func (m *MockClusterClient) StartUpgrade(ctx context.Context, actionURL string, plan *rancher.ServiceUpgrade) (*rancher.ActionResult, error) {
	args := m.Called(ctx, actionURL, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rancher.ActionResult), args.Error(1)
}

// FinishUpgrade implements upgrade.ClusterClient.
func (m *MockClusterClient) FinishUpgrade(ctx context.Context, actionURL string) (*rancher.ActionResult, error) {
	args := m.Called(ctx, actionURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rancher.ActionResult), args.Error(1)
}

// Rollback implements upgrade.ClusterClient.
func (m *MockClusterClient) Rollback(ctx context.Context, actionURL string) (*rancher.ActionResult, error) {
	args := m.Called(ctx, actionURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rancher.ActionResult), args.Error(1)
}

// MockNotifier is a testify mock of upgrade.Notifier.
type MockNotifier struct {
	mock.Mock
}

var _ upgrade.Notifier = (*MockNotifier)(nil)

// Notify implements upgrade.Notifier.
func (m *MockNotifier) Notify(ctx context.Context, outcome upgrade.Outcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

// RecordingNotifier keeps every outcome it is given.
type RecordingNotifier struct {
	Outcomes []upgrade.Outcome
	Err      error
}

// Notify implements upgrade.Notifier.
func (n *RecordingNotifier) Notify(_ context.Context, outcome upgrade.Outcome) error {
	n.Outcomes = append(n.Outcomes, outcome)
	return n.Err
}
