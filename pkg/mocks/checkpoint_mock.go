package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tallyfy/migrator/pkg/checkpoint"
)

// MockStore is a mock implementation of the checkpoint.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveRun(ctx context.Context, run *checkpoint.Run) error {
	args := m.Called(ctx, run)

	return args.Error(0)
}

func (m *MockStore) RunByID(ctx context.Context, id string) (*checkpoint.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*checkpoint.Run), args.Error(1)
}

func (m *MockStore) Runs(ctx context.Context) ([]*checkpoint.Run, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*checkpoint.Run), args.Error(1)
}

func (m *MockStore) LatestRun(ctx context.Context, source string) (*checkpoint.Run, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*checkpoint.Run), args.Error(1)
}

func (m *MockStore) SaveMapping(ctx context.Context, mapping *checkpoint.Mapping) error {
	args := m.Called(ctx, mapping)

	return args.Error(0)
}

func (m *MockStore) MappingFor(ctx context.Context, runID, kind, sourceID string) (*checkpoint.Mapping, error) {
	args := m.Called(ctx, runID, kind, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*checkpoint.Mapping), args.Error(1)
}

func (m *MockStore) MappingsByRun(ctx context.Context, runID string) ([]*checkpoint.Mapping, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*checkpoint.Mapping), args.Error(1)
}

func (m *MockStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockStore) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
