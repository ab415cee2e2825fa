package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tallyfy/migrator/pkg/model"
)

// MockSource is a mock implementation of the source.Source interface.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Name() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockSource) Readiness(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockSource) Discover(ctx context.Context) (*model.Discovery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.Discovery), args.Error(1)
}

func (m *MockSource) Members(ctx context.Context) ([]model.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]model.Member), args.Error(1)
}

func (m *MockSource) Templates(ctx context.Context) ([]model.Template, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]model.Template), args.Error(1)
}

// MockFullSource extends MockSource with the optional group and instance
// listing capabilities.
type MockFullSource struct {
	MockSource
}

func (m *MockFullSource) Groups(ctx context.Context) ([]model.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockFullSource) Instances(ctx context.Context) ([]model.Instance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]model.Instance), args.Error(1)
}
