package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tallyfy/migrator/pkg/tallyfy"
)

// MockTarget is a mock implementation of the migration.Target interface.
type MockTarget struct {
	mock.Mock
}

func (m *MockTarget) Me(ctx context.Context) (*tallyfy.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*tallyfy.Account), args.Error(1)
}

func (m *MockTarget) Members(ctx context.Context) ([]tallyfy.MemberRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]tallyfy.MemberRecord), args.Error(1)
}

func (m *MockTarget) InviteMember(ctx context.Context, opts tallyfy.InviteMemberOptions) (*tallyfy.MemberRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*tallyfy.MemberRecord), args.Error(1)
}

func (m *MockTarget) Groups(ctx context.Context) ([]tallyfy.GroupRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]tallyfy.GroupRecord), args.Error(1)
}

func (m *MockTarget) CreateGroup(ctx context.Context, opts tallyfy.CreateGroupOptions) (*tallyfy.GroupRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*tallyfy.GroupRecord), args.Error(1)
}

func (m *MockTarget) FindChecklistByTitle(ctx context.Context, title string) (*tallyfy.ChecklistRecord, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*tallyfy.ChecklistRecord), args.Error(1)
}

func (m *MockTarget) CreateChecklist(ctx context.Context, opts tallyfy.CreateChecklistOptions) (*tallyfy.ChecklistRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*tallyfy.ChecklistRecord), args.Error(1)
}

func (m *MockTarget) AddStep(ctx context.Context, opts tallyfy.AddStepOptions) (*tallyfy.StepRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*tallyfy.StepRecord), args.Error(1)
}

func (m *MockTarget) AddCapture(ctx context.Context, opts tallyfy.AddCaptureOptions) (*tallyfy.CaptureRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*tallyfy.CaptureRecord), args.Error(1)
}

func (m *MockTarget) CreateRule(ctx context.Context, opts tallyfy.CreateRuleOptions) (*tallyfy.RuleRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*tallyfy.RuleRecord), args.Error(1)
}

func (m *MockTarget) LaunchProcess(ctx context.Context, opts tallyfy.LaunchProcessOptions) (*tallyfy.RunRecord, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*tallyfy.RunRecord), args.Error(1)
}

func (m *MockTarget) RunTasks(ctx context.Context, runID string) ([]tallyfy.TaskRecord, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]tallyfy.TaskRecord), args.Error(1)
}

func (m *MockTarget) CompleteTask(ctx context.Context, opts tallyfy.CompleteTaskOptions) error {
	args := m.Called(ctx, opts)

	return args.Error(0)
}

func (m *MockTarget) ArchiveRun(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)

	return args.Error(0)
}
