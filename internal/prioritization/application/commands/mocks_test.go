package commands

import (
	"context"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/analysis"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockRunRepo struct {
	mock.Mock
}

func (m *mockRunRepo) Save(ctx context.Context, run *analysis.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockRunRepo) FindByID(ctx context.Context, id uuid.UUID) (*analysis.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.Run), args.Error(1)
}

func (m *mockRunRepo) ListRecent(ctx context.Context, limit int) ([]*analysis.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*analysis.Run), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]priority.ScoredTask, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]priority.ScoredTask), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, tasks []priority.ScoredTask) error {
	args := m.Called(ctx, key, tasks)
	return args.Error(0)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, events ...domain.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
