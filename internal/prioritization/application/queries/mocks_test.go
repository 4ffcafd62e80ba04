package queries

import (
	"context"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/analysis"
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
