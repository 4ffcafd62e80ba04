package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/analysis"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListStrategiesHandler_Handle(t *testing.T) {
	result := NewListStrategiesHandler().Handle(context.Background())

	require.Len(t, result, 4)
	assert.Equal(t, "default", result[0].Name)
	assert.True(t, result[0].Default)
	assert.Equal(t, "deadline", result[3].Name)
	assert.False(t, result[3].Default)
	assert.Equal(t, 0.5, result[3].Weights.Urgency)
}

func TestListRunsHandler_Handle(t *testing.T) {
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	runs := []*analysis.Run{
		analysis.RehydrateRun(uuid.New(), "default", 3, nil, []int{2, 1, 3}, created),
		analysis.RehydrateRun(uuid.New(), "deadline", 2, []int{1, 2, 1}, nil, created.Add(-time.Hour)),
	}

	t.Run("lists recent runs", func(t *testing.T) {
		repo := new(mockRunRepo)
		repo.On("ListRecent", mock.Anything, 5).Return(runs, nil)

		result, err := NewListRunsHandler(repo).Handle(context.Background(), ListRunsQuery{Limit: 5})

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, []int{2, 1, 3}, result[0].TopTaskIDs)
		assert.Equal(t, []int{}, result[0].CyclePath)
		assert.True(t, result[1].CycleDetected)
		assert.Equal(t, []int{}, result[1].TopTaskIDs)
		repo.AssertExpectations(t)
	})

	t.Run("applies default and max limit", func(t *testing.T) {
		repo := new(mockRunRepo)
		repo.On("ListRecent", mock.Anything, DefaultRunLimit).Return([]*analysis.Run{}, nil).Once()
		repo.On("ListRecent", mock.Anything, MaxRunLimit).Return([]*analysis.Run{}, nil).Once()
		handler := NewListRunsHandler(repo)

		_, err := handler.Handle(context.Background(), ListRunsQuery{})
		require.NoError(t, err)
		_, err = handler.Handle(context.Background(), ListRunsQuery{Limit: 10000})
		require.NoError(t, err)

		repo.AssertExpectations(t)
	})

	t.Run("propagates repository error", func(t *testing.T) {
		repo := new(mockRunRepo)
		repo.On("ListRecent", mock.Anything, DefaultRunLimit).Return(nil, errors.New("db down"))

		_, err := NewListRunsHandler(repo).Handle(context.Background(), ListRunsQuery{})

		assert.EqualError(t, err, "db down")
	})

	t.Run("history disabled", func(t *testing.T) {
		_, err := NewListRunsHandler(nil).Handle(context.Background(), ListRunsQuery{})
		assert.ErrorIs(t, err, ErrHistoryDisabled)
	})
}

func TestGetRunHandler_Handle(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		repo := new(mockRunRepo)
		repo.On("FindByID", mock.Anything, id).
			Return(analysis.RehydrateRun(id, "high_impact", 1, nil, []int{9}, time.Now()), nil)

		dto, err := NewGetRunHandler(repo).Handle(context.Background(), GetRunQuery{ID: id})

		require.NoError(t, err)
		assert.Equal(t, id, dto.ID)
		assert.Equal(t, "high_impact", dto.Strategy)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mockRunRepo)
		repo.On("FindByID", mock.Anything, id).Return(nil, analysis.ErrRunNotFound)

		_, err := NewGetRunHandler(repo).Handle(context.Background(), GetRunQuery{ID: id})

		assert.ErrorIs(t, err, analysis.ErrRunNotFound)
	})
}
