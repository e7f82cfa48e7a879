package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hypnolab/sleep-analysis/internal/domain"
	"github.com/hypnolab/sleep-analysis/internal/hypnogram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAnalysisService(repo *MockAnalysisRepository, userRepo *MockUserRepository, publisher *MockPublisher) AnalysisService {
	return NewAnalysisService(repo, userRepo, hypnogram.DefaultConfig(), publisher, zap.NewNop())
}

func TestAnalysisService_Create(t *testing.T) {
	userID := uuid.New()
	userRepo := NewMockUserRepository()
	userRepo.users[userID] = &domain.User{ID: userID, Timezone: "UTC"}

	t.Run("derives and stores report", func(t *testing.T) {
		repo := NewMockAnalysisRepository()
		publisher := &MockPublisher{}
		svc := newAnalysisService(repo, userRepo, publisher)

		req := &domain.CreateAnalysisRequest{
			Stages:  []domain.StageLabel{"W", "W", "N2", "N2", "REM", "N2", "W"},
			Bedtime: 0,
		}

		analysis, isExisting, err := svc.Create(context.Background(), userID, req)
		require.NoError(t, err)
		assert.False(t, isExisting)
		require.NotNil(t, analysis)

		assert.Equal(t, int64(60), analysis.Report[domain.MetricSleepLatency])
		assert.Equal(t, int64(180), analysis.Report[domain.MetricSleepOffset])
		assert.Equal(t, int64(30), analysis.EpochDuration)
		assert.Len(t, repo.analyses, 1)
		assert.Equal(t, []uuid.UUID{analysis.ID}, publisher.published)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := NewMockAnalysisRepository()
		svc := newAnalysisService(repo, userRepo, &MockPublisher{})

		_, _, err := svc.Create(context.Background(), uuid.New(), &domain.CreateAnalysisRequest{
			Stages: []domain.StageLabel{"N2"},
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid stage label", func(t *testing.T) {
		repo := NewMockAnalysisRepository()
		svc := newAnalysisService(repo, userRepo, &MockPublisher{})

		_, _, err := svc.Create(context.Background(), userID, &domain.CreateAnalysisRequest{
			Stages: []domain.StageLabel{"W", "XX"},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, repo.analyses, "invalid input must not persist anything")
	})

	t.Run("idempotent request returns existing", func(t *testing.T) {
		repo := NewMockAnalysisRepository()
		publisher := &MockPublisher{}
		svc := newAnalysisService(repo, userRepo, publisher)

		req := &domain.CreateAnalysisRequest{
			Stages:          []domain.StageLabel{"W", "N2", "W"},
			Bedtime:         100,
			ClientRequestID: strPtr("req-123"),
		}

		first, isExisting, err := svc.Create(context.Background(), userID, req)
		require.NoError(t, err)
		require.False(t, isExisting)

		second, isExisting, err := svc.Create(context.Background(), userID, req)
		require.NoError(t, err)
		assert.True(t, isExisting)
		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, repo.analyses, 1)
		assert.Len(t, publisher.published, 1, "duplicate must not republish")
	})

	t.Run("publish failure does not fail create", func(t *testing.T) {
		repo := NewMockAnalysisRepository()
		publisher := &MockPublisher{err: context.DeadlineExceeded}
		svc := newAnalysisService(repo, userRepo, publisher)

		_, _, err := svc.Create(context.Background(), userID, &domain.CreateAnalysisRequest{
			Stages: []domain.StageLabel{"N2", "W"},
		})
		assert.NoError(t, err)
		assert.Len(t, repo.analyses, 1)
	})
}

func TestAnalysisService_GetByID(t *testing.T) {
	userID := uuid.New()
	otherUserID := uuid.New()
	userRepo := NewMockUserRepository()
	userRepo.users[userID] = &domain.User{ID: userID, Timezone: "UTC"}
	userRepo.users[otherUserID] = &domain.User{ID: otherUserID, Timezone: "UTC"}

	repo := NewMockAnalysisRepository()
	analysis := &domain.Analysis{ID: uuid.New(), UserID: userID}
	repo.analyses[analysis.ID] = analysis

	svc := newAnalysisService(repo, userRepo, &MockPublisher{})

	got, err := svc.GetByID(context.Background(), userID, analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.ID, got.ID)

	// Ownership is enforced as not-found, never as a leak.
	_, err = svc.GetByID(context.Background(), otherUserID, analysis.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), userID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalysisService_List(t *testing.T) {
	userID := uuid.New()
	userRepo := NewMockUserRepository()
	userRepo.users[userID] = &domain.User{ID: userID, Timezone: "UTC"}

	now := time.Now().UTC()
	repo := NewMockAnalysisRepository()
	// Three results against limit 2: one extra row signals a next page.
	repo.listResult = []domain.Analysis{
		{ID: uuid.New(), UserID: userID, CreatedAt: now},
		{ID: uuid.New(), UserID: userID, CreatedAt: now.Add(-time.Hour)},
		{ID: uuid.New(), UserID: userID, CreatedAt: now.Add(-2 * time.Hour)},
	}

	svc := newAnalysisService(repo, userRepo, &MockPublisher{})

	resp, err := svc.List(context.Background(), userID, domain.AnalysisFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.True(t, resp.Pagination.HasMore)
	assert.NotEmpty(t, resp.Pagination.NextCursor)

	// Fewer rows than the limit: no next page.
	repo.listResult = repo.listResult[:1]
	resp, err = svc.List(context.Background(), userID, domain.AnalysisFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.False(t, resp.Pagination.HasMore)
	assert.Empty(t, resp.Pagination.NextCursor)
}
