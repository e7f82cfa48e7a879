package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hypnolab/sleep-analysis/internal/domain"
	"github.com/hypnolab/sleep-analysis/internal/langfuse"
)

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	createFunc  func(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

func (m *MockUserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &domain.User{
		ID:        uuid.New(),
		Timezone:  req.Timezone,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &domain.User{
		ID:        id,
		Timezone:  "UTC",
		CreatedAt: time.Now(),
	}, nil
}

// MockAnalysisService is a mock implementation of AnalysisService
type MockAnalysisService struct {
	createFunc  func(ctx context.Context, userID uuid.UUID, req *domain.CreateAnalysisRequest) (*domain.Analysis, bool, error)
	getByIDFunc func(ctx context.Context, userID, analysisID uuid.UUID) (*domain.Analysis, error)
	listFunc    func(ctx context.Context, userID uuid.UUID, filter domain.AnalysisFilter) (*domain.AnalysisListResponse, error)
}

func (m *MockAnalysisService) Create(ctx context.Context, userID uuid.UUID, req *domain.CreateAnalysisRequest) (*domain.Analysis, bool, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, req)
	}
	return &domain.Analysis{
		ID:            uuid.New(),
		UserID:        userID,
		Stages:        req.Stages,
		Bedtime:       req.Bedtime,
		EpochDuration: 30,
		Report:        domain.MetricsReport{},
		CreatedAt:     time.Now(),
	}, false, nil
}

func (m *MockAnalysisService) GetByID(ctx context.Context, userID, analysisID uuid.UUID) (*domain.Analysis, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, userID, analysisID)
	}
	return &domain.Analysis{
		ID:            analysisID,
		UserID:        userID,
		Stages:        domain.StageSequence{domain.StageWake, domain.StageN2},
		Bedtime:       0,
		EpochDuration: 30,
		Report:        domain.MetricsReport{},
		CreatedAt:     time.Now(),
	}, nil
}

func (m *MockAnalysisService) List(ctx context.Context, userID uuid.UUID, filter domain.AnalysisFilter) (*domain.AnalysisListResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, filter)
	}
	return &domain.AnalysisListResponse{
		Data:       []domain.AnalysisResponse{},
		Pagination: domain.PaginationResponse{HasMore: false},
	}, nil
}

// MockInsightService is a mock implementation of InsightService
type MockInsightService struct {
	generateFunc func(ctx context.Context, userID, analysisID uuid.UUID) (*domain.InsightResponse, error)
}

func (m *MockInsightService) Generate(ctx context.Context, userID, analysisID uuid.UUID) (*domain.InsightResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, userID, analysisID)
	}
	return &domain.InsightResponse{
		AnalysisID: analysisID,
		Report:     domain.MetricsReport{},
		Insight: domain.LLMInsightOutput{
			Summary: "A solid night of sleep.",
		},
	}, nil
}

// MockLangfuseClient is a mock implementation of langfuse.Client
type MockLangfuseClient struct {
	createScoreFunc func(ctx context.Context, in langfuse.ScoreInput) error
	scores          []langfuse.ScoreInput
}

func (m *MockLangfuseClient) IsEnabled() bool {
	return true
}

func (m *MockLangfuseClient) CreateTrace(ctx context.Context, in langfuse.TraceInput) (string, error) {
	return uuid.NewString(), nil
}

func (m *MockLangfuseClient) CreateScore(ctx context.Context, in langfuse.ScoreInput) error {
	m.scores = append(m.scores, in)
	if m.createScoreFunc != nil {
		return m.createScoreFunc(ctx, in)
	}
	return nil
}
