package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hypnolab/sleep-analysis/internal/cache"
	"github.com/hypnolab/sleep-analysis/internal/domain"
	"github.com/hypnolab/sleep-analysis/internal/langfuse"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	users map[uuid.UUID]*domain.User
	err   error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.users[id]
	return ok, nil
}

// MockAnalysisRepository is a mock implementation of AnalysisRepository
type MockAnalysisRepository struct {
	analyses        map[uuid.UUID]*domain.Analysis
	clientRequestID map[string]*domain.Analysis
	listResult      []domain.Analysis
	err             error
}

func NewMockAnalysisRepository() *MockAnalysisRepository {
	return &MockAnalysisRepository{
		analyses:        make(map[uuid.UUID]*domain.Analysis),
		clientRequestID: make(map[string]*domain.Analysis),
	}
}

func (m *MockAnalysisRepository) Create(ctx context.Context, analysis *domain.Analysis) error {
	if m.err != nil {
		return m.err
	}
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	analysis.CreatedAt = time.Now()
	m.analyses[analysis.ID] = analysis
	if analysis.ClientRequestID != nil {
		key := analysis.UserID.String() + ":" + *analysis.ClientRequestID
		m.clientRequestID[key] = analysis
	}
	return nil
}

func (m *MockAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	analysis, ok := m.analyses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return analysis, nil
}

func (m *MockAnalysisRepository) List(ctx context.Context, userID uuid.UUID, filter domain.AnalysisFilter) ([]domain.Analysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.listResult, nil
}

func (m *MockAnalysisRepository) GetByClientRequestID(ctx context.Context, userID uuid.UUID, clientRequestID string) (*domain.Analysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	analysis, ok := m.clientRequestID[userID.String()+":"+clientRequestID]
	if !ok {
		return nil, nil
	}
	return analysis, nil
}

// MockPublisher records published events
type MockPublisher struct {
	published []uuid.UUID
	err       error
}

func (m *MockPublisher) PublishAnalysisCompleted(ctx context.Context, analysis *domain.Analysis, hasSlept bool) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, analysis.ID)
	return nil
}

// MockInsightCache is a map-backed insight cache
type MockInsightCache struct {
	entries map[uuid.UUID]*domain.LLMInsightOutput
	sets    int
}

func NewMockInsightCache() *MockInsightCache {
	return &MockInsightCache{entries: make(map[uuid.UUID]*domain.LLMInsightOutput)}
}

func (m *MockInsightCache) Get(ctx context.Context, analysisID uuid.UUID) (*domain.LLMInsightOutput, error) {
	insight, ok := m.entries[analysisID]
	if !ok {
		return nil, cache.ErrMiss
	}
	return insight, nil
}

func (m *MockInsightCache) Set(ctx context.Context, analysisID uuid.UUID, insight *domain.LLMInsightOutput) error {
	m.sets++
	m.entries[analysisID] = insight
	return nil
}

// MockInsightLLM is a mock implementation of llm.InsightLLM
type MockInsightLLM struct {
	output *domain.LLMInsightOutput
	err    error
	calls  int
}

func (m *MockInsightLLM) GenerateInsight(ctx context.Context, insightCtx *domain.InsightContext) (*domain.LLMInsightOutput, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.output, nil
}

// MockLangfuseClient is a mock implementation of langfuse.Client
type MockLangfuseClient struct {
	traces []langfuse.TraceInput
	err    error
}

func (m *MockLangfuseClient) IsEnabled() bool {
	return true
}

func (m *MockLangfuseClient) CreateTrace(ctx context.Context, in langfuse.TraceInput) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.traces = append(m.traces, in)
	return uuid.NewString(), nil
}

func (m *MockLangfuseClient) CreateScore(ctx context.Context, in langfuse.ScoreInput) error {
	return m.err
}

func strPtr(s string) *string {
	return &s
}
