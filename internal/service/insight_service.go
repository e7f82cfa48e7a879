package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hypnolab/sleep-analysis/internal/cache"
	"github.com/hypnolab/sleep-analysis/internal/domain"
	"github.com/hypnolab/sleep-analysis/internal/langfuse"
	"github.com/hypnolab/sleep-analysis/internal/llm"
	"github.com/hypnolab/sleep-analysis/internal/repository"
	"go.uber.org/zap"
)

// InsightService generates the LLM narrative for one stored analysis.
type InsightService interface {
	// Generate creates (or serves from cache) the insight for an analysis.
	Generate(ctx context.Context, userID, analysisID uuid.UUID) (*domain.InsightResponse, error)
}

type insightService struct {
	analysisRepo   repository.AnalysisRepository
	userRepo       repository.UserRepository
	llmClient      llm.InsightLLM
	insightCache   cache.InsightCache
	langfuseClient langfuse.Client
	logger         *zap.Logger
}

// NewInsightService creates a new InsightService.
func NewInsightService(
	analysisRepo repository.AnalysisRepository,
	userRepo repository.UserRepository,
	llmClient llm.InsightLLM,
	insightCache cache.InsightCache,
	langfuseClient langfuse.Client,
	logger *zap.Logger,
) InsightService {
	return &insightService{
		analysisRepo:   analysisRepo,
		userRepo:       userRepo,
		llmClient:      llmClient,
		insightCache:   insightCache,
		langfuseClient: langfuseClient,
		logger:         logger,
	}
}

func (s *insightService) Generate(ctx context.Context, userID, analysisID uuid.UUID) (*domain.InsightResponse, error) {
	// Validate user exists
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	analysis, err := s.analysisRepo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	// Verify ownership
	if analysis.UserID != userID {
		return nil, domain.ErrNotFound
	}

	// Generated narratives are stable for an immutable analysis, so a
	// cache hit skips the LLM entirely.
	if cached, err := s.insightCache.Get(ctx, analysisID); err == nil {
		return &domain.InsightResponse{
			AnalysisID: analysis.ID,
			Report:     analysis.Report,
			Insight:    *cached,
			Cached:     true,
		}, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("insight cache read failed",
			zap.String("analysis_id", analysisID.String()),
			zap.Error(err),
		)
	}

	insightCtx := &domain.InsightContext{
		Report:        analysis.Report,
		EpochDuration: analysis.EpochDuration,
		EpochCount:    len(analysis.Stages),
	}

	output, err := s.llmClient.GenerateInsight(ctx, insightCtx)
	if err != nil {
		return nil, err
	}

	// Cache write is best-effort.
	if err := s.insightCache.Set(ctx, analysisID, output); err != nil {
		s.logger.Warn("insight cache write failed",
			zap.String("analysis_id", analysisID.String()),
			zap.Error(err),
		)
	}

	response := &domain.InsightResponse{
		AnalysisID: analysis.ID,
		Report:     analysis.Report,
		Insight:    *output,
		Cached:     false,
	}

	// Record the generation as a Langfuse trace so feedback scores can
	// attach to it. A disabled client yields an empty trace ID.
	traceID, err := s.langfuseClient.CreateTrace(ctx, langfuse.TraceInput{
		UserID: userID.String(),
		Name:   "analysis-insight",
		Input:  insightCtx,
		Output: output,
		Tags:   []string{"insight"},
	})
	if err != nil {
		s.logger.Warn("langfuse trace create failed",
			zap.String("analysis_id", analysisID.String()),
			zap.Error(err),
		)
	} else {
		response.TraceID = traceID
	}

	return response, nil
}
