package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hypnolab/sleep-analysis/internal/domain"
	"github.com/hypnolab/sleep-analysis/internal/events"
	"github.com/hypnolab/sleep-analysis/internal/hypnogram"
	"github.com/hypnolab/sleep-analysis/internal/repository"
	"github.com/hypnolab/sleep-analysis/pkg/pagination"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AnalysisService runs the hypnogram engine over submitted stage
// sequences and manages the stored analyses.
type AnalysisService interface {
	// Create derives and stores the metric report for a staged recording.
	// Returns (analysis, isExisting, error) - isExisting is true if
	// returning an existing analysis due to idempotency.
	Create(ctx context.Context, userID uuid.UUID, req *domain.CreateAnalysisRequest) (*domain.Analysis, bool, error)
	// GetByID returns one analysis owned by the user.
	GetByID(ctx context.Context, userID, analysisID uuid.UUID) (*domain.Analysis, error)
	// List returns the user's analyses, newest first, with cursor pagination.
	List(ctx context.Context, userID uuid.UUID, filter domain.AnalysisFilter) (*domain.AnalysisListResponse, error)
}

type analysisService struct {
	repo      repository.AnalysisRepository
	userRepo  repository.UserRepository
	engineCfg hypnogram.Config
	publisher events.Publisher
	logger    *zap.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(
	repo repository.AnalysisRepository,
	userRepo repository.UserRepository,
	engineCfg hypnogram.Config,
	publisher events.Publisher,
	logger *zap.Logger,
) AnalysisService {
	return &analysisService{
		repo:      repo,
		userRepo:  userRepo,
		engineCfg: engineCfg,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *analysisService) Create(ctx context.Context, userID uuid.UUID, req *domain.CreateAnalysisRequest) (*domain.Analysis, bool, error) {
	// Validate user exists
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, domain.ErrNotFound
	}

	// Check for idempotency (duplicate client_request_id)
	if req.ClientRequestID != nil && *req.ClientRequestID != "" {
		existing, err := s.repo.GetByClientRequestID(ctx, userID, *req.ClientRequestID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, true, nil // Return existing analysis
		}
	}

	tracer := otel.Tracer("sleep-analysis-api/analysis")
	ctx, span := tracer.Start(ctx, "AnalysisService.Create",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.Int("analysis.epoch_count", len(req.Stages)),
		),
	)
	defer span.End()

	// Attach input payload for Langfuse
	inputPayload := map[string]any{
		"user_id":     userID.String(),
		"epoch_count": len(req.Stages),
		"bedtime":     req.Bedtime,
	}
	if inputJSON, err := json.Marshal(inputPayload); err == nil {
		span.SetAttributes(attribute.String("langfuse.observation.input", string(inputJSON)))
	}

	// Run the derivation engine. The report is computed once here; the
	// stored row is an immutable snapshot of sequence + report.
	engine, err := hypnogram.New(req.Stages, req.Bedtime, s.engineCfg)
	if err != nil {
		return nil, false, err
	}
	report := engine.Report()

	analysis := &domain.Analysis{
		UserID:          userID,
		Stages:          req.Stages,
		Bedtime:         req.Bedtime,
		EpochDuration:   s.engineCfg.EpochDuration,
		Report:          report,
		ClientRequestID: req.ClientRequestID,
	}

	if err := s.repo.Create(ctx, analysis); err != nil {
		return nil, false, err
	}

	// Attach output payload for Langfuse
	if outputJSON, err := json.Marshal(report); err == nil {
		span.SetAttributes(attribute.String("langfuse.observation.output", string(outputJSON)))
	}

	// Event publishing is best-effort; the analysis is already stored.
	if err := s.publisher.PublishAnalysisCompleted(ctx, analysis, engine.HasSlept()); err != nil {
		s.logger.Warn("failed to publish analysis.completed",
			zap.String("analysis_id", analysis.ID.String()),
			zap.Error(err),
		)
	}

	return analysis, false, nil
}

func (s *analysisService) GetByID(ctx context.Context, userID, analysisID uuid.UUID) (*domain.Analysis, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	analysis, err := s.repo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	// Verify ownership
	if analysis.UserID != userID {
		return nil, domain.ErrNotFound
	}

	return analysis, nil
}

func (s *analysisService) List(ctx context.Context, userID uuid.UUID, filter domain.AnalysisFilter) (*domain.AnalysisListResponse, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	analyses, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(filter.Limit)

	response := &domain.AnalysisListResponse{
		Data: make([]domain.AnalysisResponse, 0, len(analyses)),
	}

	// The repository fetches limit+1 rows to detect a next page.
	hasMore := len(analyses) > limit
	if hasMore {
		analyses = analyses[:limit]
	}

	for i := range analyses {
		response.Data = append(response.Data, analyses[i].ToResponse())
	}

	response.Pagination.HasMore = hasMore
	if hasMore && len(analyses) > 0 {
		last := analyses[len(analyses)-1]
		cursor := pagination.Cursor{ID: last.ID, CreatedAt: last.CreatedAt}
		response.Pagination.NextCursor = cursor.Encode()
	}

	return response, nil
}
