package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hypnolab/sleep-analysis/internal/domain"
	"github.com/hypnolab/sleep-analysis/internal/langfuse"
	"github.com/hypnolab/sleep-analysis/internal/llm"
	"github.com/hypnolab/sleep-analysis/internal/service"
	"github.com/hypnolab/sleep-analysis/pkg/problem"
	"go.opentelemetry.io/otel/trace"
)

// InsightHandler handles per-analysis insight endpoints.
type InsightHandler struct {
	insightService service.InsightService
	langfuseClient langfuse.Client
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightService service.InsightService, langfuseClient langfuse.Client) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
		langfuseClient: langfuseClient,
	}
}

// GetInsight handles GET /v1/users/{userId}/analyses/{analysisId}/insight
// @Summary Get LLM-powered insight for an analysis
// @Description Generate a narrative interpretation of one analysis' metric report. Responses are cached per analysis.
// @Tags insights
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Param analysisId path string true "Analysis UUID" format(uuid)
// @Success 200 {object} domain.InsightResponse "Insight narrative with the underlying report"
// @Failure 400 {object} problem.Problem "Invalid path parameters"
// @Failure 404 {object} problem.Problem "User or analysis not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Failure 502 {object} problem.Problem "LLM request failed"
// @Failure 503 {object} problem.Problem "LLM service unavailable"
// @Router /users/{userId}/analyses/{analysisId}/insight [get]
func (h *InsightHandler) GetInsight(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	analysisID, err := uuid.Parse(chi.URLParam(r, "analysisId"))
	if err != nil {
		problem.BadRequest("Invalid analysis ID format").Write(w)
		return
	}

	result, err := h.insightService.Generate(r.Context(), userID, analysisID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("Analysis not found").Write(w)
			return
		}
		if errors.Is(err, llm.ErrOpenAIUnavailable) {
			problem.ServiceUnavailable("OpenAI service is not configured").Write(w)
			return
		}
		if errors.Is(err, llm.ErrOpenAIRequest) || errors.Is(err, llm.ErrOpenAIResponse) {
			problem.New(http.StatusBadGateway, "llm-error", "LLM Error", "Failed to generate insight from LLM").Write(w)
			return
		}
		problem.InternalError("Failed to generate insight").Write(w)
		return
	}

	// Fall back to the OTEL trace ID for feedback linking when the
	// service did not record a Langfuse trace (e.g. cache hits)
	span := trace.SpanFromContext(r.Context())
	if result.TraceID == "" && span.SpanContext().IsValid() {
		result.TraceID = span.SpanContext().TraceID().String()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// FeedbackRequest is the request body for insight feedback.
// @Description Request body for submitting feedback on an insight.
type FeedbackRequest struct {
	// Trace ID from the insight response
	TraceID string `json:"trace_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Rating score (1-5)
	Score int `json:"score" example:"4" minimum:"1" maximum:"5"`
	// Optional comment
	Comment string `json:"comment,omitempty" example:"The summary matched how the night felt."`
}

// PostFeedback handles POST /v1/users/{userId}/analyses/{analysisId}/insight/feedback
// @Summary Submit feedback on an insight
// @Description Submit a user rating and optional comment for a previous insight response.
// @Tags insights
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Param analysisId path string true "Analysis UUID" format(uuid)
// @Param body body FeedbackRequest true "Feedback request"
// @Success 204 "Feedback submitted"
// @Failure 400 {object} problem.Problem "Invalid request"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/analyses/{analysisId}/insight/feedback [post]
func (h *InsightHandler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	if _, err := uuid.Parse(chi.URLParam(r, "userId")); err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}
	if _, err := uuid.Parse(chi.URLParam(r, "analysisId")); err != nil {
		problem.BadRequest("Invalid analysis ID format").Write(w)
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid request body").Write(w)
		return
	}

	if req.TraceID == "" {
		problem.BadRequest("trace_id is required").Write(w)
		return
	}
	if req.Score < 1 || req.Score > 5 {
		problem.BadRequest("score must be between 1 and 5").Write(w)
		return
	}

	// Score submission is fire-and-forget; the feedback is accepted
	// even when Langfuse is not configured.
	_ = h.langfuseClient.CreateScore(r.Context(), langfuse.ScoreInput{
		TraceID: req.TraceID,
		Name:    "user_rating",
		Value:   float64(req.Score),
		Comment: req.Comment,
	})

	w.WriteHeader(http.StatusNoContent)
}
