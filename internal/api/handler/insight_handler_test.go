package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hypnolab/sleep-analysis/internal/domain"
	"github.com/hypnolab/sleep-analysis/internal/llm"
)

func TestInsightHandler_GetInsight(t *testing.T) {
	userID := uuid.New()
	analysisID := uuid.New()

	tests := []struct {
		name           string
		userID         string
		analysisID     string
		mockService    *MockInsightService
		wantStatusCode int
	}{
		{
			name:       "successful insight",
			userID:     userID.String(),
			analysisID: analysisID.String(),
			mockService: &MockInsightService{
				generateFunc: func(ctx context.Context, uid, aid uuid.UUID) (*domain.InsightResponse, error) {
					return &domain.InsightResponse{
						AnalysisID: aid,
						Report:     domain.MetricsReport{domain.MetricSleepEfficiency: 0.85},
						Insight: domain.LLMInsightOutput{
							Summary:      "An efficient night.",
							Observations: []string{"High sleep efficiency"},
							Guidance:     []string{"Keep the same bedtime"},
						},
					}, nil
				},
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid user ID",
			userID:         "not-a-uuid",
			analysisID:     analysisID.String(),
			mockService:    &MockInsightService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid analysis ID",
			userID:         userID.String(),
			analysisID:     "not-a-uuid",
			mockService:    &MockInsightService{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:       "analysis not found",
			userID:     userID.String(),
			analysisID: uuid.New().String(),
			mockService: &MockInsightService{
				generateFunc: func(ctx context.Context, uid, aid uuid.UUID) (*domain.InsightResponse, error) {
					return nil, domain.ErrNotFound
				},
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:       "LLM not configured",
			userID:     userID.String(),
			analysisID: analysisID.String(),
			mockService: &MockInsightService{
				generateFunc: func(ctx context.Context, uid, aid uuid.UUID) (*domain.InsightResponse, error) {
					return nil, llm.ErrOpenAIUnavailable
				},
			},
			wantStatusCode: http.StatusServiceUnavailable,
		},
		{
			name:       "LLM request failed",
			userID:     userID.String(),
			analysisID: analysisID.String(),
			mockService: &MockInsightService{
				generateFunc: func(ctx context.Context, uid, aid uuid.UUID) (*domain.InsightResponse, error) {
					return nil, llm.ErrOpenAIRequest
				},
			},
			wantStatusCode: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInsightHandler(tt.mockService, &MockLangfuseClient{})

			req := httptest.NewRequest(http.MethodGet, "/v1/users/"+tt.userID+"/analyses/"+tt.analysisID+"/insight", nil)
			rec := httptest.NewRecorder()

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("userId", tt.userID)
			rctx.URLParams.Add("analysisId", tt.analysisID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			handler.GetInsight(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("GetInsight() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var response domain.InsightResponse
				if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
					t.Errorf("Failed to decode response: %v", err)
				}
				if response.Insight.Summary == "" {
					t.Error("Expected non-empty insight summary")
				}
			}
		})
	}
}

func TestInsightHandler_PostFeedback(t *testing.T) {
	userID := uuid.New()
	analysisID := uuid.New()

	tests := []struct {
		name           string
		userID         string
		analysisID     string
		body           string
		wantStatusCode int
		wantScores     int
	}{
		{
			name:           "valid feedback",
			userID:         userID.String(),
			analysisID:     analysisID.String(),
			body:           `{"trace_id": "abc123", "score": 4, "comment": "helpful"}`,
			wantStatusCode: http.StatusNoContent,
			wantScores:     1,
		},
		{
			name:           "missing trace_id",
			userID:         userID.String(),
			analysisID:     analysisID.String(),
			body:           `{"score": 4}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "score too low",
			userID:         userID.String(),
			analysisID:     analysisID.String(),
			body:           `{"trace_id": "abc123", "score": 0}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "score too high",
			userID:         userID.String(),
			analysisID:     analysisID.String(),
			body:           `{"trace_id": "abc123", "score": 6}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid user ID",
			userID:         "not-a-uuid",
			analysisID:     analysisID.String(),
			body:           `{"trace_id": "abc123", "score": 4}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			userID:         userID.String(),
			analysisID:     analysisID.String(),
			body:           `{invalid}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			langfuseClient := &MockLangfuseClient{}
			handler := NewInsightHandler(&MockInsightService{}, langfuseClient)

			req := httptest.NewRequest(http.MethodPost, "/v1/users/"+tt.userID+"/analyses/"+tt.analysisID+"/insight/feedback", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("userId", tt.userID)
			rctx.URLParams.Add("analysisId", tt.analysisID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			handler.PostFeedback(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("PostFeedback() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}

			if len(langfuseClient.scores) != tt.wantScores {
				t.Errorf("Expected %d scores sent, got %d", tt.wantScores, len(langfuseClient.scores))
			}

			if tt.wantScores == 1 {
				score := langfuseClient.scores[0]
				if score.Name != "user_rating" {
					t.Errorf("Expected score name user_rating, got %s", score.Name)
				}
				if score.Value != 4 {
					t.Errorf("Expected score value 4, got %v", score.Value)
				}
			}
		})
	}
}
