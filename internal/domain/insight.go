package domain

import "github.com/google/uuid"

// InsightContext is the data handed to the LLM for a single analysis.
type InsightContext struct {
	Report        MetricsReport `json:"report"`
	EpochDuration int64         `json:"epoch_duration"`
	EpochCount    int           `json:"epoch_count"`
}

// LLMInsightOutput is the structured response expected from the LLM.
// @Description LLM-generated narrative for one night's metric report.
type LLMInsightOutput struct {
	// Short summary of the night
	Summary string `json:"summary"`
	// Observed patterns in the metrics
	Observations []string `json:"observations"`
	// Non-medical behavioral suggestions
	Guidance []string `json:"guidance"`
}

// InsightResponse is the response body for the analysis insight endpoint.
// @Description Insight narrative plus the report it was generated from.
type InsightResponse struct {
	// Analysis the insight belongs to
	AnalysisID uuid.UUID `json:"analysis_id"`
	// Metric report the narrative is based on
	Report MetricsReport `json:"report"`
	// LLM-generated narrative
	Insight LLMInsightOutput `json:"insight"`
	// True if served from cache rather than freshly generated
	Cached bool `json:"cached"`
	// OTEL trace ID for feedback linking (when tracing is enabled)
	TraceID string `json:"trace_id,omitempty"`
}
