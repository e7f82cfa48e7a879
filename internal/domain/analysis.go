package domain

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is one scored recording: the classifier's stage sequence, the
// bedtime reference, and the metric report derived from them. Reports are
// computed once at creation and never recomputed; the row is an immutable
// snapshot.
type Analysis struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID     `gorm:"type:uuid;not null;index:idx_analyses_user_created" json:"user_id"`
	Stages          StageSequence `gorm:"type:jsonb;not null" json:"stages"`
	Bedtime         int64         `gorm:"not null" json:"bedtime"`
	EpochDuration   int64         `gorm:"not null" json:"epoch_duration"`
	Report          MetricsReport `gorm:"type:jsonb;not null" json:"report"`
	ClientRequestID *string       `gorm:"type:varchar(255);uniqueIndex:idx_analyses_client_request,where:client_request_id IS NOT NULL" json:"client_request_id,omitempty"`
	CreatedAt       time.Time     `gorm:"autoCreateTime;index:idx_analyses_user_created,sort:desc" json:"created_at"`

	// Associations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// CreateAnalysisRequest is the request body for submitting a staged recording.
// @Description Classified stage sequence plus bedtime reference for one night.
type CreateAnalysisRequest struct {
	// Ordered stage labels, one per scored epoch (W, N1, N2, N3, REM)
	Stages []StageLabel `json:"stages" validate:"required,min=1,dive,stage" example:"W,W,N2,N2,REM,N2,W"`
	// Bedtime reference as unix seconds; onset/offset outputs are bedtime + elapsed
	Bedtime int64 `json:"bedtime" validate:"gte=0" example:"1602898320"`
	// Optional client-generated ID for idempotent requests (max 255 chars)
	ClientRequestID *string `json:"client_request_id,omitempty" validate:"omitempty,max=255" example:"client-uuid-12345"`
}

// AnalysisResponse is the response body for analysis endpoints.
// @Description Stored analysis with its derived metric report.
type AnalysisResponse struct {
	// Unique analysis identifier
	ID uuid.UUID `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Owner user ID
	UserID uuid.UUID `json:"user_id" example:"660e8400-e29b-41d4-a716-446655440001"`
	// Submitted stage sequence
	Stages StageSequence `json:"stages"`
	// Bedtime reference (unix seconds)
	Bedtime int64 `json:"bedtime" example:"1602898320"`
	// Epoch duration in seconds used for this analysis
	EpochDuration int64 `json:"epoch_duration" example:"30"`
	// Derived metric report (null-valued metrics mean the subject never slept)
	Report MetricsReport `json:"report"`
	// Client-provided request ID (if any)
	ClientRequestID *string `json:"client_request_id,omitempty" example:"client-uuid-12345"`
	// Record creation timestamp
	CreatedAt time.Time `json:"created_at" example:"2024-01-16T07:05:00Z"`
}

func (a *Analysis) ToResponse() AnalysisResponse {
	return AnalysisResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		Stages:          a.Stages,
		Bedtime:         a.Bedtime,
		EpochDuration:   a.EpochDuration,
		Report:          a.Report,
		ClientRequestID: a.ClientRequestID,
		CreatedAt:       a.CreatedAt,
	}
}

// AnalysisListResponse is the response body for listing analyses.
// @Description Paginated list of analyses.
type AnalysisListResponse struct {
	// Array of analysis records
	Data []AnalysisResponse `json:"data"`
	// Pagination metadata
	Pagination PaginationResponse `json:"pagination"`
}

// PaginationResponse contains pagination metadata.
// @Description Cursor-based pagination info.
type PaginationResponse struct {
	// Cursor for fetching the next page (empty if no more pages)
	NextCursor string `json:"next_cursor,omitempty"`
	// True if more results are available
	HasMore bool `json:"has_more" example:"true"`
}

// AnalysisFilter contains filter parameters for listing analyses
type AnalysisFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Cursor string
}
