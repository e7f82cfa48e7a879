// Package events publishes analysis lifecycle events to a Redis Stream so
// downstream consumers (dashboards, notifications) can react without
// polling the database.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hypnolab/sleep-analysis/internal/domain"
	"go.uber.org/zap"
)

// AnalysisCompleted is the payload published after an analysis is stored.
type AnalysisCompleted struct {
	EventType  string    `json:"event_type"`
	AnalysisID uuid.UUID `json:"analysis_id"`
	UserID     uuid.UUID `json:"user_id"`
	EpochCount int       `json:"epoch_count"`
	HasSlept   bool      `json:"has_slept"`
	Timestamp  int64     `json:"timestamp"`
}

// Publisher emits analysis lifecycle events. Publishing is best-effort:
// callers log failures but do not fail the request.
type Publisher interface {
	PublishAnalysisCompleted(ctx context.Context, analysis *domain.Analysis, hasSlept bool) error
}

type streamPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewStreamPublisher creates a publisher writing to the given Redis
// Stream via XADD.
func NewStreamPublisher(client *redis.Client, stream string, logger *zap.Logger) Publisher {
	return &streamPublisher{client: client, stream: stream, logger: logger}
}

func (p *streamPublisher) PublishAnalysisCompleted(ctx context.Context, analysis *domain.Analysis, hasSlept bool) error {
	event := AnalysisCompleted{
		EventType:  "analysis.completed",
		AnalysisID: analysis.ID,
		UserID:     analysis.UserID,
		EpochCount: len(analysis.Stages),
		HasSlept:   hasSlept,
		Timestamp:  time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": event.Timestamp,
		},
	}).Result()
	if err != nil {
		return err
	}

	p.logger.Debug("published analysis.completed",
		zap.String("stream", p.stream),
		zap.String("message_id", id),
		zap.String("analysis_id", analysis.ID.String()),
	)
	return nil
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops events. Used when Redis
// is not configured.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishAnalysisCompleted(ctx context.Context, analysis *domain.Analysis, hasSlept bool) error {
	return nil
}
