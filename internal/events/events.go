// Package events defines the fire-and-forget event sink for application
// lifecycle notifications.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types emitted by the tracking service.
const (
	TypeApplicationCreated   = "application.created"
	TypeApplicationUpdated   = "application.updated"
	TypeApplicationRejected  = "application.rejected"
	TypeApplicationWithdrawn = "application.withdrawn"
	TypeInterviewScheduled   = "application.interview_scheduled"
)

// Event is a lifecycle notification. Delivery is best-effort: a failing sink
// must never fail the operation that produced the event.
type Event struct {
	Type          string            `json:"type"`
	ApplicationID uuid.UUID         `json:"application_id"`
	JobID         uuid.UUID         `json:"job_id"`
	ActorID       uuid.UUID         `json:"actor_id,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Sink receives lifecycle events.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// LogSink writes events to the structured log. It is the default sink when no
// downstream notification system is wired in.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

// Publish logs the event.
func (s *LogSink) Publish(_ context.Context, event Event) error {
	s.log.Info("application event",
		zap.String("type", event.Type),
		zap.String("application_id", event.ApplicationID.String()),
		zap.String("job_id", event.JobID.String()),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
