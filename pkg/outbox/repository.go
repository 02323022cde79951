package outbox

import (
	"context"
	"time"
)

// Repository defines outbox event persistence
type Repository interface {
	// SaveAll stores events, typically inside the same transaction as the
	// aggregate write
	SaveAll(ctx context.Context, events []*OutboxEvent) error

	// FindUnpublished retrieves unpublished events up to the limit
	FindUnpublished(ctx context.Context, limit int) ([]*OutboxEvent, error)

	// MarkPublished marks an event as delivered
	MarkPublished(ctx context.Context, eventID string) error

	// IncrementRetry bumps the retry count and records the last error
	IncrementRetry(ctx context.Context, eventID string, errorMsg string) error

	// DeletePublished removes delivered events older than the cutoff
	DeletePublished(ctx context.Context, olderThan time.Duration) error
}
