package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ims-platform/backoffice-service/pkg/logging"
)

// EventFactory creates CloudEvents with a fixed source
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent wraps a payload in a CloudEvents v1.0 envelope. The
// correlation ID is taken from the context when present.
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *CloudEvent {
	event := &CloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}

	if v := ctx.Value(logging.CorrelationIDKey); v != nil {
		if id, ok := v.(string); ok {
			event.CorrelationID = id
		}
	}

	return event
}
