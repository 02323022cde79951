package cloudevents

import (
	"time"
)

// Event type constants for back-office domain events
const (
	// Order events
	OrderSubmitted = "backoffice.order.submitted"
	OrderAccepted  = "backoffice.order.accepted"
	OrderRejected  = "backoffice.order.rejected"
	OrderSettled   = "backoffice.order.settled"

	// Stock events
	StockAlert = "backoffice.stock.alert"

	// Party events
	PartyDeleted = "backoffice.party.deleted"
)

// Source constants for event sources
const (
	SourceBackoffice = "/ims/backoffice-service"
)

// CloudEvent is a CloudEvents v1.0 envelope
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Correlation extension for cross-service tracing
	CorrelationID string `json:"correlationid,omitempty"`
}
