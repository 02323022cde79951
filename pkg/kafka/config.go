package kafka

import (
	"strings"
	"time"
)

// Config holds Kafka configuration
type Config struct {
	Brokers  []string
	ClientID string

	// Producer settings
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:  []string{"localhost:9092"},
		ClientID: "backoffice-service",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
	}
}

// Topics contains the back-office Kafka topic names
var Topics = struct {
	OrderEvents string
	StockEvents string
	PartyEvents string
}{
	OrderEvents: "backoffice.orders.events",
	StockEvents: "backoffice.stock.events",
	PartyEvents: "backoffice.parties.events",
}

// TopicForEventType routes a CloudEvent type to its topic
func TopicForEventType(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "backoffice.stock."):
		return Topics.StockEvents
	case strings.HasPrefix(eventType, "backoffice.party."):
		return Topics.PartyEvents
	default:
		return Topics.OrderEvents
	}
}
