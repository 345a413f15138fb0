package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Audit event types published to the auth topic.
const (
	TypeUserRegistered = "user_registered"
	TypeUserLoggedIn   = "user_logged_in"
	TypeLoginFailed    = "login_failed"
	TypeAccountLocked  = "account_locked"
	TypeQueryDenied    = "query_denied"
)

// Producer publishes security audit events. A nil Producer is valid and
// drops everything, so audit publishing stays optional.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a producer for the given broker and topic. Returns
// nil when address is empty (auditing disabled).
func NewProducer(address, topic string) *Producer {
	if address == "" {
		return nil
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(address),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Publish sends one event keyed by principal. Best-effort: callers log the
// returned error and continue, auditing never blocks an auth decision.
func (p *Producer) Publish(ctx context.Context, key string, event map[string]interface{}) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
