package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brgy-records/apiserver/types"
	"go.uber.org/zap"
)

// EventRecordCreated is published after a record is stored.
const EventRecordCreated = "record.created"

// RecordEvent is the JSON body of a record event.
type RecordEvent struct {
	Event      string           `json:"event"`
	RecordType types.RecordType `json:"record_type"`
	RecordID   int              `json:"record_id"`
	ActorID    *int             `json:"actor_id,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Publisher sends record events to one topic. A Publisher without a backend
// drops events, so callers never need to check whether a broker is configured.
type Publisher struct {
	backend Backend
	topic   string
	logger  *zap.Logger
	now     func() time.Time
}

func NewPublisher(backend Backend, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{backend: backend, topic: topic, logger: logger, now: time.Now}
}

// Enabled reports whether a broker is configured.
func (p *Publisher) Enabled() bool {
	return p != nil && p.backend != nil
}

// RecordCreated publishes a record.created event. Publish failures are logged
// and never returned: the record is already stored.
func (p *Publisher) RecordCreated(ctx context.Context, recordType types.RecordType, id int, actorID *int) {
	if !p.Enabled() {
		return
	}
	event := RecordEvent{
		Event:      EventRecordCreated,
		RecordType: recordType,
		RecordID:   id,
		ActorID:    actorID,
		OccurredAt: p.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to encode record event", zap.Error(err))
		return
	}
	attrs := map[string]string{
		"event":       event.Event,
		"record_type": string(recordType),
	}
	msgID, err := p.backend.Publish(ctx, p.topic, data, attrs)
	if err != nil {
		p.logger.Warn("Failed to publish record event",
			zap.String("record_type", string(recordType)),
			zap.Int("record_id", id),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("Published record event",
		zap.String("message_id", msgID),
		zap.String("record_type", string(recordType)),
		zap.Int("record_id", id),
	)
}

// Tail consumes record events until ctx is done. Undecodable messages are
// acknowledged and skipped.
func (p *Publisher) Tail(ctx context.Context, handle func(RecordEvent) error) error {
	if !p.Enabled() {
		return fmt.Errorf("no message broker configured")
	}
	return p.backend.Subscribe(ctx, p.topic, func(ctx context.Context, msg Message) error {
		var event RecordEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			p.logger.Warn("Skipping malformed record event", zap.String("message_id", msg.ID), zap.Error(err))
			return nil
		}
		return handle(event)
	})
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.backend.Close()
}
