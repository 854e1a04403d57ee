// Package mq publishes record events to RabbitMQ or Google Pub/Sub.
package mq

import (
	"context"
	"fmt"

	"github.com/brgy-records/apiserver/config"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Open connects to the broker selected by cfg.Backend. It returns nil for
// the "none" backend.
func Open(ctx context.Context, cfg config.MQConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		backend, err := newRabbitBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case "pubsub":
		backend, err := newPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}
