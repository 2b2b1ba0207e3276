package mq

import (
	"context"
	"fmt"

	"github.com/cbthost/voter-registry/config"
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
	// Subscribe joins the channel's shared consumers; each message goes to
	// one subscriber and is acknowledged off the channel.
	Subscribe(ctx context.Context, channel string, handler Handler) error
	// Tail observes messages published from now on without taking them away
	// from subscribers.
	Tail(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// NewBackend constructs the broker selected by cfg.Backend. It returns a nil
// Backend and no error when publishing is disabled.
func NewBackend(ctx context.Context, cfg config.EventsConfig) (Backend, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "pubsub":
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown MQ_BACKEND %q", cfg.Backend)
	}
}
