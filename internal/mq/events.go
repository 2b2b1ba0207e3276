package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cbthost/voter-registry/types"
)

// Event types published on the voter events channel.
const (
	EventVoterRegistered = "voter.registered"
	EventVoterVerified   = "voter.verified"
)

const (
	attrEventType = "event_type"
	attrVoterID   = "voter_id"
)

// VoterEvent is the JSON body of a published voter event.
type VoterEvent struct {
	Type       string    `json:"type"`
	VoterID    string    `json:"voterId"`
	Verified   bool      `json:"verified"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher emits voter lifecycle events to a Backend channel.
type Publisher struct {
	backend Backend
	channel string
	now     func() time.Time
}

// NewPublisher constructs a Publisher for channel. A nil backend yields a
// Publisher that drops every event.
func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{
		backend: backend,
		channel: channel,
		now:     time.Now,
	}
}

// VoterRegistered publishes a voter.registered event.
func (p *Publisher) VoterRegistered(ctx context.Context, voter types.Voter) error {
	return p.publish(ctx, EventVoterRegistered, voter)
}

// VoterVerified publishes a voter.verified event carrying the new flag value.
func (p *Publisher) VoterVerified(ctx context.Context, voter types.Voter) error {
	return p.publish(ctx, EventVoterVerified, voter)
}

func (p *Publisher) publish(ctx context.Context, eventType string, voter types.Voter) error {
	if p == nil || p.backend == nil {
		return nil
	}
	data, err := json.Marshal(VoterEvent{
		Type:       eventType,
		VoterID:    voter.ID,
		Verified:   voter.IsVerified,
		OccurredAt: p.now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = p.backend.Publish(ctx, p.channel, data, map[string]string{
		attrEventType: eventType,
		attrVoterID:   voter.ID,
	})
	return err
}

// Consume delivers decoded voter events from the channel's shared
// subscription to fn until ctx is done. Consumed events are acknowledged and
// not seen by other subscribers. Undecodable messages are skipped.
func (p *Publisher) Consume(ctx context.Context, fn func(context.Context, VoterEvent) error) error {
	if p == nil || p.backend == nil {
		return errNoBackend
	}
	return p.backend.Subscribe(ctx, p.channel, decodeEvents(fn))
}

// Tail delivers decoded voter events published from now on without taking
// them from the shared subscription.
func (p *Publisher) Tail(ctx context.Context, fn func(context.Context, VoterEvent) error) error {
	if p == nil || p.backend == nil {
		return errNoBackend
	}
	return p.backend.Tail(ctx, p.channel, decodeEvents(fn))
}

var errNoBackend = errors.New("no message backend configured")

func decodeEvents(fn func(context.Context, VoterEvent) error) Handler {
	return func(ctx context.Context, msg Message) error {
		var event VoterEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return nil
		}
		return fn(ctx, event)
	}
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}
