package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cbthost/voter-registry/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQClient publishes voter events over a single connection/channel
// pair. Each event channel is a fanout exchange with a durable work queue of
// the same name bound to it. The channel runs in confirm mode and Publish
// returns only once the broker has taken responsibility for the message.
type RabbitMQClient struct {
	conn            *amqp.Connection
	channel         *amqp.Channel
	queueDurable    bool
	queueAutoDelete bool

	// mu guards declared and is held only while declaring topology.
	mu       sync.Mutex
	declared map[string]bool

	declare func(name string) error
	publish func(ctx context.Context, exchange string, msg amqp.Publishing) (confirmation, error)
}

// confirmation is a pending publisher confirm.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// NewRabbitMQClient constructs a RabbitMQ client from config.
func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("RABBITMQ_URL is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}

	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}

	r := &RabbitMQClient{
		conn:            conn,
		channel:         ch,
		queueDurable:    cfg.QueueDurable,
		queueAutoDelete: cfg.QueueAutoDelete,
		declared:        map[string]bool{},
	}
	r.declare = r.declareTopology
	r.publish = func(ctx context.Context, exchange string, msg amqp.Publishing) (confirmation, error) {
		confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, "", false, false, msg)
		if err != nil {
			return nil, err
		}
		return confirm, nil
	}
	return r, nil
}

// Publish sends a message to the channel's exchange and waits for the
// broker's confirm. Concurrent publishes wait for their confirms in parallel.
func (r *RabbitMQClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("rabbitmq channel is required")
	}
	if err := r.ensureTopology(channel); err != nil {
		return "", err
	}

	headers := amqp.Table{}
	for key, value := range attrs {
		headers[key] = value
	}

	deliveryMode := amqp.Transient
	if r.queueDurable {
		deliveryMode = amqp.Persistent
	}

	messageID := uuid.NewString()
	confirm, err := r.publish(ctx, channel, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: deliveryMode,
		Timestamp:    time.Now(),
		MessageId:    messageID,
		Headers:      headers,
		Body:         data,
	})
	if err != nil {
		return "", err
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return "", err
	}
	if !acked {
		return "", fmt.Errorf("rabbitmq rejected message %s", messageID)
	}
	return messageID, nil
}

// Subscribe consumes the channel's shared work queue until ctx is done. A
// message whose handler fails is requeued once; a second failure drops it so
// one bad event cannot stall the queue.
func (r *RabbitMQClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}
	if err := r.ensureTopology(channel); err != nil {
		return err
	}

	consumerTag := "voterreg-" + uuid.NewString()
	deliveries, err := r.channel.ConsumeWithContext(ctx, channel, consumerTag, false, false, false, false, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.channel.Cancel(consumerTag, false)
	}()
	return r.consume(ctx, deliveries, handler, true)
}

// Tail receives a copy of every message published to channel from now on,
// through an exclusive server-named queue that the broker deletes when the
// consumer goes away. The shared work queue is left untouched.
func (r *RabbitMQClient) Tail(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}
	if err := r.ensureTopology(channel); err != nil {
		return err
	}

	queue, err := r.channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return err
	}
	if err := r.channel.QueueBind(queue.Name, "", channel, false, nil); err != nil {
		return err
	}

	consumerTag := "voterreg-tail-" + uuid.NewString()
	deliveries, err := r.channel.ConsumeWithContext(ctx, queue.Name, consumerTag, true, true, false, false, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.channel.Cancel(consumerTag, false)
	}()
	return r.consume(ctx, deliveries, handler, false)
}

func (r *RabbitMQClient) consume(ctx context.Context, deliveries <-chan amqp.Delivery, handler Handler, manualAck bool) error {
	closed := r.conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr != nil {
				return fmt.Errorf("rabbitmq connection closed: %w", amqpErr)
			}
			return errors.New("rabbitmq connection closed")
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			err := handler(ctx, Message{
				ID:         delivery.MessageId,
				Data:       delivery.Body,
				Attributes: headersToAttributes(delivery.Headers),
			})
			if !manualAck {
				continue
			}
			if err != nil {
				_ = delivery.Nack(false, !delivery.Redelivered)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

// Close closes the channel and connection. Closing an already closed
// connection is not an error.
func (r *RabbitMQClient) Close() error {
	if r.channel != nil && !r.channel.IsClosed() {
		_ = r.channel.Close()
	}
	if r.conn == nil || r.conn.IsClosed() {
		return nil
	}
	return r.conn.Close()
}

// ensureTopology declares name's exchange and work queue once per client.
func (r *RabbitMQClient) ensureTopology(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.declared[name] {
		return nil
	}
	if err := r.declare(name); err != nil {
		return err
	}
	r.declared[name] = true
	return nil
}

func (r *RabbitMQClient) declareTopology(name string) error {
	if err := r.channel.ExchangeDeclare(name, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	_, err := r.channel.QueueDeclare(
		name,
		r.queueDurable,
		r.queueAutoDelete,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	if err := r.channel.QueueBind(name, "", name, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", name, err)
	}
	return nil
}

func headersToAttributes(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(headers))
	for key, value := range headers {
		switch typed := value.(type) {
		case string:
			attrs[key] = typed
		case []byte:
			attrs[key] = string(typed)
		default:
			attrs[key] = fmt.Sprint(value)
		}
	}
	return attrs
}
