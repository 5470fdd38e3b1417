package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends reservation events to a durable queue.
type Publisher interface {
	PublishReservationCreated(ctx context.Context, event ReservationCreatedEvent) error
	Close() error
}

// NopPublisher drops events; used when RabbitMQ is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishReservationCreated(context.Context, ReservationCreatedEvent) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

// dialTimeout bounds the TCP connect and the AMQP handshake, which amqp.Dial leaves at 30s.
const dialTimeout = 2 * time.Second

func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

type amqpPublisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	log         *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewPublisher(url, queue string, log *zap.Logger) Publisher {
	return &amqpPublisher{
		url:         url,
		queue:       queue,
		dialTimeout: dialTimeout,
		log:         log.With(zap.String("component", "queue_publisher"), zap.String("queue", queue)),
	}
}

// connection reuses the open connection and redials once it has been closed.
func (p *amqpPublisher) connection(ctx context.Context) (*amqp.Connection, error) {
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := dial(p.url, p.dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	p.conn = conn
	return conn, nil
}

func (p *amqpPublisher) PublishReservationCreated(ctx context.Context, event ReservationCreatedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := p.connection(ctx)
	if err != nil {
		p.log.Warn("Publish skipped, broker unreachable", zap.Error(err))
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so events survive a broker restart
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.ReservationID.String(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}

	p.log.Debug("Reservation event published", zap.String("reservation_id", event.ReservationID.String()))
	return nil
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
