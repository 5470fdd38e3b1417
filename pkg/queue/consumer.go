package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const maxBackoff = 30 * time.Second

// Handler processes one decoded event. A returned error rejects the message without requeue.
type Handler func(ctx context.Context, event ReservationCreatedEvent) error

type Consumer struct {
	url     string
	queue   string
	handler Handler
	log     *zap.Logger
}

func NewConsumer(url, queue string, handler Handler, log *zap.Logger) *Consumer {
	return &Consumer{
		url:     url,
		queue:   queue,
		handler: handler,
		log:     log.With(zap.String("component", "queue_consumer"), zap.String("queue", queue)),
	}
}

// AuditLogHandler writes each reservation event to the structured log.
func AuditLogHandler(log *zap.Logger) Handler {
	return func(_ context.Context, ev ReservationCreatedEvent) error {
		seats := make([]string, 0, len(ev.Tickets))
		for _, t := range ev.Tickets {
			seats = append(seats, fmt.Sprintf("%s:%d-%d", t.PerformanceID, t.Row, t.Seat))
		}
		log.Info("Reservation created",
			zap.String("reservation_id", ev.ReservationID.String()),
			zap.String("user_id", ev.UserID.String()),
			zap.Time("created_at", ev.CreatedAt),
			zap.Strings("seats", seats),
		)
		return nil
	}
}

// Run consumes until ctx is cancelled, redialling with exponential backoff.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := dial(c.url, dialTimeout)
		if err != nil {
			c.log.Warn("Dial broker failed, retrying", zap.Error(err), zap.Duration("backoff", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("Consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("Set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				c.log.Error("Handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var ev ReservationCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return c.handler(ctx, ev)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
