package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrPublishBufferFull is returned when events arrive faster than the broker takes them.
var ErrPublishBufferFull = errors.New("publish buffer full, event dropped")

const publishTimeout = 5 * time.Second

// AsyncPublisher hands events to one background goroutine, so a slow or silent
// broker never holds up the caller. Each delivery gets its own deadline.
type AsyncPublisher struct {
	next    Publisher
	events  chan ReservationCreatedEvent
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAsyncPublisher(next Publisher, buffer int, log *zap.Logger) *AsyncPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	p := &AsyncPublisher{
		next:    next,
		events:  make(chan ReservationCreatedEvent, buffer),
		timeout: publishTimeout,
		log:     log.With(zap.String("component", "async_publisher")),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) run() {
	defer close(p.done)

	for ev := range p.events {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.next.PublishReservationCreated(ctx, ev); err != nil {
			p.log.Warn("Reservation event not delivered",
				zap.Error(err),
				zap.String("reservation_id", ev.ReservationID.String()),
			)
		}
		cancel()
	}
}

// PublishReservationCreated queues the event and returns at once.
func (p *AsyncPublisher) PublishReservationCreated(_ context.Context, event ReservationCreatedEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return errors.New("publisher closed")
	}
	select {
	case p.events <- event:
		return nil
	default:
		return ErrPublishBufferFull
	}
}

// Close delivers what is already queued, then closes the wrapped publisher.
func (p *AsyncPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	<-p.done
	return p.next.Close()
}
