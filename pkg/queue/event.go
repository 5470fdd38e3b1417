// Package queue carries reservation events over RabbitMQ.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// ReservationCreatedEvent is published once a reservation has been committed.
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID     `json:"reservation_id"`
	UserID        uuid.UUID     `json:"user_id"`
	CreatedAt     time.Time     `json:"created_at"`
	Tickets       []TicketEvent `json:"tickets"`
}

type TicketEvent struct {
	TicketID      uuid.UUID `json:"ticket_id"`
	PerformanceID uuid.UUID `json:"performance_id"`
	Row           int       `json:"row"`
	Seat          int       `json:"seat"`
}
