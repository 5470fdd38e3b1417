package entity

import (
	"github.com/google/uuid"
)

// Reservation groups the tickets bought together; CreatedAt is set once by the database.
type Reservation struct {
	BaseSimple
	UserID  uuid.UUID `db:"user_id"`
	Tickets []Ticket  `db:"-"`
}
