package entity

import "github.com/google/uuid"

type Ticket struct {
	ID            uuid.UUID `db:"id"`
	Row           int       `db:"row"`
	Seat          int       `db:"seat"`
	PerformanceID uuid.UUID `db:"performance_id"`
	ReservationID uuid.UUID `db:"reservation_id"`
	UserID        uuid.UUID `db:"user_id"`

	// filled by list queries, nil otherwise
	Performance *PerformanceSummary `db:"-"`
}

func (t *Ticket) Coord() SeatCoord {
	return SeatCoord{Row: t.Row, Seat: t.Seat}
}
