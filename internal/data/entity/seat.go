package entity

import "github.com/google/uuid"

// SeatCoord is one place in a hall, 1-based.
type SeatCoord struct {
	Row  int `db:"row"`
	Seat int `db:"seat"`
}

// SeatKey identifies a seat within a specific performance.
type SeatKey struct {
	PerformanceID uuid.UUID
	SeatCoord
}

// SeatRequest is one requested ticket in a reservation.
type SeatRequest struct {
	PerformanceID uuid.UUID
	Row           int
	Seat          int
}

func (s SeatRequest) Key() SeatKey {
	return SeatKey{PerformanceID: s.PerformanceID, SeatCoord: SeatCoord{Row: s.Row, Seat: s.Seat}}
}
