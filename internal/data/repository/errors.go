package repository

import (
	"errors"
	"fmt"
)

// ErrHallChangeWithTickets is returned when a performance that already sold
// tickets would be moved to another hall.
var ErrHallChangeWithTickets = errors.New("invalid theatre hall change: performance already has tickets")

// HallTooSmallError is returned when a resize would leave a sold seat outside the hall.
type HallTooSmallError struct {
	MaxRow  int
	MaxSeat int
}

func (e *HallTooSmallError) Error() string {
	return fmt.Sprintf("invalid hall size: sold tickets reach row %d seat %d", e.MaxRow, e.MaxSeat)
}
