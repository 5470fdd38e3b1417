package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrEmptyReservation       = errors.New("reservation must contain at least one ticket")
	ErrUnknownPerformance     = errors.New("performance not found")
	ErrSeatOutOfRange         = errors.New("seat out of range")
	ErrSeatAlreadyTaken       = errors.New("seat already taken")
	ErrDuplicateSeatInRequest = errors.New("seat requested more than once")
	ErrReservationNotFound    = errors.New("reservation not found")

	// ErrPersistenceConflict means the unique index refused a seat that passed the
	// in-transaction check. It matches ErrSeatAlreadyTaken under errors.Is.
	ErrPersistenceConflict = fmt.Errorf("%w: refused by unique index", ErrSeatAlreadyTaken)
)

// SeatOutOfRangeError carries which coordinate broke the hall bounds.
type SeatOutOfRangeError struct {
	Field string // "row" or "seat"
	Bound int
	Value int
}

func (e *SeatOutOfRangeError) Error() string {
	return fmt.Sprintf("%s must be in range [1, %d], got %d", e.Field, e.Bound, e.Value)
}

func (e *SeatOutOfRangeError) Unwrap() error { return ErrSeatOutOfRange }

// SeatError ties a failure to the requested seat at Index.
type SeatError struct {
	Index         int
	PerformanceID uuid.UUID
	Row           int
	Seat          int
	Err           error
}

func (e *SeatError) Error() string {
	return fmt.Sprintf("ticket %d (performance %s, row %d, seat %d): %v",
		e.Index, e.PerformanceID, e.Row, e.Seat, e.Err)
}

func (e *SeatError) Unwrap() error { return e.Err }

// Field names the offending coordinate for range errors, empty otherwise.
func (e *SeatError) Field() string {
	var oor *SeatOutOfRangeError
	if errors.As(e.Err, &oor) {
		return oor.Field
	}
	return ""
}

// SeatErrors collects every refused seat of one request.
type SeatErrors []*SeatError

func (es SeatErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (es SeatErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// ErrorCode is the stable machine-readable name of a booking error.
// ErrPersistenceConflict shares the code of ErrSeatAlreadyTaken.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrEmptyReservation):
		return "empty_reservation"
	case errors.Is(err, ErrUnknownPerformance):
		return "unknown_performance"
	case errors.Is(err, ErrSeatOutOfRange):
		return "seat_out_of_range"
	case errors.Is(err, ErrSeatAlreadyTaken):
		return "seat_already_taken"
	case errors.Is(err, ErrDuplicateSeatInRequest):
		return "duplicate_seat_in_request"
	case errors.Is(err, ErrReservationNotFound):
		return "reservation_not_found"
	default:
		return "internal_error"
	}
}

// SeatErrorsOf flattens err into per-seat failures, nil when err carries none.
func SeatErrorsOf(err error) []*SeatError {
	var many SeatErrors
	if errors.As(err, &many) {
		return many
	}
	var one *SeatError
	if errors.As(err, &one) {
		return []*SeatError{one}
	}
	return nil
}
