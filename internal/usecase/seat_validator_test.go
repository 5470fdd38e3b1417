package usecase

import (
	"errors"
	"testing"

	"theatre-booking/internal/data/entity"
)

func TestValidateSeat(t *testing.T) {
	hall := &entity.TheatreHall{Rows: 10, SeatsInRows: 12}

	tests := []struct {
		name      string
		row, seat int
		wantField string
	}{
		{"first seat", 1, 1, ""},
		{"last seat", 10, 12, ""},
		{"row zero", 0, 5, "row"},
		{"negative row", -1, 5, "row"},
		{"row past end", 11, 5, "row"},
		{"seat zero", 5, 0, "seat"},
		{"seat past end", 5, 13, "seat"},
		{"both bad reports row", 11, 13, "row"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeat(tt.row, tt.seat, hall)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateSeat() error = %v", err)
				}
				return
			}

			if !errors.Is(err, ErrSeatOutOfRange) {
				t.Fatalf("err = %v, want ErrSeatOutOfRange", err)
			}
			var oor *SeatOutOfRangeError
			if !errors.As(err, &oor) || oor.Field != tt.wantField {
				t.Errorf("field = %v, want %s", oor, tt.wantField)
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrEmptyReservation, "empty_reservation"},
		{&SeatError{Err: ErrUnknownPerformance}, "unknown_performance"},
		{&SeatError{Err: &SeatOutOfRangeError{Field: "row"}}, "seat_out_of_range"},
		{SeatErrors{{Err: ErrSeatAlreadyTaken}}, "seat_already_taken"},
		{&SeatError{Err: ErrPersistenceConflict}, "seat_already_taken"},
		{ErrDuplicateSeatInRequest, "duplicate_seat_in_request"},
		{ErrReservationNotFound, "reservation_not_found"},
		{errors.New("boom"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
