package usecase

import "theatre-booking/internal/data/entity"

// ValidateSeat checks a 1-based (row, seat) against the hall grid.
// Row is checked first.
func ValidateSeat(row, seat int, hall *entity.TheatreHall) error {
	if row < 1 || row > hall.Rows {
		return &SeatOutOfRangeError{Field: "row", Bound: hall.Rows, Value: row}
	}
	if seat < 1 || seat > hall.SeatsInRows {
		return &SeatOutOfRangeError{Field: "seat", Bound: hall.SeatsInRows, Value: seat}
	}
	return nil
}
