package entity

// TheatreHall is a rectangular grid of Rows x SeatsInRows seats.
type TheatreHall struct {
	Base
	Name        string `db:"name"`
	Rows        int    `db:"rows"`
	SeatsInRows int    `db:"seats_in_rows"`
}

// NumSeats is the hall capacity.
func (h *TheatreHall) NumSeats() int {
	return h.Rows * h.SeatsInRows
}
