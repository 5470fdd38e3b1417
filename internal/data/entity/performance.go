package entity

import (
	"time"

	"github.com/google/uuid"
)

type Performance struct {
	Base
	PlayID        uuid.UUID `db:"play_id"`
	TheatreHallID uuid.UUID `db:"theatre_hall_id"`
	ShowTime      time.Time `db:"show_time"`
}

// PerformanceSummary is one row of the performance list with its availability.
type PerformanceSummary struct {
	Performance
	PlayTitle        string `db:"play_title"`
	TheatreHallName  string `db:"theatre_hall_name"`
	HallNumSeats     int    `db:"theatre_hall_num_seats"`
	TicketsAvailable int    `db:"tickets_available"`
}

// PerformanceHall is a performance joined with the hall that bounds its seats.
type PerformanceHall struct {
	Performance
	Hall TheatreHall
}
