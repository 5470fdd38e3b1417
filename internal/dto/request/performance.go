package request

import "time"

type PerformanceRequest struct {
	Play        string    `json:"play" validate:"required,uuid"`
	TheatreHall string    `json:"theatre_hall" validate:"required,uuid"`
	ShowTime    time.Time `json:"show_time" validate:"required"`
}
