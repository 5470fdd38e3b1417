package response

import (
	"time"

	"theatre-booking/internal/data/entity"
)

type PerformanceListResponse struct {
	ID                  string    `json:"id"`
	PlayTitle           string    `json:"play_title"`
	TheatreHallName     string    `json:"theatre_hall_name"`
	ShowTime            time.Time `json:"show_time"`
	TheatreHallNumSeats int       `json:"theatre_hall_num_seats"`
	TicketsAvailable    int       `json:"tickets_available"`
}

type TakenPlaceResponse struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

type PerformanceDetailResponse struct {
	ID               string               `json:"id"`
	ShowTime         time.Time            `json:"show_time"`
	Play             PlayDetailResponse   `json:"play"`
	TheatreHall      TheatreHallResponse  `json:"theatre_hall"`
	TakenPlaces      []TakenPlaceResponse `json:"taken_places"`
	TicketsAvailable int                  `json:"tickets_available"`
}

// PerformanceResponse is returned by admin writes.
type PerformanceResponse struct {
	ID            string    `json:"id"`
	PlayID        string    `json:"play"`
	TheatreHallID string    `json:"theatre_hall"`
	ShowTime      time.Time `json:"show_time"`
}

func PerformanceToResponse(p *entity.Performance) PerformanceResponse {
	return PerformanceResponse{
		ID:            p.ID.String(),
		PlayID:        p.PlayID.String(),
		TheatreHallID: p.TheatreHallID.String(),
		ShowTime:      p.ShowTime,
	}
}

func PerformanceSummaryToResponse(s *entity.PerformanceSummary) PerformanceListResponse {
	return PerformanceListResponse{
		ID:                  s.ID.String(),
		PlayTitle:           s.PlayTitle,
		TheatreHallName:     s.TheatreHallName,
		ShowTime:            s.ShowTime,
		TheatreHallNumSeats: s.HallNumSeats,
		TicketsAvailable:    s.TicketsAvailable,
	}
}

func TakenPlacesToResponse(seats []entity.SeatCoord) []TakenPlaceResponse {
	out := make([]TakenPlaceResponse, len(seats))
	for i, s := range seats {
		out[i] = TakenPlaceResponse{Row: s.Row, Seat: s.Seat}
	}
	return out
}
