package response

import "theatre-booking/internal/data/entity"

type TheatreHallResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Rows        int    `json:"rows"`
	SeatsInRows int    `json:"seats_in_rows"`
	NumSeats    int    `json:"num_seats"`
}

func TheatreHallToResponse(h *entity.TheatreHall) TheatreHallResponse {
	return TheatreHallResponse{
		ID:          h.ID.String(),
		Name:        h.Name,
		Rows:        h.Rows,
		SeatsInRows: h.SeatsInRows,
		NumSeats:    h.NumSeats(),
	}
}
