package response

import (
	"time"

	"theatre-booking/internal/data/entity"
)

type TicketResponse struct {
	ID          string                   `json:"id"`
	Row         int                      `json:"row"`
	Seat        int                      `json:"seat"`
	Reservation string                   `json:"reservation"`
	Performance *PerformanceListResponse `json:"performance,omitempty"`
}

type ReservationResponse struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Tickets   []TicketResponse `json:"tickets"`
}

// SeatErrorResponse describes why one requested seat was refused.
type SeatErrorResponse struct {
	Index         int    `json:"index"`
	PerformanceID string `json:"performance_id,omitempty"`
	Row           int    `json:"row"`
	Seat          int    `json:"seat"`
	Field         string `json:"field,omitempty"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

func TicketToResponse(t *entity.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          t.ID.String(),
		Row:         t.Row,
		Seat:        t.Seat,
		Reservation: t.ReservationID.String(),
	}
	if t.Performance != nil {
		p := PerformanceSummaryToResponse(t.Performance)
		resp.Performance = &p
	}
	return resp
}

func ReservationToResponse(r *entity.Reservation) ReservationResponse {
	tickets := make([]TicketResponse, len(r.Tickets))
	for i := range r.Tickets {
		tickets[i] = TicketToResponse(&r.Tickets[i])
	}
	return ReservationResponse{
		ID:        r.ID.String(),
		CreatedAt: r.CreatedAt,
		Tickets:   tickets,
	}
}
