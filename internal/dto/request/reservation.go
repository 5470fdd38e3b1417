package request

// TicketRequest is one requested seat. Row and Seat bounds depend on the hall
// and are checked by the booking engine, not by tags.
type TicketRequest struct {
	PerformanceID string `json:"performance_id" validate:"required,uuid"`
	Row           int    `json:"row"`
	Seat          int    `json:"seat"`
}

type ReservationRequest struct {
	Tickets []TicketRequest `json:"tickets" validate:"dive"`
}
