package wire

import (
	"theatre-booking/internal/adaptor"
	"theatre-booking/internal/data/repository"
	"theatre-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireReservation mounts the caller-scoped reservation and ticket routes.
func wireReservation(
	r chi.Router,
	reservationHandler *adaptor.ReservationHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/api/reservations", reservationHandler.CreateReservation)
		r.Get("/api/reservations", reservationHandler.GetReservations)
		r.Get("/api/reservations/{id}", reservationHandler.GetReservationByID)
		r.Delete("/api/reservations/{id}", reservationHandler.DeleteReservation)
		r.Post("/api/reservations/{id}/tickets", reservationHandler.AddTicket)
		r.Get("/api/reservations/{id}/tickets.pdf", reservationHandler.DownloadTickets)

		r.Get("/api/tickets", reservationHandler.GetTickets)
		r.Delete("/api/tickets/{id}", reservationHandler.DeleteTicket)
	})
}
