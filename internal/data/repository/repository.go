package repository

import (
	"theatre-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Session     SessionRepository
	TheatreHall TheatreHallRepository
	Actor       ActorRepository
	Genre       GenreRepository
	Play        PlayRepository
	Performance PerformanceRepository
	Reservation ReservationRepository
	Ticket      TicketRepository
	Booking     BookingStore
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Session:     NewSessionRepository(db, log),
		TheatreHall: NewTheatreHallRepository(db, log),
		Actor:       NewActorRepository(db, log),
		Genre:       NewGenreRepository(db, log),
		Play:        NewPlayRepository(db, log),
		Performance: NewPerformanceRepository(db, log),
		Reservation: NewReservationRepository(db, log),
		Ticket:      NewTicketRepository(db, log),
		Booking:     NewBookingStore(db, log),
	}
}
