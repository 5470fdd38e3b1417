package adaptor

import (
	"theatre-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	TheatreHall *TheatreHallHandler
	Actor       *ActorHandler
	Genre       *GenreHandler
	Play        *PlayHandler
	Performance *PerformanceHandler
	Reservation *ReservationHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(service.Auth, log),
		User:        NewUserHandler(service.User, log),
		TheatreHall: NewTheatreHallHandler(service.TheatreHall, log),
		Actor:       NewActorHandler(service.Actor, log),
		Genre:       NewGenreHandler(service.Genre, log),
		Play:        NewPlayHandler(service.Play, log),
		Performance: NewPerformanceHandler(service.Performance, log),
		Reservation: NewReservationHandler(service.Reservation, log),
	}
}
