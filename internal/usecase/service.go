package usecase

import (
	"context"

	"theatre-booking/internal/data/repository"
	"theatre-booking/pkg/cache"
	"theatre-booking/pkg/queue"
	"theatre-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// availabilityStore is the part of the availability cache the services use.
type availabilityStore interface {
	Get(ctx context.Context, performanceID uuid.UUID, dst any) (bool, int64)
	Set(ctx context.Context, performanceID uuid.UUID, version int64, v any)
	Invalidate(ctx context.Context, performanceIDs ...uuid.UUID)
}

type Service struct {
	Auth        AuthService
	User        UserService
	TheatreHall TheatreHallService
	Actor       ActorService
	Genre       GenreService
	Play        PlayService
	Performance PerformanceService
	Reservation ReservationService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	availability *cache.AvailabilityCache,
	publisher queue.Publisher,
	log *zap.Logger,
) *Service {
	engine := NewBookingEngine(repo.Booking, log)

	return &Service{
		Auth:        NewAuthService(repo, config, log),
		User:        NewUserService(repo.User, log),
		TheatreHall: NewTheatreHallService(repo, availability, log),
		Actor:       NewActorService(repo.Actor, log),
		Genre:       NewGenreService(repo.Genre, log),
		Play:        NewPlayService(repo, availability, log),
		Performance: NewPerformanceService(repo, availability, log),
		Reservation: NewReservationService(repo, engine, availability, publisher, log),
	}
}
