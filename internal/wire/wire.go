package wire

import (
	"net/http"

	"theatre-booking/internal/adaptor"
	"theatre-booking/internal/data/repository"
	"theatre-booking/internal/usecase"
	"theatre-booking/pkg/cache"
	"theatre-booking/pkg/middleware"
	"theatre-booking/pkg/queue"
	"theatre-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired router
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and routes from the shared infrastructure
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	availability *cache.AvailabilityCache,
	publisher queue.Publisher,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, availability, publisher, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS)

	wireAuth(r, handler.Auth, repo, logger)
	wireUser(r, handler.User, repo, logger)
	wireCatalog(r, handler, repo, logger)
	wireReservation(r, handler.Reservation, repo, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
