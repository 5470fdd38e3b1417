package wire

import (
	"theatre-booking/internal/adaptor"
	"theatre-booking/internal/data/repository"
	"theatre-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireCatalog mounts the reference data. Any signed-in user may read it;
// only admins may change it.
func wireCatalog(
	r chi.Router,
	handler *adaptor.Handler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.AdminWrites(log))

		r.Route("/api/theatre-halls", func(r chi.Router) {
			r.Get("/", handler.TheatreHall.GetTheatreHalls)
			r.Post("/", handler.TheatreHall.CreateTheatreHall)
			r.Get("/{id}", handler.TheatreHall.GetTheatreHallByID)
			r.Put("/{id}", handler.TheatreHall.UpdateTheatreHall)
			r.Delete("/{id}", handler.TheatreHall.DeleteTheatreHall)
		})

		r.Route("/api/actors", func(r chi.Router) {
			r.Get("/", handler.Actor.GetActors)
			r.Post("/", handler.Actor.CreateActor)
			r.Get("/{id}", handler.Actor.GetActorByID)
			r.Put("/{id}", handler.Actor.UpdateActor)
			r.Delete("/{id}", handler.Actor.DeleteActor)
		})

		r.Route("/api/genres", func(r chi.Router) {
			r.Get("/", handler.Genre.GetGenres)
			r.Post("/", handler.Genre.CreateGenre)
			r.Get("/{id}", handler.Genre.GetGenreByID)
			r.Put("/{id}", handler.Genre.UpdateGenre)
			r.Delete("/{id}", handler.Genre.DeleteGenre)
		})

		r.Route("/api/plays", func(r chi.Router) {
			r.Get("/", handler.Play.GetPlays)
			r.Post("/", handler.Play.CreatePlay)
			r.Get("/{id}", handler.Play.GetPlayByID)
			r.Put("/{id}", handler.Play.UpdatePlay)
			r.Delete("/{id}", handler.Play.DeletePlay)
		})

		r.Route("/api/performances", func(r chi.Router) {
			r.Get("/", handler.Performance.GetPerformances)
			r.Post("/", handler.Performance.CreatePerformance)
			r.Get("/{id}", handler.Performance.GetPerformanceByID)
			r.Put("/{id}", handler.Performance.UpdatePerformance)
			r.Delete("/{id}", handler.Performance.DeletePerformance)
		})
	})
}
