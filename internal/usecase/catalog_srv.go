package usecase

import (
	"context"
	"fmt"
	"time"

	"theatre-booking/internal/data/entity"
	"theatre-booking/internal/data/repository"
	"theatre-booking/internal/dto/request"
	"theatre-booking/internal/dto/response"
	"theatre-booking/pkg/cache"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ==================== THEATRE HALLS ====================

type TheatreHallService interface {
	GetTheatreHalls(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TheatreHallResponse], error)
	GetTheatreHallByID(ctx context.Context, hallID string) (*response.TheatreHallResponse, error)
	CreateTheatreHall(ctx context.Context, req *request.TheatreHallRequest) (*response.TheatreHallResponse, error)
	UpdateTheatreHall(ctx context.Context, hallID string, req *request.TheatreHallRequest) (*response.TheatreHallResponse, error)
	DeleteTheatreHall(ctx context.Context, hallID string) error
}

type theatreHallService struct {
	repo  *repository.Repository
	cache availabilityStore
	log   *zap.Logger
}

func NewTheatreHallService(repo *repository.Repository, availability *cache.AvailabilityCache, log *zap.Logger) TheatreHallService {
	return &theatreHallService{
		repo:  repo,
		cache: availability,
		log:   log.With(zap.String("service", "theatre_hall")),
	}
}

func (s *theatreHallService) GetTheatreHalls(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TheatreHallResponse], error) {
	halls, err := s.repo.TheatreHall.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get theatre halls: %w", err)
	}
	total, err := s.repo.TheatreHall.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count theatre halls: %w", err)
	}

	out := make([]response.TheatreHallResponse, len(halls))
	for i, h := range halls {
		out[i] = response.TheatreHallToResponse(h)
	}
	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *theatreHallService) GetTheatreHallByID(ctx context.Context, hallID string) (*response.TheatreHallResponse, error) {
	id, err := uuid.Parse(hallID)
	if err != nil {
		return nil, fmt.Errorf("invalid theatre hall ID format %s: %w", hallID, err)
	}

	hall, err := s.repo.TheatreHall.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get theatre hall %s: %w", hallID, err)
	}
	if hall == nil {
		return nil, fmt.Errorf("theatre hall %s not found", hallID)
	}

	resp := response.TheatreHallToResponse(hall)
	return &resp, nil
}

func (s *theatreHallService) CreateTheatreHall(ctx context.Context, req *request.TheatreHallRequest) (*response.TheatreHallResponse, error) {
	now := time.Now()
	hall := &entity.TheatreHall{
		Base:        entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:        req.Name,
		Rows:        req.Rows,
		SeatsInRows: req.SeatsInRows,
	}
	if err := s.repo.TheatreHall.Create(ctx, hall); err != nil {
		return nil, err
	}

	s.log.Info("Theatre hall created", zap.String("theatre_hall_id", hall.ID.String()), zap.Int("num_seats", hall.NumSeats()))
	resp := response.TheatreHallToResponse(hall)
	return &resp, nil
}

// UpdateTheatreHall never shrinks a hall below a seat that has been sold in it;
// the repository refuses with *repository.HallTooSmallError.
func (s *theatreHallService) UpdateTheatreHall(ctx context.Context, hallID string, req *request.TheatreHallRequest) (*response.TheatreHallResponse, error) {
	id, err := uuid.Parse(hallID)
	if err != nil {
		return nil, fmt.Errorf("invalid theatre hall ID format %s: %w", hallID, err)
	}

	hall, err := s.repo.TheatreHall.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get theatre hall %s: %w", hallID, err)
	}
	if hall == nil {
		return nil, fmt.Errorf("theatre hall %s not found", hallID)
	}

	hall.Name = req.Name
	hall.Rows = req.Rows
	hall.SeatsInRows = req.SeatsInRows
	hall.UpdatedAt = time.Now()

	if err := s.repo.TheatreHall.Update(ctx, hall); err != nil {
		return nil, err
	}

	// the hall size feeds every cached availability count of its performances
	ctx = context.WithoutCancel(ctx)
	performanceIDs, err := s.repo.Performance.IDsByTheatreHall(ctx, id)
	if err != nil {
		s.log.Warn("Skipping cache invalidation", zap.Error(err), zap.String("theatre_hall_id", hallID))
	} else {
		s.cache.Invalidate(ctx, performanceIDs...)
	}

	s.log.Info("Theatre hall updated", zap.String("theatre_hall_id", hallID))
	resp := response.TheatreHallToResponse(hall)
	return &resp, nil
}

func (s *theatreHallService) DeleteTheatreHall(ctx context.Context, hallID string) error {
	id, err := uuid.Parse(hallID)
	if err != nil {
		return fmt.Errorf("invalid theatre hall ID format %s: %w", hallID, err)
	}

	performanceIDs, err := s.repo.TheatreHall.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.cache.Invalidate(context.WithoutCancel(ctx), performanceIDs...)

	s.log.Info("Theatre hall deleted",
		zap.String("theatre_hall_id", hallID),
		zap.Int("performances_removed", len(performanceIDs)),
	)
	return nil
}

// ==================== ACTORS ====================

type ActorService interface {
	GetActors(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ActorResponse], error)
	GetActorByID(ctx context.Context, actorID string) (*response.ActorResponse, error)
	CreateActor(ctx context.Context, req *request.ActorRequest) (*response.ActorResponse, error)
	UpdateActor(ctx context.Context, actorID string, req *request.ActorRequest) (*response.ActorResponse, error)
	DeleteActor(ctx context.Context, actorID string) error
}

type actorService struct {
	repo repository.ActorRepository
	log  *zap.Logger
}

func NewActorService(repo repository.ActorRepository, log *zap.Logger) ActorService {
	return &actorService{
		repo: repo,
		log:  log.With(zap.String("service", "actor")),
	}
}

func (s *actorService) GetActors(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ActorResponse], error) {
	actors, err := s.repo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get actors: %w", err)
	}
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count actors: %w", err)
	}

	out := make([]response.ActorResponse, len(actors))
	for i, a := range actors {
		out[i] = response.ActorToResponse(a)
	}
	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *actorService) GetActorByID(ctx context.Context, actorID string) (*response.ActorResponse, error) {
	id, err := uuid.Parse(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor ID format %s: %w", actorID, err)
	}

	actor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get actor %s: %w", actorID, err)
	}
	if actor == nil {
		return nil, fmt.Errorf("actor %s not found", actorID)
	}

	resp := response.ActorToResponse(actor)
	return &resp, nil
}

func (s *actorService) CreateActor(ctx context.Context, req *request.ActorRequest) (*response.ActorResponse, error) {
	now := time.Now()
	actor := &entity.Actor{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.repo.Create(ctx, actor); err != nil {
		return nil, err
	}

	s.log.Info("Actor created", zap.String("actor_id", actor.ID.String()))
	resp := response.ActorToResponse(actor)
	return &resp, nil
}

func (s *actorService) UpdateActor(ctx context.Context, actorID string, req *request.ActorRequest) (*response.ActorResponse, error) {
	id, err := uuid.Parse(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor ID format %s: %w", actorID, err)
	}

	actor := &entity.Actor{
		Base:      entity.Base{ID: id, UpdatedAt: time.Now()},
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.repo.Update(ctx, actor); err != nil {
		return nil, err
	}

	resp := response.ActorToResponse(actor)
	return &resp, nil
}

func (s *actorService) DeleteActor(ctx context.Context, actorID string) error {
	id, err := uuid.Parse(actorID)
	if err != nil {
		return fmt.Errorf("invalid actor ID format %s: %w", actorID, err)
	}
	return s.repo.Delete(ctx, id)
}

// ==================== GENRES ====================

type GenreService interface {
	GetGenres(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.GenreResponse], error)
	GetGenreByID(ctx context.Context, genreID string) (*response.GenreResponse, error)
	CreateGenre(ctx context.Context, req *request.GenreRequest) (*response.GenreResponse, error)
	UpdateGenre(ctx context.Context, genreID string, req *request.GenreRequest) (*response.GenreResponse, error)
	DeleteGenre(ctx context.Context, genreID string) error
}

type genreService struct {
	repo repository.GenreRepository
	log  *zap.Logger
}

func NewGenreService(repo repository.GenreRepository, log *zap.Logger) GenreService {
	return &genreService{
		repo: repo,
		log:  log.With(zap.String("service", "genre")),
	}
}

func (s *genreService) GetGenres(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.GenreResponse], error) {
	genres, err := s.repo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count genres: %w", err)
	}

	out := make([]response.GenreResponse, len(genres))
	for i, g := range genres {
		out[i] = response.GenreToResponse(g)
	}
	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *genreService) GetGenreByID(ctx context.Context, genreID string) (*response.GenreResponse, error) {
	id, err := uuid.Parse(genreID)
	if err != nil {
		return nil, fmt.Errorf("invalid genre ID format %s: %w", genreID, err)
	}

	genre, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get genre %s: %w", genreID, err)
	}
	if genre == nil {
		return nil, fmt.Errorf("genre %s not found", genreID)
	}

	resp := response.GenreToResponse(genre)
	return &resp, nil
}

func (s *genreService) CreateGenre(ctx context.Context, req *request.GenreRequest) (*response.GenreResponse, error) {
	now := time.Now()
	genre := &entity.Genre{
		Base: entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name: req.Name,
	}
	if err := s.repo.Create(ctx, genre); err != nil {
		return nil, err
	}

	s.log.Info("Genre created", zap.String("genre_id", genre.ID.String()), zap.String("name", genre.Name))
	resp := response.GenreToResponse(genre)
	return &resp, nil
}

func (s *genreService) UpdateGenre(ctx context.Context, genreID string, req *request.GenreRequest) (*response.GenreResponse, error) {
	id, err := uuid.Parse(genreID)
	if err != nil {
		return nil, fmt.Errorf("invalid genre ID format %s: %w", genreID, err)
	}

	genre := &entity.Genre{
		Base: entity.Base{ID: id, UpdatedAt: time.Now()},
		Name: req.Name,
	}
	if err := s.repo.Update(ctx, genre); err != nil {
		return nil, err
	}

	resp := response.GenreToResponse(genre)
	return &resp, nil
}

func (s *genreService) DeleteGenre(ctx context.Context, genreID string) error {
	id, err := uuid.Parse(genreID)
	if err != nil {
		return fmt.Errorf("invalid genre ID format %s: %w", genreID, err)
	}
	return s.repo.Delete(ctx, id)
}
