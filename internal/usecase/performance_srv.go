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

type PerformanceService interface {
	GetPerformances(ctx context.Context, req *request.PaginatedRequest, filter entity.PerformanceFilter) (*response.PaginatedResponse[response.PerformanceListResponse], error)
	GetPerformanceByID(ctx context.Context, performanceID string) (*response.PerformanceDetailResponse, error)

	CreatePerformance(ctx context.Context, req *request.PerformanceRequest) (*response.PerformanceResponse, error)
	UpdatePerformance(ctx context.Context, performanceID string, req *request.PerformanceRequest) (*response.PerformanceResponse, error)
	DeletePerformance(ctx context.Context, performanceID string) error
}

type performanceService struct {
	repo  *repository.Repository
	cache availabilityStore
	log   *zap.Logger
}

func NewPerformanceService(repo *repository.Repository, availability *cache.AvailabilityCache, log *zap.Logger) PerformanceService {
	return &performanceService{
		repo:  repo,
		cache: availability,
		log:   log.With(zap.String("service", "performance")),
	}
}

func (s *performanceService) GetPerformances(ctx context.Context, req *request.PaginatedRequest, filter entity.PerformanceFilter) (*response.PaginatedResponse[response.PerformanceListResponse], error) {
	list, err := s.repo.Performance.FindSummaries(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get performances", zap.Error(err), zap.Int("page", req.Page))
		return nil, fmt.Errorf("get performances: %w", err)
	}

	total, err := s.repo.Performance.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count performances: %w", err)
	}

	out := make([]response.PerformanceListResponse, len(list))
	for i, p := range list {
		out[i] = response.PerformanceSummaryToResponse(p)
	}

	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

// availabilityView is the cached part of a performance detail. The play is not
// in it, so catalog edits never wait on a cache entry to expire.
type availabilityView struct {
	ID               uuid.UUID                     `json:"id"`
	PlayID           uuid.UUID                     `json:"play_id"`
	ShowTime         time.Time                     `json:"show_time"`
	TheatreHall      response.TheatreHallResponse  `json:"theatre_hall"`
	TakenPlaces      []response.TakenPlaceResponse `json:"taken_places"`
	TicketsAvailable int                           `json:"tickets_available"`
}

// availability returns nil when the performance does not exist. tickets_available
// and taken_places come from the same read of sold seats.
func (s *performanceService) availability(ctx context.Context, id uuid.UUID) (*availabilityView, error) {
	var view availabilityView
	hit, version := s.cache.Get(ctx, id, &view)
	if hit {
		return &view, nil
	}

	ph, err := s.repo.Performance.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get performance %s: %w", id, err)
	}
	if ph == nil {
		return nil, nil
	}

	taken, err := s.repo.Performance.TakenSeats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get taken seats: %w", err)
	}

	view = availabilityView{
		ID:               ph.ID,
		PlayID:           ph.PlayID,
		ShowTime:         ph.ShowTime,
		TheatreHall:      response.TheatreHallToResponse(&ph.Hall),
		TakenPlaces:      response.TakenPlacesToResponse(taken),
		TicketsAvailable: ph.Hall.NumSeats() - len(taken),
	}

	s.cache.Set(ctx, id, version, view)
	return &view, nil
}

func (s *performanceService) GetPerformanceByID(ctx context.Context, performanceID string) (*response.PerformanceDetailResponse, error) {
	id, err := uuid.Parse(performanceID)
	if err != nil {
		return nil, fmt.Errorf("invalid performance ID format %s: %w", performanceID, err)
	}

	view, err := s.availability(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, fmt.Errorf("performance %s not found", performanceID)
	}

	play, err := loadPlay(ctx, s.repo, view.PlayID)
	if err != nil {
		return nil, err
	}
	if play == nil {
		return nil, fmt.Errorf("play %s not found", view.PlayID)
	}

	return &response.PerformanceDetailResponse{
		ID:               view.ID.String(),
		ShowTime:         view.ShowTime,
		Play:             response.PlayToDetailResponse(play),
		TheatreHall:      view.TheatreHall,
		TakenPlaces:      view.TakenPlaces,
		TicketsAvailable: view.TicketsAvailable,
	}, nil
}

// resolve checks the referenced play and hall exist.
func (s *performanceService) resolve(ctx context.Context, req *request.PerformanceRequest) (uuid.UUID, uuid.UUID, error) {
	playID, err := uuid.Parse(req.Play)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid play ID format %s: %w", req.Play, err)
	}
	hallID, err := uuid.Parse(req.TheatreHall)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid theatre hall ID format %s: %w", req.TheatreHall, err)
	}

	play, err := s.repo.Play.FindByID(ctx, playID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("get play: %w", err)
	}
	if play == nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("play %s not found", req.Play)
	}

	hall, err := s.repo.TheatreHall.FindByID(ctx, hallID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("get theatre hall: %w", err)
	}
	if hall == nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("theatre hall %s not found", req.TheatreHall)
	}

	return playID, hallID, nil
}

func (s *performanceService) CreatePerformance(ctx context.Context, req *request.PerformanceRequest) (*response.PerformanceResponse, error) {
	playID, hallID, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &entity.Performance{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		PlayID:        playID,
		TheatreHallID: hallID,
		ShowTime:      req.ShowTime,
	}
	if err := s.repo.Performance.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create performance: %w", err)
	}

	s.log.Info("Performance created", zap.String("performance_id", p.ID.String()))
	resp := response.PerformanceToResponse(p)
	return &resp, nil
}

// UpdatePerformance refuses to move a performance with sold tickets to another hall,
// since the sold seats were validated against the current one. The repository
// checks this under the same row lock bookings take.
func (s *performanceService) UpdatePerformance(ctx context.Context, performanceID string, req *request.PerformanceRequest) (*response.PerformanceResponse, error) {
	id, err := uuid.Parse(performanceID)
	if err != nil {
		return nil, fmt.Errorf("invalid performance ID format %s: %w", performanceID, err)
	}

	existing, err := s.repo.Performance.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get performance: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("performance %s not found", performanceID)
	}

	playID, hallID, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	p := &existing.Performance
	p.PlayID = playID
	p.TheatreHallID = hallID
	p.ShowTime = req.ShowTime
	p.UpdatedAt = time.Now()

	if err := s.repo.Performance.Update(ctx, p); err != nil {
		return nil, err
	}
	s.cache.Invalidate(context.WithoutCancel(ctx), id)

	s.log.Info("Performance updated", zap.String("performance_id", performanceID))
	resp := response.PerformanceToResponse(p)
	return &resp, nil
}

func (s *performanceService) DeletePerformance(ctx context.Context, performanceID string) error {
	id, err := uuid.Parse(performanceID)
	if err != nil {
		return fmt.Errorf("invalid performance ID format %s: %w", performanceID, err)
	}

	if err := s.repo.Performance.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(context.WithoutCancel(ctx), id)

	s.log.Info("Performance deleted", zap.String("performance_id", performanceID))
	return nil
}
