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

type PlayService interface {
	GetPlays(ctx context.Context, req *request.PaginatedRequest, filter entity.PlayFilter) (*response.PaginatedResponse[response.PlayListResponse], error)
	GetPlayByID(ctx context.Context, playID string) (*response.PlayDetailResponse, error)
	CreatePlay(ctx context.Context, req *request.PlayRequest) (*response.PlayDetailResponse, error)
	UpdatePlay(ctx context.Context, playID string, req *request.PlayRequest) (*response.PlayDetailResponse, error)
	DeletePlay(ctx context.Context, playID string) error
}

type playService struct {
	repo  *repository.Repository
	cache availabilityStore
	log   *zap.Logger
}

func NewPlayService(repo *repository.Repository, availability *cache.AvailabilityCache, log *zap.Logger) PlayService {
	return &playService{
		repo:  repo,
		cache: availability,
		log:   log.With(zap.String("service", "play")),
	}
}

// loadPlay returns the play with genres and actors, nil when it does not exist.
func loadPlay(ctx context.Context, repo *repository.Repository, id uuid.UUID) (*entity.Play, error) {
	play, err := repo.Play.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get play %s: %w", id, err)
	}
	if play == nil {
		return nil, nil
	}
	if err := attachCast(ctx, repo, []*entity.Play{play}); err != nil {
		return nil, err
	}
	return play, nil
}

func attachCast(ctx context.Context, repo *repository.Repository, plays []*entity.Play) error {
	if len(plays) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(plays))
	for i, p := range plays {
		ids[i] = p.ID
	}

	genres, err := repo.Genre.FindByPlayIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load play genres: %w", err)
	}
	actors, err := repo.Actor.FindByPlayIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load play actors: %w", err)
	}

	for _, p := range plays {
		p.Genres = genres[p.ID]
		p.Actors = actors[p.ID]
	}
	return nil
}

func (s *playService) GetPlays(ctx context.Context, req *request.PaginatedRequest, filter entity.PlayFilter) (*response.PaginatedResponse[response.PlayListResponse], error) {
	plays, err := s.repo.Play.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get plays", zap.Error(err))
		return nil, fmt.Errorf("get plays: %w", err)
	}

	total, err := s.repo.Play.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count plays: %w", err)
	}

	if err := attachCast(ctx, s.repo, plays); err != nil {
		return nil, err
	}

	out := make([]response.PlayListResponse, len(plays))
	for i, p := range plays {
		out[i] = response.PlayToListResponse(p)
	}

	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *playService) GetPlayByID(ctx context.Context, playID string) (*response.PlayDetailResponse, error) {
	id, err := uuid.Parse(playID)
	if err != nil {
		return nil, fmt.Errorf("invalid play ID format %s: %w", playID, err)
	}

	play, err := loadPlay(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if play == nil {
		return nil, fmt.Errorf("play %s not found", playID)
	}

	resp := response.PlayToDetailResponse(play)
	return &resp, nil
}

// links parses and dedupes the genre and actor ids, then checks they all exist.
func (s *playService) links(ctx context.Context, req *request.PlayRequest) ([]uuid.UUID, []uuid.UUID, error) {
	genreIDs, err := dedupeIDs(req.Genres, "genre")
	if err != nil {
		return nil, nil, err
	}
	actorIDs, err := dedupeIDs(req.Actors, "actor")
	if err != nil {
		return nil, nil, err
	}

	if n, err := s.repo.Genre.CountByIDs(ctx, genreIDs); err != nil {
		return nil, nil, err
	} else if n != len(genreIDs) {
		return nil, nil, fmt.Errorf("genre not found: %d of %d genres exist", n, len(genreIDs))
	}
	if n, err := s.repo.Actor.CountByIDs(ctx, actorIDs); err != nil {
		return nil, nil, err
	} else if n != len(actorIDs) {
		return nil, nil, fmt.Errorf("actor not found: %d of %d actors exist", n, len(actorIDs))
	}

	return genreIDs, actorIDs, nil
}

func dedupeIDs(raw []string, kind string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid %s ID format %s: %w", kind, r, err)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *playService) CreatePlay(ctx context.Context, req *request.PlayRequest) (*response.PlayDetailResponse, error) {
	genreIDs, actorIDs, err := s.links(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	play := &entity.Play{
		Base:        entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.repo.Play.Create(ctx, play, genreIDs, actorIDs); err != nil {
		return nil, err
	}

	s.log.Info("Play created", zap.String("play_id", play.ID.String()), zap.String("title", play.Title))
	return s.GetPlayByID(ctx, play.ID.String())
}

func (s *playService) UpdatePlay(ctx context.Context, playID string, req *request.PlayRequest) (*response.PlayDetailResponse, error) {
	id, err := uuid.Parse(playID)
	if err != nil {
		return nil, fmt.Errorf("invalid play ID format %s: %w", playID, err)
	}

	genreIDs, actorIDs, err := s.links(ctx, req)
	if err != nil {
		return nil, err
	}

	play := &entity.Play{
		Base:        entity.Base{ID: id, UpdatedAt: time.Now()},
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.repo.Play.Update(ctx, play, genreIDs, actorIDs); err != nil {
		return nil, err
	}

	s.log.Info("Play updated", zap.String("play_id", playID))
	return s.GetPlayByID(ctx, playID)
}

func (s *playService) DeletePlay(ctx context.Context, playID string) error {
	id, err := uuid.Parse(playID)
	if err != nil {
		return fmt.Errorf("invalid play ID format %s: %w", playID, err)
	}

	performanceIDs, err := s.repo.Play.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.cache.Invalidate(context.WithoutCancel(ctx), performanceIDs...)

	s.log.Info("Play deleted",
		zap.String("play_id", playID),
		zap.Int("performances_removed", len(performanceIDs)),
	)
	return nil
}
