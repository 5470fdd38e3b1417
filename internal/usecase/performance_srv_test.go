package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"theatre-booking/internal/data/entity"
	"theatre-booking/internal/data/repository"
	"theatre-booking/internal/dto/request"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubPerformanceRepo struct {
	repository.PerformanceRepository
	performances map[uuid.UUID]*entity.PerformanceHall
	taken        map[uuid.UUID][]entity.SeatCoord
	byHall       map[uuid.UUID][]uuid.UUID
	updateErr    error
	updated      *entity.Performance
	reads        int
	afterWrite   func()
}

func (f *stubPerformanceRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.PerformanceHall, error) {
	f.reads++
	ph, ok := f.performances[id]
	if !ok {
		return nil, nil
	}
	cp := *ph
	return &cp, nil
}

func (f *stubPerformanceRepo) TakenSeats(ctx context.Context, id uuid.UUID) ([]entity.SeatCoord, error) {
	return append([]entity.SeatCoord{}, f.taken[id]...), nil
}

func (f *stubPerformanceRepo) Update(ctx context.Context, p *entity.Performance) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = p
	if f.afterWrite != nil {
		f.afterWrite()
	}
	return nil
}

func (f *stubPerformanceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.afterWrite != nil {
		f.afterWrite()
	}
	delete(f.performances, id)
	return nil
}

func (f *stubPerformanceRepo) IDsByTheatreHall(ctx context.Context, hallID uuid.UUID) ([]uuid.UUID, error) {
	return f.byHall[hallID], nil
}

type stubPlayRepo struct {
	repository.PlayRepository
	plays map[uuid.UUID]*entity.Play
}

func (f *stubPlayRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Play, error) {
	p, ok := f.plays[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type stubGenreRepo struct{ repository.GenreRepository }

func (stubGenreRepo) FindByPlayIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]entity.Genre, error) {
	return map[uuid.UUID][]entity.Genre{}, nil
}

type stubActorRepo struct{ repository.ActorRepository }

func (stubActorRepo) FindByPlayIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]entity.Actor, error) {
	return map[uuid.UUID][]entity.Actor{}, nil
}

type stubHallRepo struct {
	repository.TheatreHallRepository
	halls      map[uuid.UUID]*entity.TheatreHall
	updateErr  error
	afterWrite func()
}

func (f *stubHallRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.TheatreHall, error) {
	h, ok := f.halls[id]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (f *stubHallRepo) Update(ctx context.Context, hall *entity.TheatreHall) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.halls[hall.ID] = hall
	if f.afterWrite != nil {
		f.afterWrite()
	}
	return nil
}

// catalogFixture is one 10x10 hall with one performance of one play.
type catalogFixture struct {
	repo   *repository.Repository
	perfs  *stubPerformanceRepo
	halls  *stubHallRepo
	perfID uuid.UUID
	hallID uuid.UUID
	playID uuid.UUID
}

func newCatalogFixture() *catalogFixture {
	hall := &entity.TheatreHall{Base: entity.Base{ID: uuid.New()}, Name: "Blue", Rows: 10, SeatsInRows: 10}
	play := &entity.Play{Base: entity.Base{ID: uuid.New()}, Title: "Hamlet"}
	perf := &entity.PerformanceHall{
		Performance: entity.Performance{
			Base:          entity.Base{ID: uuid.New()},
			PlayID:        play.ID,
			TheatreHallID: hall.ID,
			ShowTime:      time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC),
		},
		Hall: *hall,
	}

	perfs := &stubPerformanceRepo{
		performances: map[uuid.UUID]*entity.PerformanceHall{perf.ID: perf},
		taken:        map[uuid.UUID][]entity.SeatCoord{},
		byHall:       map[uuid.UUID][]uuid.UUID{hall.ID: {perf.ID}},
	}
	halls := &stubHallRepo{halls: map[uuid.UUID]*entity.TheatreHall{hall.ID: hall}}

	return &catalogFixture{
		repo: &repository.Repository{
			Performance: perfs,
			TheatreHall: halls,
			Play:        &stubPlayRepo{plays: map[uuid.UUID]*entity.Play{play.ID: play}},
			Genre:       stubGenreRepo{},
			Actor:       stubActorRepo{},
		},
		perfs:  perfs,
		halls:  halls,
		perfID: perf.ID,
		hallID: hall.ID,
		playID: play.ID,
	}
}

func TestGetPerformanceByID(t *testing.T) {
	tests := []struct {
		name          string
		taken         []entity.SeatCoord
		wantAvailable int
	}{
		{"empty hall", nil, 100},
		{"one sold", []entity.SeatCoord{{Row: 1, Seat: 1}}, 99},
		{"corner seats sold", []entity.SeatCoord{{Row: 1, Seat: 1}, {Row: 10, Seat: 10}, {Row: 5, Seat: 6}}, 97},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newCatalogFixture()
			fx.perfs.taken[fx.perfID] = tt.taken
			svc := NewPerformanceService(fx.repo, nil, zap.NewNop())

			detail, err := svc.GetPerformanceByID(context.Background(), fx.perfID.String())
			if err != nil {
				t.Fatalf("GetPerformanceByID() error = %v", err)
			}
			if detail.TicketsAvailable != tt.wantAvailable {
				t.Errorf("tickets_available = %d, want %d", detail.TicketsAvailable, tt.wantAvailable)
			}
			if len(detail.TakenPlaces) != len(tt.taken) {
				t.Fatalf("got %d taken places, want %d", len(detail.TakenPlaces), len(tt.taken))
			}
			for i, c := range tt.taken {
				if detail.TakenPlaces[i].Row != c.Row || detail.TakenPlaces[i].Seat != c.Seat {
					t.Errorf("taken place %d = %+v, want %+v", i, detail.TakenPlaces[i], c)
				}
			}
			if detail.Play.Title != "Hamlet" || detail.TheatreHall.NumSeats != 100 {
				t.Errorf("unexpected play %q / hall seats %d", detail.Play.Title, detail.TheatreHall.NumSeats)
			}
		})
	}
}

func TestGetPerformanceByID_Errors(t *testing.T) {
	fx := newCatalogFixture()
	svc := NewPerformanceService(fx.repo, nil, zap.NewNop())

	tests := []struct {
		name    string
		id      string
		wantMsg string
	}{
		{"malformed id", "nope", "invalid performance ID format"},
		{"unknown performance", uuid.NewString(), "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetPerformanceByID(context.Background(), tt.id)
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestGetPerformanceByID_WithoutCacheReadsEveryTime(t *testing.T) {
	fx := newCatalogFixture()
	svc := NewPerformanceService(fx.repo, nil, zap.NewNop())
	ctx := context.Background()

	first, err := svc.GetPerformanceByID(ctx, fx.perfID.String())
	if err != nil {
		t.Fatal(err)
	}
	fx.perfs.taken[fx.perfID] = []entity.SeatCoord{{Row: 2, Seat: 3}}

	second, err := svc.GetPerformanceByID(ctx, fx.perfID.String())
	if err != nil {
		t.Fatal(err)
	}

	if first.TicketsAvailable != 100 || second.TicketsAvailable != 99 {
		t.Errorf("available went %d -> %d, want 100 -> 99", first.TicketsAvailable, second.TicketsAvailable)
	}
	if fx.perfs.reads != 2 {
		t.Errorf("repository read %d times, want 2", fx.perfs.reads)
	}
}

func TestUpdatePerformance(t *testing.T) {
	tests := []struct {
		name      string
		updateErr error
		wantErr   error
	}{
		{"hall change with tickets refused", repository.ErrHallChangeWithTickets, repository.ErrHallChangeWithTickets},
		{"accepted", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newCatalogFixture()
			otherHall := &entity.TheatreHall{Base: entity.Base{ID: uuid.New()}, Name: "Red", Rows: 5, SeatsInRows: 5}
			fx.halls.halls[otherHall.ID] = otherHall
			fx.perfs.updateErr = tt.updateErr
			svc := NewPerformanceService(fx.repo, nil, zap.NewNop())

			_, err := svc.UpdatePerformance(context.Background(), fx.perfID.String(), &request.PerformanceRequest{
				Play:        fx.playID.String(),
				TheatreHall: otherHall.ID.String(),
				ShowTime:    time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC),
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if !strings.HasPrefix(err.Error(), "invalid theatre hall change") {
					t.Errorf("message %q is not a client error", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdatePerformance() error = %v", err)
			}
			if fx.perfs.updated == nil || fx.perfs.updated.TheatreHallID != otherHall.ID {
				t.Errorf("performance not moved: %+v", fx.perfs.updated)
			}
		})
	}
}

func TestUpdateTheatreHall(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		seats     int
		updateErr error
		wantMsg   string
	}{
		{"grow", 12, 12, nil, ""},
		{"shrink below sold seat", 8, 10, &repository.HallTooSmallError{MaxRow: 10, MaxSeat: 4}, "invalid hall size: sold tickets reach row 10 seat 4"},
		{"unknown hall", 5, 5, errors.New("theatre hall x not found"), "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newCatalogFixture()
			fx.halls.updateErr = tt.updateErr
			svc := NewTheatreHallService(fx.repo, nil, zap.NewNop())

			resp, err := svc.UpdateTheatreHall(context.Background(), fx.hallID.String(), &request.TheatreHallRequest{
				Name: "Blue", Rows: tt.rows, SeatsInRows: tt.seats,
			})

			if tt.wantMsg != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
					t.Fatalf("err = %v, want %q", err, tt.wantMsg)
				}
				if got := fx.halls.halls[fx.hallID]; got.Rows != 10 {
					t.Errorf("hall resized to %d rows despite refusal", got.Rows)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateTheatreHall() error = %v", err)
			}
			if resp.NumSeats != tt.rows*tt.seats {
				t.Errorf("num_seats = %d, want %d", resp.NumSeats, tt.rows*tt.seats)
			}
		})
	}
}

// recordingCache remembers whether each invalidation arrived on a live context.
type recordingCache struct {
	invalidated []uuid.UUID
	ctxErrs     []error
}

func (c *recordingCache) Get(context.Context, uuid.UUID, any) (bool, int64) { return false, 0 }

func (c *recordingCache) Set(context.Context, uuid.UUID, int64, any) {}

func (c *recordingCache) Invalidate(ctx context.Context, performanceIDs ...uuid.UUID) {
	c.invalidated = append(c.invalidated, performanceIDs...)
	c.ctxErrs = append(c.ctxErrs, ctx.Err())
}

func TestInvalidationSurvivesClientDisconnect(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, fx *catalogFixture, rc *recordingCache) error
	}{
		{
			name: "performance update",
			run: func(ctx context.Context, fx *catalogFixture, rc *recordingCache) error {
				svc := &performanceService{repo: fx.repo, cache: rc, log: zap.NewNop()}
				_, err := svc.UpdatePerformance(ctx, fx.perfID.String(), &request.PerformanceRequest{
					Play:        fx.playID.String(),
					TheatreHall: fx.hallID.String(),
					ShowTime:    time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC),
				})
				return err
			},
		},
		{
			name: "performance delete",
			run: func(ctx context.Context, fx *catalogFixture, rc *recordingCache) error {
				svc := &performanceService{repo: fx.repo, cache: rc, log: zap.NewNop()}
				return svc.DeletePerformance(ctx, fx.perfID.String())
			},
		},
		{
			name: "theatre hall resize",
			run: func(ctx context.Context, fx *catalogFixture, rc *recordingCache) error {
				svc := &theatreHallService{repo: fx.repo, cache: rc, log: zap.NewNop()}
				_, err := svc.UpdateTheatreHall(ctx, fx.hallID.String(), &request.TheatreHallRequest{
					Name: "Blue", Rows: 12, SeatsInRows: 12,
				})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newCatalogFixture()
			rc := &recordingCache{}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			// the client goes away right after the write is committed
			fx.perfs.afterWrite = cancel
			fx.halls.afterWrite = cancel

			if err := tt.run(ctx, fx, rc); err != nil {
				t.Fatalf("run error = %v", err)
			}
			if ctx.Err() == nil {
				t.Fatal("request context was not cancelled")
			}
			if len(rc.invalidated) != 1 || rc.invalidated[0] != fx.perfID {
				t.Fatalf("invalidated = %v, want [%s]", rc.invalidated, fx.perfID)
			}
			for _, err := range rc.ctxErrs {
				if err != nil {
					t.Errorf("invalidation ran on a cancelled context: %v", err)
				}
			}
		})
	}
}
