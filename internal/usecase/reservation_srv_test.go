package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"theatre-booking/internal/data/entity"
	"theatre-booking/internal/data/repository"
	"theatre-booking/internal/dto/request"
	"theatre-booking/pkg/queue"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Only the methods the reservation service touches are implemented; the
// embedded interfaces are nil and panic if anything else is called.

type fakePerformanceRepo struct {
	repository.PerformanceRepository
	summaries map[uuid.UUID]*entity.PerformanceSummary
}

func (f *fakePerformanceRepo) FindSummariesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.PerformanceSummary, error) {
	out := map[uuid.UUID]*entity.PerformanceSummary{}
	for _, id := range ids {
		if s, ok := f.summaries[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeReservationRepo struct {
	repository.ReservationRepository
	store *memStore
}

func (f *fakeReservationRepo) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Reservation, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	r, ok := f.store.reservations[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	return &r, nil
}

type fakeTicketRepo struct {
	repository.TicketRepository
	store *memStore
}

func (f *fakeTicketRepo) FindByReservationIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]entity.Ticket, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	wanted := map[uuid.UUID]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	out := map[uuid.UUID][]entity.Ticket{}
	for _, t := range f.store.tickets {
		if wanted[t.ReservationID] {
			out[t.ReservationID] = append(out[t.ReservationID], t)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	repository.UserRepository
}

func (fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return &entity.User{Base: entity.Base{ID: id}, Username: "alice"}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationCreatedEvent
	err    error
}

func (p *recordingPublisher) PublishReservationCreated(ctx context.Context, event queue.ReservationCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestReservationService(store *memStore, perf uuid.UUID, pub queue.Publisher) ReservationService {
	repo := &repository.Repository{
		User: fakeUserRepo{},
		Performance: &fakePerformanceRepo{summaries: map[uuid.UUID]*entity.PerformanceSummary{
			perf: {
				Performance:      entity.Performance{Base: entity.Base{ID: perf}, ShowTime: time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)},
				PlayTitle:        "Hamlet",
				TheatreHallName:  "Blue",
				HallNumSeats:     100,
				TicketsAvailable: 99,
			},
		}},
		Reservation: &fakeReservationRepo{store: store},
		Ticket:      &fakeTicketRepo{store: store},
		Booking:     store,
	}
	log := zap.NewNop()
	return NewReservationService(repo, NewBookingEngine(store, log), nil, pub, log)
}

func TestReservationService_CreateReservation(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)
	pub := &recordingPublisher{}
	svc := newTestReservationService(store, perf, pub)
	user := uuid.New()

	resp, err := svc.CreateReservation(context.Background(), user, &request.ReservationRequest{
		Tickets: []request.TicketRequest{{PerformanceID: perf.String(), Row: 2, Seat: 3}},
	})
	if err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}

	if len(resp.Tickets) != 1 {
		t.Fatalf("got %d tickets, want 1", len(resp.Tickets))
	}
	if resp.Tickets[0].Performance == nil || resp.Tickets[0].Performance.PlayTitle != "Hamlet" {
		t.Errorf("ticket performance not attached: %+v", resp.Tickets[0])
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.UserID != user || len(ev.Tickets) != 1 || ev.Tickets[0].Row != 2 || ev.Tickets[0].Seat != 3 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestReservationService_PublishFailureKeepsReservation(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)
	svc := newTestReservationService(store, perf, &recordingPublisher{err: errors.New("broker down")})

	_, err := svc.CreateReservation(context.Background(), uuid.New(), &request.ReservationRequest{
		Tickets: []request.TicketRequest{{PerformanceID: perf.String(), Row: 1, Seat: 1}},
	})
	if err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}
	if got := store.available(perf); got != 99 {
		t.Errorf("available = %d, want 99", got)
	}
}

func TestReservationService_RejectionPublishesNothing(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)
	store.sell(perf, 1, 1)
	pub := &recordingPublisher{}
	svc := newTestReservationService(store, perf, pub)

	_, err := svc.CreateReservation(context.Background(), uuid.New(), &request.ReservationRequest{
		Tickets: []request.TicketRequest{{PerformanceID: perf.String(), Row: 1, Seat: 1}},
	})
	if !errors.Is(err, ErrSeatAlreadyTaken) {
		t.Fatalf("err = %v, want ErrSeatAlreadyTaken", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("published %d events for a refused request", len(pub.events))
	}
}

func TestReservationService_InvalidPerformanceID(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)
	svc := newTestReservationService(store, perf, nil)

	_, err := svc.CreateReservation(context.Background(), uuid.New(), &request.ReservationRequest{
		Tickets: []request.TicketRequest{{PerformanceID: "not-a-uuid", Row: 1, Seat: 1}},
	})
	if err == nil {
		t.Fatal("expected an error for a malformed performance id")
	}
}

func TestReservationService_RenderTicketsPDF(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)
	svc := newTestReservationService(store, perf, nil)
	owner := uuid.New()

	created, err := svc.CreateReservation(context.Background(), owner, &request.ReservationRequest{
		Tickets: []request.TicketRequest{
			{PerformanceID: perf.String(), Row: 1, Seat: 1},
			{PerformanceID: perf.String(), Row: 1, Seat: 2},
		},
	})
	if err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}

	pdf, err := svc.RenderTicketsPDF(context.Background(), owner, created.ID)
	if err != nil {
		t.Fatalf("RenderTicketsPDF() error = %v", err)
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		t.Errorf("output is not a PDF")
	}

	_, err = svc.RenderTicketsPDF(context.Background(), uuid.New(), created.ID)
	if !errors.Is(err, ErrReservationNotFound) {
		t.Errorf("stranger got err = %v, want ErrReservationNotFound", err)
	}
}
