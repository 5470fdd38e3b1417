package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"theatre-booking/internal/data/entity"
	"theatre-booking/internal/data/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is an in-memory BookingStore. One mutex serializes transactions the
// way the performance row locks do; writes are buffered until commit.
type memStore struct {
	mu           sync.Mutex
	performances map[uuid.UUID]*entity.PerformanceHall
	tickets      map[entity.SeatKey]entity.Ticket
	reservations map[uuid.UUID]entity.Reservation

	// staleReads makes TakenSeats return nothing, leaving only the unique index.
	staleReads bool
	lockOrder  [][]uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		performances: map[uuid.UUID]*entity.PerformanceHall{},
		tickets:      map[entity.SeatKey]entity.Ticket{},
		reservations: map[uuid.UUID]entity.Reservation{},
	}
}

func (m *memStore) addPerformance(rows, seats int) uuid.UUID {
	id := uuid.New()
	m.performances[id] = &entity.PerformanceHall{
		Performance: entity.Performance{
			Base:          entity.Base{ID: id},
			TheatreHallID: uuid.New(),
			ShowTime:      time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC),
		},
		Hall: entity.TheatreHall{Base: entity.Base{ID: uuid.New()}, Name: "Blue", Rows: rows, SeatsInRows: seats},
	}
	return id
}

// sell places a ticket directly, as an earlier committed booking would have.
func (m *memStore) sell(performanceID uuid.UUID, row, seat int) {
	key := entity.SeatKey{PerformanceID: performanceID, SeatCoord: entity.SeatCoord{Row: row, Seat: seat}}
	m.tickets[key] = entity.Ticket{ID: uuid.New(), PerformanceID: performanceID, Row: row, Seat: seat}
}

func (m *memStore) available(performanceID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sold := 0
	for k := range m.tickets {
		if k.PerformanceID == performanceID {
			sold++
		}
	}
	return m.performances[performanceID].Hall.NumSeats() - sold
}

func (m *memStore) ticketCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}

func (m *memStore) InTx(ctx context.Context, fn func(tx repository.BookingTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{store: m, tickets: map[entity.SeatKey]entity.Ticket{}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for k, t := range tx.tickets {
		m.tickets[k] = t
	}
	for _, r := range tx.reservations {
		m.reservations[r.ID] = r
	}
	return nil
}

type memTx struct {
	store        *memStore
	tickets      map[entity.SeatKey]entity.Ticket
	reservations []entity.Reservation
}

func (t *memTx) LockPerformances(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.PerformanceHall, error) {
	sorted := repository.SortUUIDs(ids)
	t.store.lockOrder = append(t.store.lockOrder, sorted)

	out := map[uuid.UUID]*entity.PerformanceHall{}
	for _, id := range sorted {
		if ph, ok := t.store.performances[id]; ok {
			out[id] = ph
		}
	}
	return out, nil
}

func (t *memTx) TakenSeats(ctx context.Context, performanceIDs []uuid.UUID) (map[entity.SeatKey]struct{}, error) {
	taken := map[entity.SeatKey]struct{}{}
	if t.store.staleReads {
		return taken, nil
	}
	wanted := map[uuid.UUID]bool{}
	for _, id := range performanceIDs {
		wanted[id] = true
	}
	for k := range t.store.tickets {
		if wanted[k.PerformanceID] {
			taken[k] = struct{}{}
		}
	}
	return taken, nil
}

func (t *memTx) LockReservation(ctx context.Context, id, userID uuid.UUID) (*entity.Reservation, error) {
	r, ok := t.store.reservations[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	return &r, nil
}

func (t *memTx) CreateReservation(ctx context.Context, userID uuid.UUID) (*entity.Reservation, error) {
	r := entity.Reservation{UserID: userID}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	t.reservations = append(t.reservations, r)
	return &r, nil
}

func (t *memTx) CreateTicket(ctx context.Context, ticket *entity.Ticket) error {
	key := entity.SeatKey{PerformanceID: ticket.PerformanceID, SeatCoord: ticket.Coord()}
	_, committed := t.store.tickets[key]
	_, pending := t.tickets[key]
	if committed || pending {
		return fmt.Errorf("create ticket: %w", &pgconn.PgError{Code: "23505", ConstraintName: "tickets_performance_row_seat_key"})
	}
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	t.tickets[key] = *ticket
	return nil
}
