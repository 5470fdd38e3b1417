package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"theatre-booking/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestEngine(store *memStore) *BookingEngine {
	return NewBookingEngine(store, zap.NewNop())
}

func TestReserve_SellsSeatAndReducesAvailability(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)
	engine := newTestEngine(store)
	user := uuid.New()

	if got := store.available(perf); got != 100 {
		t.Fatalf("available before = %d, want 100", got)
	}

	res, err := engine.Reserve(context.Background(), user, []entity.SeatRequest{
		{PerformanceID: perf, Row: 3, Seat: 7},
	})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	if len(res.Tickets) != 1 {
		t.Fatalf("got %d tickets, want 1", len(res.Tickets))
	}
	tk := res.Tickets[0]
	if tk.Row != 3 || tk.Seat != 7 || tk.ReservationID != res.ID || tk.UserID != user {
		t.Errorf("unexpected ticket %+v", tk)
	}
	if res.CreatedAt.IsZero() {
		t.Error("reservation has no created_at")
	}
	if got := store.available(perf); got != 99 {
		t.Errorf("available after = %d, want 99", got)
	}
}

func TestReserve_RejectsWholeRequest(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)
	other := store.addPerformance(5, 5)
	store.sell(perf, 1, 1)

	tests := []struct {
		name      string
		seats     []entity.SeatRequest
		wantErr   error
		wantSeats []int // indexes of refused seats
	}{
		{
			name:    "empty request",
			seats:   nil,
			wantErr: ErrEmptyReservation,
		},
		{
			name:      "row beyond hall",
			seats:     []entity.SeatRequest{{PerformanceID: perf, Row: 11, Seat: 1}},
			wantErr:   ErrSeatOutOfRange,
			wantSeats: []int{0},
		},
		{
			name:      "seat zero",
			seats:     []entity.SeatRequest{{PerformanceID: perf, Row: 1, Seat: 0}},
			wantErr:   ErrSeatOutOfRange,
			wantSeats: []int{0},
		},
		{
			name:      "already sold",
			seats:     []entity.SeatRequest{{PerformanceID: perf, Row: 2, Seat: 2}, {PerformanceID: perf, Row: 1, Seat: 1}},
			wantErr:   ErrSeatAlreadyTaken,
			wantSeats: []int{1},
		},
		{
			name: "same seat twice",
			seats: []entity.SeatRequest{
				{PerformanceID: perf, Row: 4, Seat: 4},
				{PerformanceID: perf, Row: 4, Seat: 4},
			},
			wantErr:   ErrDuplicateSeatInRequest,
			wantSeats: []int{1},
		},
		{
			name: "every failure reported",
			seats: []entity.SeatRequest{
				{PerformanceID: perf, Row: 1, Seat: 1},
				{PerformanceID: other, Row: 6, Seat: 1},
				{PerformanceID: perf, Row: 5, Seat: 5},
			},
			wantErr:   ErrSeatAlreadyTaken,
			wantSeats: []int{0, 1},
		},
		{
			name: "unknown performance",
			seats: []entity.SeatRequest{
				{PerformanceID: perf, Row: 5, Seat: 5},
				{PerformanceID: uuid.New(), Row: 1, Seat: 1},
			},
			wantErr:   ErrUnknownPerformance,
			wantSeats: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(store)
			before := store.ticketCount()

			res, err := engine.Reserve(context.Background(), uuid.New(), tt.seats)
			if res != nil {
				t.Fatalf("expected no reservation, got %+v", res)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			failures := SeatErrorsOf(err)
			if len(failures) != len(tt.wantSeats) {
				t.Fatalf("got %d seat failures, want %d: %v", len(failures), len(tt.wantSeats), err)
			}
			for i, idx := range tt.wantSeats {
				if failures[i].Index != idx {
					t.Errorf("failure %d at index %d, want %d", i, failures[i].Index, idx)
				}
			}

			if after := store.ticketCount(); after != before {
				t.Errorf("tickets changed from %d to %d on a refused request", before, after)
			}
		})
	}
}

func TestReserve_OutOfRangeNamesField(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(2, 3)

	_, err := newTestEngine(store).Reserve(context.Background(), uuid.New(), []entity.SeatRequest{
		{PerformanceID: perf, Row: 0, Seat: 9},
		{PerformanceID: perf, Row: 2, Seat: 4},
	})

	failures := SeatErrorsOf(err)
	if len(failures) != 2 {
		t.Fatalf("got %d failures, want 2: %v", len(failures), err)
	}
	if f := failures[0].Field(); f != "row" {
		t.Errorf("first failure field = %q, want row", f)
	}
	if f := failures[1].Field(); f != "seat" {
		t.Errorf("second failure field = %q, want seat", f)
	}
}

func TestReserve_UniqueIndexBackstop(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)
	store.sell(perf, 5, 5)
	store.staleReads = true

	_, err := newTestEngine(store).Reserve(context.Background(), uuid.New(), []entity.SeatRequest{
		{PerformanceID: perf, Row: 1, Seat: 1},
		{PerformanceID: perf, Row: 5, Seat: 5},
	})

	if !errors.Is(err, ErrPersistenceConflict) {
		t.Fatalf("err = %v, want ErrPersistenceConflict", err)
	}
	if !errors.Is(err, ErrSeatAlreadyTaken) {
		t.Error("persistence conflict should also read as seat already taken")
	}
	if code := ErrorCode(err); code != "seat_already_taken" {
		t.Errorf("ErrorCode() = %q", code)
	}
	if failures := SeatErrorsOf(err); len(failures) != 1 || failures[0].Index != 1 {
		t.Errorf("unexpected failures %v", failures)
	}
	if got := store.available(perf); got != 99 {
		t.Errorf("available = %d, want 99 after rollback", got)
	}
}

func TestReserve_CancelledContextCommitsNothing(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(store).Reserve(ctx, uuid.New(), []entity.SeatRequest{{PerformanceID: perf, Row: 1, Seat: 1}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := store.available(perf); got != 100 {
		t.Errorf("available = %d, want 100", got)
	}
}

func TestReserve_LocksInIDOrder(t *testing.T) {
	store := newMemStore()
	a := store.addPerformance(5, 5)
	b := store.addPerformance(5, 5)
	c := store.addPerformance(5, 5)

	_, err := newTestEngine(store).Reserve(context.Background(), uuid.New(), []entity.SeatRequest{
		{PerformanceID: c, Row: 1, Seat: 1},
		{PerformanceID: a, Row: 1, Seat: 1},
		{PerformanceID: b, Row: 1, Seat: 1},
		{PerformanceID: a, Row: 1, Seat: 2},
	})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	if len(store.lockOrder) != 1 {
		t.Fatalf("got %d lock calls, want 1", len(store.lockOrder))
	}
	got := store.lockOrder[0]
	if len(got) != 3 {
		t.Fatalf("locked %d performances, want 3 distinct", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].String() >= got[i].String() {
			t.Errorf("lock order not ascending: %v", got)
		}
	}
}

func TestReserve_ConcurrentSameSeat(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)
	engine := newTestEngine(store)

	const buyers = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     int
		refused int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Reserve(context.Background(), uuid.New(), []entity.SeatRequest{
				{PerformanceID: perf, Row: 7, Seat: 7},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, ErrSeatAlreadyTaken):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if won != 1 || refused != buyers-1 {
		t.Errorf("won=%d refused=%d, want 1 and %d", won, refused, buyers-1)
	}
	if got := store.available(perf); got != 99 {
		t.Errorf("available = %d, want 99", got)
	}
}

func TestReserve_ConcurrentDistinctSeatsAllSucceed(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(4, 5)
	engine := newTestEngine(store)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for row := 1; row <= 4; row++ {
		for seat := 1; seat <= 5; seat++ {
			wg.Add(1)
			go func(row, seat int) {
				defer wg.Done()
				_, err := engine.Reserve(context.Background(), uuid.New(), []entity.SeatRequest{
					{PerformanceID: perf, Row: row, Seat: seat},
				})
				errs <- err
			}(row, seat)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if got := store.available(perf); got != 0 {
		t.Errorf("available = %d, want 0", got)
	}
}

func TestAddTicket(t *testing.T) {
	store := newMemStore()
	perf := store.addPerformance(10, 10)
	engine := newTestEngine(store)
	owner := uuid.New()

	res, err := engine.Reserve(context.Background(), owner, []entity.SeatRequest{{PerformanceID: perf, Row: 1, Seat: 1}})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	t.Run("adds to own reservation", func(t *testing.T) {
		tk, err := engine.AddTicket(context.Background(), owner, res.ID, entity.SeatRequest{PerformanceID: perf, Row: 1, Seat: 2})
		if err != nil {
			t.Fatalf("AddTicket() error = %v", err)
		}
		if tk.ReservationID != res.ID {
			t.Errorf("ticket attached to %s, want %s", tk.ReservationID, res.ID)
		}
		if got := store.available(perf); got != 98 {
			t.Errorf("available = %d, want 98", got)
		}
	})

	t.Run("taken seat", func(t *testing.T) {
		_, err := engine.AddTicket(context.Background(), owner, res.ID, entity.SeatRequest{PerformanceID: perf, Row: 1, Seat: 1})
		if !errors.Is(err, ErrSeatAlreadyTaken) {
			t.Errorf("err = %v, want ErrSeatAlreadyTaken", err)
		}
	})

	t.Run("someone else's reservation", func(t *testing.T) {
		_, err := engine.AddTicket(context.Background(), uuid.New(), res.ID, entity.SeatRequest{PerformanceID: perf, Row: 9, Seat: 9})
		if !errors.Is(err, ErrReservationNotFound) {
			t.Errorf("err = %v, want ErrReservationNotFound", err)
		}
	})

	t.Run("unknown performance", func(t *testing.T) {
		_, err := engine.AddTicket(context.Background(), owner, res.ID, entity.SeatRequest{PerformanceID: uuid.New(), Row: 1, Seat: 1})
		if !errors.Is(err, ErrUnknownPerformance) {
			t.Errorf("err = %v, want ErrUnknownPerformance", err)
		}
	})
}
