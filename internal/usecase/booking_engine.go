package usecase

import (
	"context"
	"errors"
	"fmt"

	"theatre-booking/internal/data/entity"
	"theatre-booking/internal/data/repository"
	"theatre-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingEngine sells seats. Every decision it makes is taken inside one
// transaction that holds the row locks of the performances involved, and the
// unique (performance, row, seat) index backs it up.
type BookingEngine struct {
	store repository.BookingStore
	log   *zap.Logger
}

func NewBookingEngine(store repository.BookingStore, log *zap.Logger) *BookingEngine {
	return &BookingEngine{
		store: store,
		log:   log.With(zap.String("service", "booking_engine")),
	}
}

// Reserve creates a reservation with one ticket per requested seat, or nothing.
func (e *BookingEngine) Reserve(ctx context.Context, userID uuid.UUID, seats []entity.SeatRequest) (*entity.Reservation, error) {
	if len(seats) == 0 {
		return nil, ErrEmptyReservation
	}

	var created *entity.Reservation
	err := e.store.InTx(ctx, func(tx repository.BookingTx) error {
		if err := checkSeats(ctx, tx, seats); err != nil {
			return err
		}

		res, err := tx.CreateReservation(ctx, userID)
		if err != nil {
			return err
		}

		for i, s := range seats {
			ticket := entity.Ticket{
				Row:           s.Row,
				Seat:          s.Seat,
				PerformanceID: s.PerformanceID,
				ReservationID: res.ID,
				UserID:        userID,
			}
			if err := tx.CreateTicket(ctx, &ticket); err != nil {
				return conflictOr(err, i, s)
			}
			res.Tickets = append(res.Tickets, ticket)
		}

		created = res
		return nil
	})
	if err != nil {
		return nil, e.classify(err, userID)
	}

	e.log.Info("Reservation created",
		zap.String("reservation_id", created.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("tickets", len(created.Tickets)),
	)
	return created, nil
}

// AddTicket sells one more seat into an existing reservation of the user.
func (e *BookingEngine) AddTicket(ctx context.Context, userID, reservationID uuid.UUID, seat entity.SeatRequest) (*entity.Ticket, error) {
	var created *entity.Ticket
	err := e.store.InTx(ctx, func(tx repository.BookingTx) error {
		res, err := tx.LockReservation(ctx, reservationID, userID)
		if err != nil {
			return err
		}
		if res == nil {
			return ErrReservationNotFound
		}

		if err := checkSeats(ctx, tx, []entity.SeatRequest{seat}); err != nil {
			return err
		}

		ticket := entity.Ticket{
			Row:           seat.Row,
			Seat:          seat.Seat,
			PerformanceID: seat.PerformanceID,
			ReservationID: res.ID,
			UserID:        userID,
		}
		if err := tx.CreateTicket(ctx, &ticket); err != nil {
			return conflictOr(err, 0, seat)
		}

		created = &ticket
		return nil
	})
	if err != nil {
		return nil, e.classify(err, userID)
	}

	e.log.Info("Ticket added",
		zap.String("reservation_id", reservationID.String()),
		zap.String("ticket_id", created.ID.String()),
	)
	return created, nil
}

// checkSeats locks every performance of the request, then validates each seat
// in input order. Seat-level failures are collected; an unknown performance
// aborts at once.
func checkSeats(ctx context.Context, tx repository.BookingTx, seats []entity.SeatRequest) error {
	ids := make([]uuid.UUID, 0, len(seats))
	seenPerf := make(map[uuid.UUID]bool, len(seats))
	for _, s := range seats {
		if !seenPerf[s.PerformanceID] {
			seenPerf[s.PerformanceID] = true
			ids = append(ids, s.PerformanceID)
		}
	}

	locked, err := tx.LockPerformances(ctx, ids)
	if err != nil {
		return err
	}
	for i, s := range seats {
		if _, ok := locked[s.PerformanceID]; !ok {
			return &SeatError{Index: i, PerformanceID: s.PerformanceID, Row: s.Row, Seat: s.Seat, Err: ErrUnknownPerformance}
		}
	}

	taken, err := tx.TakenSeats(ctx, ids)
	if err != nil {
		return err
	}

	var failures SeatErrors
	requested := make(map[entity.SeatKey]struct{}, len(seats))
	for i, s := range seats {
		fail := func(err error) {
			failures = append(failures, &SeatError{Index: i, PerformanceID: s.PerformanceID, Row: s.Row, Seat: s.Seat, Err: err})
		}

		if err := ValidateSeat(s.Row, s.Seat, &locked[s.PerformanceID].Hall); err != nil {
			fail(err)
			continue
		}

		key := s.Key()
		if _, ok := taken[key]; ok {
			fail(ErrSeatAlreadyTaken)
			continue
		}
		if _, ok := requested[key]; ok {
			fail(ErrDuplicateSeatInRequest)
			continue
		}
		requested[key] = struct{}{}
	}

	if len(failures) > 0 {
		return failures
	}
	return nil
}

func conflictOr(err error, index int, s entity.SeatRequest) error {
	if database.IsUniqueViolation(err) {
		return &SeatError{Index: index, PerformanceID: s.PerformanceID, Row: s.Row, Seat: s.Seat, Err: ErrPersistenceConflict}
	}
	return err
}

// classify keeps domain errors as they are and wraps the rest.
func (e *BookingEngine) classify(err error, userID uuid.UUID) error {
	switch {
	case errors.Is(err, ErrUnknownPerformance),
		errors.Is(err, ErrSeatOutOfRange),
		errors.Is(err, ErrSeatAlreadyTaken),
		errors.Is(err, ErrDuplicateSeatInRequest),
		errors.Is(err, ErrReservationNotFound):
		e.log.Info("Booking refused", zap.String("user_id", userID.String()), zap.Error(err))
		return err
	case database.IsUniqueViolation(err):
		// raised at commit time, seat unknown
		e.log.Warn("Booking lost a race at commit", zap.String("user_id", userID.String()), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistenceConflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		e.log.Error("Booking failed", zap.String("user_id", userID.String()), zap.Error(err))
		return fmt.Errorf("booking transaction: %w", err)
	}
}
