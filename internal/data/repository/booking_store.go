package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"theatre-booking/internal/data/entity"
	"theatre-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// BookingStore opens the unit of work in which seats are checked and sold.
type BookingStore interface {
	// InTx runs fn in one transaction. Any error from fn, or a cancelled ctx, rolls it back.
	InTx(ctx context.Context, fn func(tx BookingTx) error) error
}

// BookingTx is the set of statements allowed inside a booking transaction.
type BookingTx interface {
	// LockPerformances locks the given performances FOR UPDATE and their halls FOR SHARE,
	// in ascending performance id order, and returns them with their hall.
	// Unknown ids are absent from the map.
	LockPerformances(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.PerformanceHall, error)
	// TakenSeats reads the sold seats of the given performances.
	TakenSeats(ctx context.Context, performanceIDs []uuid.UUID) (map[entity.SeatKey]struct{}, error)
	// LockReservation locks a reservation owned by userID, nil when there is none.
	LockReservation(ctx context.Context, id, userID uuid.UUID) (*entity.Reservation, error)
	CreateReservation(ctx context.Context, userID uuid.UUID) (*entity.Reservation, error)
	CreateTicket(ctx context.Context, ticket *entity.Ticket) error
}

type bookingStore struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingStore(db database.PgxIface, log *zap.Logger) BookingStore {
	return &bookingStore{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (s *bookingStore) InTx(ctx context.Context, fn func(tx BookingTx) error) error {
	return database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&bookingTx{q: tx, log: s.log})
	})
}

type bookingTx struct {
	q   database.DBTX
	log *zap.Logger
}

// SortUUIDs orders ids by their byte value, which is how Postgres orders uuid.
func SortUUIDs(ids []uuid.UUID) []uuid.UUID {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})
	return sorted
}

func (t *bookingTx) LockPerformances(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.PerformanceHall, error) {
	query := `
		SELECT p.id, p.play_id, p.theatre_hall_id, p.show_time, p.created_at, p.updated_at,
		       h.id, h.name, h.rows, h.seats_in_rows, h.created_at, h.updated_at
		FROM performances p
		INNER JOIN theatre_halls h ON h.id = p.theatre_hall_id
		WHERE p.id = $1
		FOR UPDATE OF p
		FOR SHARE OF h
	`

	// one statement per id keeps the lock order fixed across concurrent bookings.
	// The share lock on the hall holds off a concurrent resize until commit.
	locked := make(map[uuid.UUID]*entity.PerformanceHall, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range SortUUIDs(ids) {
		if seen[id] {
			continue
		}
		seen[id] = true
		ph, err := scanPerformanceHall(t.q.QueryRow(ctx, query, id))
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			t.log.Error("Failed to lock performance",
				zap.Error(err),
				zap.String("performance_id", id.String()),
			)
			return nil, fmt.Errorf("lock performance %s: %w", id, err)
		}
		locked[id] = ph
	}

	return locked, nil
}

func (t *bookingTx) TakenSeats(ctx context.Context, performanceIDs []uuid.UUID) (map[entity.SeatKey]struct{}, error) {
	taken := make(map[entity.SeatKey]struct{})
	if len(performanceIDs) == 0 {
		return taken, nil
	}

	query := `SELECT performance_id, "row", seat FROM tickets WHERE performance_id = ANY($1)`

	rows, err := t.q.Query(ctx, query, performanceIDs)
	if err != nil {
		t.log.Error("Failed to read taken seats", zap.Error(err))
		return nil, fmt.Errorf("read taken seats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k entity.SeatKey
		if err := rows.Scan(&k.PerformanceID, &k.Row, &k.Seat); err != nil {
			return nil, fmt.Errorf("scan taken seat: %w", err)
		}
		taken[k] = struct{}{}
	}

	return taken, rows.Err()
}

func (t *bookingTx) LockReservation(ctx context.Context, id, userID uuid.UUID) (*entity.Reservation, error) {
	query := `SELECT id, user_id, created_at FROM reservations WHERE id = $1 AND user_id = $2 FOR UPDATE`

	var res entity.Reservation
	err := t.q.QueryRow(ctx, query, id, userID).Scan(&res.ID, &res.UserID, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		t.log.Error("Failed to lock reservation",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("lock reservation %s: %w", id, err)
	}

	return &res, nil
}

// CreateReservation stamps created_at with the database clock.
func (t *bookingTx) CreateReservation(ctx context.Context, userID uuid.UUID) (*entity.Reservation, error) {
	res := &entity.Reservation{UserID: userID}
	res.ID = uuid.New()

	query := `
		INSERT INTO reservations (id, user_id, created_at)
		VALUES ($1, $2, clock_timestamp())
		RETURNING created_at
	`

	if err := t.q.QueryRow(ctx, query, res.ID, userID).Scan(&res.CreatedAt); err != nil {
		t.log.Error("Failed to create reservation",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("create reservation for user %s: %w", userID, err)
	}

	return res, nil
}

// CreateTicket inserts a single ticket so a unique violation points at one seat.
func (t *bookingTx) CreateTicket(ctx context.Context, ticket *entity.Ticket) error {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}

	query := `
		INSERT INTO tickets (id, "row", seat, performance_id, reservation_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := t.q.Exec(ctx, query,
		ticket.ID,
		ticket.Row,
		ticket.Seat,
		ticket.PerformanceID,
		ticket.ReservationID,
		ticket.UserID,
	)
	if err != nil {
		if !database.IsUniqueViolation(err) {
			t.log.Error("Failed to create ticket",
				zap.Error(err),
				zap.String("performance_id", ticket.PerformanceID.String()),
				zap.Int("row", ticket.Row),
				zap.Int("seat", ticket.Seat),
			)
		}
		return fmt.Errorf("create ticket row %d seat %d performance %s: %w",
			ticket.Row, ticket.Seat, ticket.PerformanceID, err)
	}

	return nil
}
