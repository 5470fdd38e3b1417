package repository

import (
	"context"
	"errors"
	"fmt"

	"theatre-booking/internal/data/entity"
	"theatre-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TicketRepository interface {
	FindByReservationIDs(ctx context.Context, reservationIDs []uuid.UUID) (map[uuid.UUID][]entity.Ticket, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Ticket, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	// DeleteForUser returns the removed ticket, or nil when the caller owns no such ticket.
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Ticket, error)
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

const ticketColumns = `id, "row", seat, performance_id, reservation_id, user_id`

func scanTicket(row pgx.Row) (entity.Ticket, error) {
	var t entity.Ticket
	err := row.Scan(&t.ID, &t.Row, &t.Seat, &t.PerformanceID, &t.ReservationID, &t.UserID)
	return t, err
}

func (r *ticketRepository) FindByReservationIDs(ctx context.Context, reservationIDs []uuid.UUID) (map[uuid.UUID][]entity.Ticket, error) {
	result := make(map[uuid.UUID][]entity.Ticket, len(reservationIDs))
	if len(reservationIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE reservation_id = ANY($1) ORDER BY "row", seat`

	rows, err := r.db.Query(ctx, query, reservationIDs)
	if err != nil {
		r.log.Error("Failed to find tickets by reservation IDs", zap.Error(err))
		return nil, fmt.Errorf("find tickets by reservation ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		result[t.ReservationID] = append(result[t.ReservationID], t)
	}

	return result, rows.Err()
}

func (r *ticketRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Ticket, error) {
	query := `
		SELECT t.id, t."row", t.seat, t.performance_id, t.reservation_id, t.user_id
		FROM tickets t
		INNER JOIN performances p ON p.id = t.performance_id
		WHERE t.user_id = $1
		ORDER BY p.show_time DESC, t."row", t.seat
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to list tickets",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find tickets of user %s: %w", userID, err)
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, &t)
	}

	return tickets, rows.Err()
}

func (r *ticketRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE user_id = $1`, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count tickets", zap.Error(err), zap.String("user_id", userID.String()))
		return 0, fmt.Errorf("count tickets of user %s: %w", userID, err)
	}
	return count, nil
}

func (r *ticketRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Ticket, error) {
	query := `DELETE FROM tickets WHERE id = $1 AND user_id = $2 RETURNING ` + ticketColumns

	t, err := scanTicket(r.db.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to delete ticket",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return nil, fmt.Errorf("delete ticket %s: %w", id, err)
	}

	return &t, nil
}
