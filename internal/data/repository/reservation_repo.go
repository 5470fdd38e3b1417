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

// ReservationRepository covers the read and delete side; creation goes through BookingStore.
type ReservationRepository interface {
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Reservation, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	// DeleteForUser removes the reservation with its tickets and reports the performances they belonged to.
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) ([]uuid.UUID, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

func (r *reservationRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Reservation, error) {
	query := `SELECT id, user_id, created_at FROM reservations WHERE id = $1 AND user_id = $2`

	var res entity.Reservation
	err := r.db.QueryRow(ctx, query, id, userID).Scan(&res.ID, &res.UserID, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find reservation %s: %w", id, err)
	}

	return &res, nil
}

func (r *reservationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT id, user_id, created_at
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to list reservations",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find reservations of user %s: %w", userID, err)
	}
	defer rows.Close()

	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.CreatedAt); err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}

	return list, rows.Err()
}

func (r *reservationRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reservations", zap.Error(err), zap.String("user_id", userID.String()))
		return 0, fmt.Errorf("count reservations of user %s: %w", userID, err)
	}
	return count, nil
}

func (r *reservationRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) ([]uuid.UUID, error) {
	var performanceIDs []uuid.UUID
	found := false

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT DISTINCT performance_id FROM tickets WHERE reservation_id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("collect performances: %w", err)
		}
		performanceIDs, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("scan performances: %w", err)
		}

		result, err := tx.Exec(ctx, `DELETE FROM reservations WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("delete reservation row: %w", err)
		}
		found = result.RowsAffected() > 0
		return nil
	})
	if err != nil {
		r.log.Error("Failed to delete reservation",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("delete reservation %s: %w", id, err)
	}

	if !found {
		return nil, fmt.Errorf("reservation %s not found", id)
	}

	return performanceIDs, nil
}
