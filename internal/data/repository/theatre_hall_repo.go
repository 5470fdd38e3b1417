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

type TheatreHallRepository interface {
	Create(ctx context.Context, hall *entity.TheatreHall) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TheatreHall, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.TheatreHall, error)
	CountAll(ctx context.Context) (int64, error)
	// Update refuses with *HallTooSmallError when a sold seat would fall outside the new size.
	Update(ctx context.Context, hall *entity.TheatreHall) error
	// Delete removes the hall with its performances and tickets, returning the performance ids.
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

type theatreHallRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTheatreHallRepository(db database.PgxIface, log *zap.Logger) TheatreHallRepository {
	return &theatreHallRepository{
		db:  db,
		log: log.With(zap.String("repository", "theatre_hall")),
	}
}

func (r *theatreHallRepository) Create(ctx context.Context, hall *entity.TheatreHall) error {
	query := `
		INSERT INTO theatre_halls (id, name, rows, seats_in_rows, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		hall.ID,
		hall.Name,
		hall.Rows,
		hall.SeatsInRows,
		hall.CreatedAt,
		hall.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create theatre hall",
			zap.Error(err),
			zap.String("name", hall.Name),
		)
		return fmt.Errorf("create theatre hall %s: %w", hall.Name, err)
	}

	return nil
}

func (r *theatreHallRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TheatreHall, error) {
	query := `
		SELECT id, name, rows, seats_in_rows, created_at, updated_at
		FROM theatre_halls
		WHERE id = $1
	`

	var hall entity.TheatreHall
	err := r.db.QueryRow(ctx, query, id).Scan(
		&hall.ID,
		&hall.Name,
		&hall.Rows,
		&hall.SeatsInRows,
		&hall.CreatedAt,
		&hall.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find theatre hall by ID",
			zap.Error(err),
			zap.String("theatre_hall_id", id.String()),
		)
		return nil, fmt.Errorf("find theatre hall by ID %s: %w", id, err)
	}

	return &hall, nil
}

func (r *theatreHallRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.TheatreHall, error) {
	query := `
		SELECT id, name, rows, seats_in_rows, created_at, updated_at
		FROM theatre_halls
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list theatre halls", zap.Error(err))
		return nil, fmt.Errorf("find all theatre halls: %w", err)
	}
	defer rows.Close()

	var halls []*entity.TheatreHall
	for rows.Next() {
		var hall entity.TheatreHall
		if err := rows.Scan(
			&hall.ID,
			&hall.Name,
			&hall.Rows,
			&hall.SeatsInRows,
			&hall.CreatedAt,
			&hall.UpdatedAt,
		); err != nil {
			r.log.Error("Failed to scan theatre hall row", zap.Error(err))
			return nil, fmt.Errorf("scan theatre hall row: %w", err)
		}
		halls = append(halls, &hall)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate theatre hall rows: %w", err)
	}

	return halls, nil
}

func (r *theatreHallRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM theatre_halls`).Scan(&count); err != nil {
		r.log.Error("Failed to count theatre halls", zap.Error(err))
		return 0, fmt.Errorf("count theatre halls: %w", err)
	}
	return count, nil
}

// Update locks the hall row before checking sold seats, so a booking validated
// against the old size either commits first and is seen, or waits and sees the new size.
func (r *theatreHallRepository) Update(ctx context.Context, hall *entity.TheatreHall) error {
	found := true

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var rows, seats int
		err := tx.QueryRow(ctx,
			`SELECT rows, seats_in_rows FROM theatre_halls WHERE id = $1 FOR UPDATE`, hall.ID,
		).Scan(&rows, &seats)
		if errors.Is(err, pgx.ErrNoRows) {
			found = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock theatre hall: %w", err)
		}

		if hall.Rows < rows || hall.SeatsInRows < seats {
			maxRow, maxSeat, err := maxSoldSeat(ctx, tx, hall.ID)
			if err != nil {
				return err
			}
			if maxRow > hall.Rows || maxSeat > hall.SeatsInRows {
				return &HallTooSmallError{MaxRow: maxRow, MaxSeat: maxSeat}
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE theatre_halls
			SET name = $2, rows = $3, seats_in_rows = $4, updated_at = $5
			WHERE id = $1
		`,
			hall.ID,
			hall.Name,
			hall.Rows,
			hall.SeatsInRows,
			hall.UpdatedAt,
		)
		return err
	})

	var tooSmall *HallTooSmallError
	if errors.As(err, &tooSmall) {
		return tooSmall
	}
	if err != nil {
		r.log.Error("Failed to update theatre hall",
			zap.Error(err),
			zap.String("theatre_hall_id", hall.ID.String()),
		)
		return fmt.Errorf("update theatre hall %s: %w", hall.ID, err)
	}

	if !found {
		return fmt.Errorf("theatre hall %s not found", hall.ID)
	}

	return nil
}

// maxSoldSeat returns the highest row and seat number sold for any performance in the hall.
func maxSoldSeat(ctx context.Context, q database.DBTX, id uuid.UUID) (int, int, error) {
	query := `
		SELECT COALESCE(MAX(t."row"), 0), COALESCE(MAX(t.seat), 0)
		FROM tickets t
		INNER JOIN performances p ON p.id = t.performance_id
		WHERE p.theatre_hall_id = $1
	`

	var maxRow, maxSeat int
	if err := q.QueryRow(ctx, query, id).Scan(&maxRow, &maxSeat); err != nil {
		return 0, 0, fmt.Errorf("read sold seat bounds for hall %s: %w", id, err)
	}
	return maxRow, maxSeat, nil
}

func (r *theatreHallRepository) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	performanceIDs, found, err := deleteCascading(ctx, r.db,
		`DELETE FROM performances WHERE theatre_hall_id = $1 RETURNING id`,
		`DELETE FROM theatre_halls WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete theatre hall",
			zap.Error(err),
			zap.String("theatre_hall_id", id.String()),
		)
		return nil, fmt.Errorf("delete theatre hall %s: %w", id, err)
	}

	if !found {
		return nil, fmt.Errorf("theatre hall %s not found", id)
	}

	return performanceIDs, nil
}

// deleteCascading removes the dependent performances first so their ids can be
// reported, then the parent row. Tickets go with their performance.
func deleteCascading(ctx context.Context, db database.PgxIface, childSQL, parentSQL string, id uuid.UUID) ([]uuid.UUID, bool, error) {
	var ids []uuid.UUID
	found := false

	err := database.WithTx(ctx, db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, childSQL, id)
		if err != nil {
			return fmt.Errorf("delete performances: %w", err)
		}
		ids, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("collect performance ids: %w", err)
		}

		result, err := tx.Exec(ctx, parentSQL, id)
		if err != nil {
			return err
		}
		found = result.RowsAffected() > 0
		return nil
	})

	return ids, found, err
}
