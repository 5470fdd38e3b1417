package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"theatre-booking/internal/data/entity"
	"theatre-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PerformanceRepository interface {
	Create(ctx context.Context, performance *entity.Performance) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PerformanceHall, error)
	FindSummaries(ctx context.Context, filter entity.PerformanceFilter, limit, offset int) ([]*entity.PerformanceSummary, error)
	FindSummariesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.PerformanceSummary, error)
	CountAll(ctx context.Context, filter entity.PerformanceFilter) (int64, error)
	TakenSeats(ctx context.Context, id uuid.UUID) ([]entity.SeatCoord, error)
	IDsByTheatreHall(ctx context.Context, hallID uuid.UUID) ([]uuid.UUID, error)
	// Update refuses with ErrHallChangeWithTickets to move a performance that sold tickets.
	Update(ctx context.Context, performance *entity.Performance) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type performanceRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPerformanceRepository(db database.PgxIface, log *zap.Logger) PerformanceRepository {
	return &performanceRepository{
		db:  db,
		log: log.With(zap.String("repository", "performance")),
	}
}

// availability is derived from one COUNT per performance, never from joined ticket rows
const performanceSummarySelect = `
	SELECT p.id, p.play_id, p.theatre_hall_id, p.show_time, p.created_at, p.updated_at,
	       pl.title, h.name, h.rows * h.seats_in_rows,
	       h.rows * h.seats_in_rows - (SELECT COUNT(*) FROM tickets t WHERE t.performance_id = p.id)
	FROM performances p
	INNER JOIN plays pl ON pl.id = p.play_id
	INNER JOIN theatre_halls h ON h.id = p.theatre_hall_id
`

func scanSummary(row pgx.Row) (*entity.PerformanceSummary, error) {
	var s entity.PerformanceSummary
	err := row.Scan(
		&s.ID,
		&s.PlayID,
		&s.TheatreHallID,
		&s.ShowTime,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.PlayTitle,
		&s.TheatreHallName,
		&s.HallNumSeats,
		&s.TicketsAvailable,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *performanceRepository) Create(ctx context.Context, performance *entity.Performance) error {
	query := `
		INSERT INTO performances (id, play_id, theatre_hall_id, show_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		performance.ID,
		performance.PlayID,
		performance.TheatreHallID,
		performance.ShowTime,
		performance.CreatedAt,
		performance.UpdatedAt,
	)
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("play or theatre hall not found: %w", err)
	}
	if err != nil {
		r.log.Error("Failed to create performance",
			zap.Error(err),
			zap.String("play_id", performance.PlayID.String()),
			zap.String("theatre_hall_id", performance.TheatreHallID.String()),
			zap.Time("show_time", performance.ShowTime),
		)
		return fmt.Errorf("create performance for play %s hall %s: %w",
			performance.PlayID, performance.TheatreHallID, err)
	}

	return nil
}

func (r *performanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PerformanceHall, error) {
	query := `
		SELECT p.id, p.play_id, p.theatre_hall_id, p.show_time, p.created_at, p.updated_at,
		       h.id, h.name, h.rows, h.seats_in_rows, h.created_at, h.updated_at
		FROM performances p
		INNER JOIN theatre_halls h ON h.id = p.theatre_hall_id
		WHERE p.id = $1
	`

	ph, err := scanPerformanceHall(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find performance by ID",
			zap.Error(err),
			zap.String("performance_id", id.String()),
		)
		return nil, fmt.Errorf("find performance by ID %s: %w", id, err)
	}

	return ph, nil
}

func scanPerformanceHall(row pgx.Row) (*entity.PerformanceHall, error) {
	var ph entity.PerformanceHall
	err := row.Scan(
		&ph.ID,
		&ph.PlayID,
		&ph.TheatreHallID,
		&ph.ShowTime,
		&ph.CreatedAt,
		&ph.UpdatedAt,
		&ph.Hall.ID,
		&ph.Hall.Name,
		&ph.Hall.Rows,
		&ph.Hall.SeatsInRows,
		&ph.Hall.CreatedAt,
		&ph.Hall.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ph, nil
}

func performanceWhere(filter entity.PerformanceFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(" WHERE 1=1")
	args := []any{}
	argCount := 1

	if filter.PlayID != nil {
		sb.WriteString(fmt.Sprintf(" AND p.play_id = $%d", argCount))
		args = append(args, *filter.PlayID)
		argCount++
	}
	if filter.Date != nil && *filter.Date != "" {
		sb.WriteString(fmt.Sprintf(" AND p.show_time::date = $%d::date", argCount))
		args = append(args, *filter.Date)
	}

	return sb.String(), args
}

func (r *performanceRepository) FindSummaries(ctx context.Context, filter entity.PerformanceFilter, limit, offset int) ([]*entity.PerformanceSummary, error) {
	where, args := performanceWhere(filter)
	query := performanceSummarySelect + where +
		fmt.Sprintf(" ORDER BY p.show_time LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list performances",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find performances: %w", err)
	}
	defer rows.Close()

	var list []*entity.PerformanceSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			r.log.Error("Failed to scan performance row", zap.Error(err))
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		list = append(list, s)
	}

	return list, rows.Err()
}

func (r *performanceRepository) FindSummariesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.PerformanceSummary, error) {
	result := make(map[uuid.UUID]*entity.PerformanceSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(ctx, performanceSummarySelect+` WHERE p.id = ANY($1)`, ids)
	if err != nil {
		r.log.Error("Failed to find performances by IDs", zap.Error(err))
		return nil, fmt.Errorf("find performances by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		result[s.ID] = s
	}

	return result, rows.Err()
}

func (r *performanceRepository) CountAll(ctx context.Context, filter entity.PerformanceFilter) (int64, error) {
	where, args := performanceWhere(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM performances p`+where, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count performances", zap.Error(err))
		return 0, fmt.Errorf("count performances: %w", err)
	}
	return total, nil
}

// TakenSeats returns every sold place of a performance from a single read.
func (r *performanceRepository) TakenSeats(ctx context.Context, id uuid.UUID) ([]entity.SeatCoord, error) {
	query := `SELECT "row", seat FROM tickets WHERE performance_id = $1 ORDER BY "row", seat`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to load taken seats",
			zap.Error(err),
			zap.String("performance_id", id.String()),
		)
		return nil, fmt.Errorf("taken seats of performance %s: %w", id, err)
	}
	defer rows.Close()

	seats := []entity.SeatCoord{}
	for rows.Next() {
		var c entity.SeatCoord
		if err := rows.Scan(&c.Row, &c.Seat); err != nil {
			return nil, fmt.Errorf("scan taken seat: %w", err)
		}
		seats = append(seats, c)
	}

	return seats, rows.Err()
}

func (r *performanceRepository) IDsByTheatreHall(ctx context.Context, hallID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM performances WHERE theatre_hall_id = $1`, hallID)
	if err != nil {
		r.log.Error("Failed to list performances of hall",
			zap.Error(err),
			zap.String("theatre_hall_id", hallID.String()),
		)
		return nil, fmt.Errorf("performances of hall %s: %w", hallID, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("scan performance id: %w", err)
	}
	return ids, nil
}

// Update locks the performance row, which bookings also lock, so a hall change
// is checked against every ticket committed before it.
func (r *performanceRepository) Update(ctx context.Context, performance *entity.Performance) error {
	found := true

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var hallID uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT theatre_hall_id FROM performances WHERE id = $1 FOR UPDATE`, performance.ID,
		).Scan(&hallID)
		if errors.Is(err, pgx.ErrNoRows) {
			found = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock performance: %w", err)
		}

		if hallID != performance.TheatreHallID {
			var sold bool
			err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM tickets WHERE performance_id = $1)`, performance.ID,
			).Scan(&sold)
			if err != nil {
				return fmt.Errorf("check sold tickets: %w", err)
			}
			if sold {
				return ErrHallChangeWithTickets
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE performances
			SET play_id = $2, theatre_hall_id = $3, show_time = $4, updated_at = $5
			WHERE id = $1
		`,
			performance.ID,
			performance.PlayID,
			performance.TheatreHallID,
			performance.ShowTime,
			performance.UpdatedAt,
		)
		return err
	})

	if errors.Is(err, ErrHallChangeWithTickets) {
		return err
	}
	if err != nil {
		r.log.Error("Failed to update performance",
			zap.Error(err),
			zap.String("performance_id", performance.ID.String()),
		)
		return fmt.Errorf("update performance %s: %w", performance.ID, err)
	}

	if !found {
		return fmt.Errorf("performance %s not found", performance.ID)
	}

	return nil
}

// Delete removes the performance; its tickets go with it (ON DELETE CASCADE).
func (r *performanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM performances WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete performance",
			zap.Error(err),
			zap.String("performance_id", id.String()),
		)
		return fmt.Errorf("delete performance %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("performance %s not found", id)
	}

	return nil
}
