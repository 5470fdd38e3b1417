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

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("already exists")

type GenreRepository interface {
	Create(ctx context.Context, genre *entity.Genre) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Genre, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Genre, error)
	CountAll(ctx context.Context) (int64, error)
	CountByIDs(ctx context.Context, ids []uuid.UUID) (int, error)
	FindByPlayIDs(ctx context.Context, playIDs []uuid.UUID) (map[uuid.UUID][]entity.Genre, error)
	Update(ctx context.Context, genre *entity.Genre) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type genreRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewGenreRepository(db database.PgxIface, log *zap.Logger) GenreRepository {
	return &genreRepository{
		db:  db,
		log: log.With(zap.String("repository", "genre")),
	}
}

func (r *genreRepository) Create(ctx context.Context, genre *entity.Genre) error {
	query := `INSERT INTO genres (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, genre.ID, genre.Name, genre.CreatedAt, genre.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("genre %q: %w", genre.Name, ErrDuplicate)
		}
		r.log.Error("Failed to create genre", zap.Error(err), zap.String("name", genre.Name))
		return fmt.Errorf("create genre %s: %w", genre.Name, err)
	}

	return nil
}

func (r *genreRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Genre, error) {
	query := `SELECT id, name, created_at, updated_at FROM genres WHERE id = $1`

	var genre entity.Genre
	err := r.db.QueryRow(ctx, query, id).Scan(
		&genre.ID,
		&genre.Name,
		&genre.CreatedAt,
		&genre.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find genre by ID",
			zap.Error(err),
			zap.String("genre_id", id.String()),
		)
		return nil, fmt.Errorf("find genre by id: %w", err)
	}

	return &genre, nil
}

func (r *genreRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Genre, error) {
	query := `SELECT id, name, created_at, updated_at FROM genres ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list genres", zap.Error(err))
		return nil, fmt.Errorf("find all genres: %w", err)
	}
	defer rows.Close()

	var genres []*entity.Genre
	for rows.Next() {
		var genre entity.Genre
		if err := rows.Scan(&genre.ID, &genre.Name, &genre.CreatedAt, &genre.UpdatedAt); err != nil {
			r.log.Error("Failed to scan genre row", zap.Error(err))
			return nil, fmt.Errorf("scan genre row: %w", err)
		}
		genres = append(genres, &genre)
	}

	return genres, rows.Err()
}

func (r *genreRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM genres`).Scan(&count); err != nil {
		r.log.Error("Failed to count genres", zap.Error(err))
		return 0, fmt.Errorf("count genres: %w", err)
	}
	return count, nil
}

func (r *genreRepository) CountByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM genres WHERE id = ANY($1)`, ids).Scan(&count); err != nil {
		r.log.Error("Failed to count genres by IDs", zap.Error(err))
		return 0, fmt.Errorf("count genres by ids: %w", err)
	}
	return count, nil
}

func (r *genreRepository) FindByPlayIDs(ctx context.Context, playIDs []uuid.UUID) (map[uuid.UUID][]entity.Genre, error) {
	result := make(map[uuid.UUID][]entity.Genre, len(playIDs))
	if len(playIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT pg.play_id, g.id, g.name, g.created_at, g.updated_at
		FROM genres g
		INNER JOIN play_genres pg ON g.id = pg.genre_id
		WHERE pg.play_id = ANY($1)
		ORDER BY g.name
	`

	rows, err := r.db.Query(ctx, query, playIDs)
	if err != nil {
		r.log.Error("Failed to find genres by play IDs", zap.Error(err))
		return nil, fmt.Errorf("find genres by play ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var playID uuid.UUID
		var genre entity.Genre
		if err := rows.Scan(&playID, &genre.ID, &genre.Name, &genre.CreatedAt, &genre.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan play genre row: %w", err)
		}
		result[playID] = append(result[playID], genre)
	}

	return result, rows.Err()
}

func (r *genreRepository) Update(ctx context.Context, genre *entity.Genre) error {
	result, err := r.db.Exec(ctx, `UPDATE genres SET name = $2, updated_at = $3 WHERE id = $1`,
		genre.ID, genre.Name, genre.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("genre %q: %w", genre.Name, ErrDuplicate)
		}
		r.log.Error("Failed to update genre", zap.Error(err), zap.String("genre_id", genre.ID.String()))
		return fmt.Errorf("update genre %s: %w", genre.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("genre %s not found", genre.ID)
	}
	return nil
}

func (r *genreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM genres WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete genre", zap.Error(err), zap.String("genre_id", id.String()))
		return fmt.Errorf("delete genre %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("genre %s not found", id)
	}
	return nil
}
