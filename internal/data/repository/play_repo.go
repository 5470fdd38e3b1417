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

type PlayRepository interface {
	// Create and Update write the play row and its genre/actor links atomically.
	Create(ctx context.Context, play *entity.Play, genreIDs, actorIDs []uuid.UUID) error
	Update(ctx context.Context, play *entity.Play, genreIDs, actorIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Play, error)
	FindAll(ctx context.Context, filter entity.PlayFilter, limit, offset int) ([]*entity.Play, error)
	CountAll(ctx context.Context, filter entity.PlayFilter) (int64, error)
	// Delete removes the play with its performances, returning the performance ids.
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

type playRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPlayRepository(db database.PgxIface, log *zap.Logger) PlayRepository {
	return &playRepository{
		db:  db,
		log: log.With(zap.String("repository", "play")),
	}
}

func (r *playRepository) Create(ctx context.Context, play *entity.Play, genreIDs, actorIDs []uuid.UUID) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO plays (id, title, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, query, play.ID, play.Title, play.Description, play.CreatedAt, play.UpdatedAt); err != nil {
			return fmt.Errorf("insert play: %w", err)
		}
		return replaceLinks(ctx, tx, play.ID, genreIDs, actorIDs)
	})
	if err != nil {
		r.log.Error("Failed to create play", zap.Error(err), zap.String("title", play.Title))
		return fmt.Errorf("create play %s: %w", play.Title, err)
	}
	return nil
}

func (r *playRepository) Update(ctx context.Context, play *entity.Play, genreIDs, actorIDs []uuid.UUID) error {
	notFound := false
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `UPDATE plays SET title = $2, description = $3, updated_at = $4 WHERE id = $1`
		result, err := tx.Exec(ctx, query, play.ID, play.Title, play.Description, play.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update play row: %w", err)
		}
		if result.RowsAffected() == 0 {
			notFound = true
			return nil
		}
		return replaceLinks(ctx, tx, play.ID, genreIDs, actorIDs)
	})
	if err != nil {
		r.log.Error("Failed to update play", zap.Error(err), zap.String("play_id", play.ID.String()))
		return fmt.Errorf("update play %s: %w", play.ID, err)
	}
	if notFound {
		return fmt.Errorf("play %s not found", play.ID)
	}
	return nil
}

// replaceLinks rewrites the m2m rows of a play; duplicate ids collapse via ON CONFLICT.
func replaceLinks(ctx context.Context, tx pgx.Tx, playID uuid.UUID, genreIDs, actorIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM play_genres WHERE play_id = $1`, playID); err != nil {
		return fmt.Errorf("clear play genres: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM play_actors WHERE play_id = $1`, playID); err != nil {
		return fmt.Errorf("clear play actors: %w", err)
	}

	if len(genreIDs) > 0 {
		query := `
			INSERT INTO play_genres (play_id, genre_id)
			SELECT $1, UNNEST($2::uuid[])
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.Exec(ctx, query, playID, genreIDs); err != nil {
			return fmt.Errorf("insert play genres: %w", err)
		}
	}
	if len(actorIDs) > 0 {
		query := `
			INSERT INTO play_actors (play_id, actor_id)
			SELECT $1, UNNEST($2::uuid[])
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.Exec(ctx, query, playID, actorIDs); err != nil {
			return fmt.Errorf("insert play actors: %w", err)
		}
	}
	return nil
}

func (r *playRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Play, error) {
	query := `SELECT id, title, description, created_at, updated_at FROM plays WHERE id = $1`

	var play entity.Play
	err := r.db.QueryRow(ctx, query, id).Scan(
		&play.ID,
		&play.Title,
		&play.Description,
		&play.CreatedAt,
		&play.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find play by ID", zap.Error(err), zap.String("play_id", id.String()))
		return nil, fmt.Errorf("find play by ID %s: %w", id, err)
	}

	return &play, nil
}

// playWhere renders the filter as a WHERE clause. EXISTS keeps rows distinct
// when a play matches several genres or actors.
func playWhere(filter entity.PlayFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(" WHERE 1=1")
	args := []any{}
	argCount := 1

	if filter.Title != "" {
		sb.WriteString(fmt.Sprintf(" AND p.title ILIKE '%%' || $%d || '%%'", argCount))
		args = append(args, filter.Title)
		argCount++
	}
	if len(filter.GenreIDs) > 0 {
		sb.WriteString(fmt.Sprintf(
			" AND EXISTS (SELECT 1 FROM play_genres pg WHERE pg.play_id = p.id AND pg.genre_id = ANY($%d))", argCount))
		args = append(args, filter.GenreIDs)
		argCount++
	}
	if len(filter.ActorIDs) > 0 {
		sb.WriteString(fmt.Sprintf(
			" AND EXISTS (SELECT 1 FROM play_actors pa WHERE pa.play_id = p.id AND pa.actor_id = ANY($%d))", argCount))
		args = append(args, filter.ActorIDs)
	}

	return sb.String(), args
}

func (r *playRepository) FindAll(ctx context.Context, filter entity.PlayFilter, limit, offset int) ([]*entity.Play, error) {
	where, args := playWhere(filter)
	query := `SELECT p.id, p.title, p.description, p.created_at, p.updated_at FROM plays p` + where +
		fmt.Sprintf(" ORDER BY p.title LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find all plays",
			zap.Error(err),
			zap.String("title", filter.Title),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find plays: %w", err)
	}
	defer rows.Close()

	var plays []*entity.Play
	for rows.Next() {
		var play entity.Play
		if err := rows.Scan(&play.ID, &play.Title, &play.Description, &play.CreatedAt, &play.UpdatedAt); err != nil {
			r.log.Error("Failed to scan play row", zap.Error(err))
			return nil, fmt.Errorf("scan play: %w", err)
		}
		plays = append(plays, &play)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate play rows: %w", err)
	}

	r.log.Debug("Plays found", zap.Int("count", len(plays)))
	return plays, nil
}

func (r *playRepository) CountAll(ctx context.Context, filter entity.PlayFilter) (int64, error) {
	where, args := playWhere(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM plays p`+where, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count plays", zap.Error(err))
		return 0, fmt.Errorf("count plays: %w", err)
	}
	return total, nil
}

func (r *playRepository) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	performanceIDs, found, err := deleteCascading(ctx, r.db,
		`DELETE FROM performances WHERE play_id = $1 RETURNING id`,
		`DELETE FROM plays WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete play", zap.Error(err), zap.String("play_id", id.String()))
		return nil, fmt.Errorf("delete play %s: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("play %s not found", id)
	}
	return performanceIDs, nil
}
