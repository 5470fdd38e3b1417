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

type ActorRepository interface {
	Create(ctx context.Context, actor *entity.Actor) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Actor, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Actor, error)
	CountAll(ctx context.Context) (int64, error)
	CountByIDs(ctx context.Context, ids []uuid.UUID) (int, error)
	FindByPlayIDs(ctx context.Context, playIDs []uuid.UUID) (map[uuid.UUID][]entity.Actor, error)
	Update(ctx context.Context, actor *entity.Actor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type actorRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewActorRepository(db database.PgxIface, log *zap.Logger) ActorRepository {
	return &actorRepository{
		db:  db,
		log: log.With(zap.String("repository", "actor")),
	}
}

func (r *actorRepository) Create(ctx context.Context, actor *entity.Actor) error {
	query := `
		INSERT INTO actors (id, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query, actor.ID, actor.FirstName, actor.LastName, actor.CreatedAt, actor.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to create actor", zap.Error(err), zap.String("name", actor.FullName()))
		return fmt.Errorf("create actor %s: %w", actor.FullName(), err)
	}

	return nil
}

func (r *actorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Actor, error) {
	query := `SELECT id, first_name, last_name, created_at, updated_at FROM actors WHERE id = $1`

	var actor entity.Actor
	err := r.db.QueryRow(ctx, query, id).Scan(
		&actor.ID,
		&actor.FirstName,
		&actor.LastName,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find actor by ID", zap.Error(err), zap.String("actor_id", id.String()))
		return nil, fmt.Errorf("find actor by ID %s: %w", id, err)
	}

	return &actor, nil
}

func (r *actorRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Actor, error) {
	query := `
		SELECT id, first_name, last_name, created_at, updated_at
		FROM actors
		ORDER BY last_name, first_name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list actors", zap.Error(err))
		return nil, fmt.Errorf("find all actors: %w", err)
	}
	defer rows.Close()

	var actors []*entity.Actor
	for rows.Next() {
		var actor entity.Actor
		if err := rows.Scan(&actor.ID, &actor.FirstName, &actor.LastName, &actor.CreatedAt, &actor.UpdatedAt); err != nil {
			r.log.Error("Failed to scan actor row", zap.Error(err))
			return nil, fmt.Errorf("scan actor row: %w", err)
		}
		actors = append(actors, &actor)
	}

	return actors, rows.Err()
}

func (r *actorRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM actors`).Scan(&count); err != nil {
		r.log.Error("Failed to count actors", zap.Error(err))
		return 0, fmt.Errorf("count actors: %w", err)
	}
	return count, nil
}

// CountByIDs counts how many of ids exist; used to validate play links.
func (r *actorRepository) CountByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM actors WHERE id = ANY($1)`, ids).Scan(&count); err != nil {
		r.log.Error("Failed to count actors by IDs", zap.Error(err))
		return 0, fmt.Errorf("count actors by ids: %w", err)
	}
	return count, nil
}

// FindByPlayIDs loads the cast of several plays in one query.
func (r *actorRepository) FindByPlayIDs(ctx context.Context, playIDs []uuid.UUID) (map[uuid.UUID][]entity.Actor, error) {
	result := make(map[uuid.UUID][]entity.Actor, len(playIDs))
	if len(playIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT pa.play_id, a.id, a.first_name, a.last_name, a.created_at, a.updated_at
		FROM actors a
		INNER JOIN play_actors pa ON pa.actor_id = a.id
		WHERE pa.play_id = ANY($1)
		ORDER BY a.last_name, a.first_name
	`

	rows, err := r.db.Query(ctx, query, playIDs)
	if err != nil {
		r.log.Error("Failed to find actors by play IDs", zap.Error(err))
		return nil, fmt.Errorf("find actors by play ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var playID uuid.UUID
		var actor entity.Actor
		if err := rows.Scan(&playID, &actor.ID, &actor.FirstName, &actor.LastName, &actor.CreatedAt, &actor.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan play actor row: %w", err)
		}
		result[playID] = append(result[playID], actor)
	}

	return result, rows.Err()
}

func (r *actorRepository) Update(ctx context.Context, actor *entity.Actor) error {
	query := `UPDATE actors SET first_name = $2, last_name = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, actor.ID, actor.FirstName, actor.LastName, actor.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update actor", zap.Error(err), zap.String("actor_id", actor.ID.String()))
		return fmt.Errorf("update actor %s: %w", actor.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("actor %s not found", actor.ID)
	}
	return nil
}

func (r *actorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM actors WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete actor", zap.Error(err), zap.String("actor_id", id.String()))
		return fmt.Errorf("delete actor %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("actor %s not found", id)
	}
	return nil
}
