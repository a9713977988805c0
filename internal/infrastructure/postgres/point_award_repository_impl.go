package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

type PointAwardRepository struct {
	pool *pgxpool.Pool
}

func NewPointAwardRepository(pool *pgxpool.Pool) *PointAwardRepository {
	return &PointAwardRepository{pool: pool}
}

func (r *PointAwardRepository) Append(ctx context.Context, a entity.PointAward) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO point_awards (id, user_id, actor_id, reason, points, source_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.UserID, a.ActorID, string(a.Reason), a.Points, a.SourceID, a.CreatedAt)
	return duplicate(err)
}

func (r *PointAwardRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.PointAward, error) {
	if !validID(userID) {
		return []entity.PointAward{}, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id::text, user_id::text, actor_id::text, reason, points, source_id::text, created_at
		FROM point_awards WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.PointAward, error) {
		var a entity.PointAward
		var reason string
		err := row.Scan(&a.ID, &a.UserID, &a.ActorID, &reason, &a.Points, &a.SourceID, &a.CreatedAt)
		a.Reason = entity.AwardReason(reason)
		return a, err
	})
}

var _ repository.PointAwardRepository = (*PointAwardRepository)(nil)
