package repository

import (
	"context"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
)

// PointAwardRepository stores the append-only points audit trail.
type PointAwardRepository interface {
	Append(ctx context.Context, a entity.PointAward) error
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.PointAward, error)
}
