package memory

import (
	"context"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

type PointAwardRepository struct {
	s *Store
}

func (r *PointAwardRepository) Append(ctx context.Context, a entity.PointAward) error {
	return r.s.write(ctx, func() error {
		for _, existing := range r.s.awards {
			if existing.ID == a.ID {
				return repository.ErrDuplicate
			}
		}
		r.s.awards = append(r.s.awards, a)
		return nil
	})
}

// ListByUser returns the user's awards newest first.
func (r *PointAwardRepository) ListByUser(_ context.Context, userID string, limit int) ([]entity.PointAward, error) {
	out := []entity.PointAward{}
	r.s.read(func() {
		for i := len(r.s.awards) - 1; i >= 0; i-- {
			if r.s.awards[i].UserID != userID {
				continue
			}
			out = append(out, r.s.awards[i])
			if limit > 0 && len(out) == limit {
				return
			}
		}
	})
	return out, nil
}

var _ repository.PointAwardRepository = (*PointAwardRepository)(nil)
