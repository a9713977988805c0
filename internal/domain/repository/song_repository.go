package repository

import (
	"context"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
)

// SongFilter narrows ListSongs. Zero values mean "no filter".
type SongFilter struct {
	Genre  entity.Genre
	Search string
}

// SongRepository persists songs together with their performances, likes and
// comments.
type SongRepository interface {
	Create(ctx context.Context, s *entity.Song) error
	GetByID(ctx context.Context, id string) (*entity.Song, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Song, error)
	// UpdatePopularity writes the cached popularity score and nothing else.
	UpdatePopularity(ctx context.Context, songID string, popularity int64) error
	AppendPerformance(ctx context.Context, p *entity.Performance) error
	// AddLike and RemoveLike are idempotent.
	AddLike(ctx context.Context, performanceID, userID string) error
	RemoveLike(ctx context.Context, performanceID, userID string) error
	AppendComment(ctx context.Context, performanceID string, c entity.Comment) error
	// List returns summaries ordered by popularity desc and the total count.
	List(ctx context.Context, f SongFilter, p Page) ([]entity.SongSummary, int, error)
	Summaries(ctx context.Context, ids []string) ([]entity.SongSummary, error)
}
