package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

type SongRepository struct {
	s *Store
}

func (r *SongRepository) Create(ctx context.Context, song *entity.Song) error {
	return r.s.write(ctx, func() error {
		if song.ID == "" {
			song.ID = uuid.NewString()
		}
		if song.CoverURL == "" {
			song.CoverURL = entity.DefaultCoverURL
		}
		song.CreatedAt = r.s.now()
		r.s.songs[song.ID] = song.Clone()
		return nil
	})
}

func (r *SongRepository) GetByID(_ context.Context, id string) (*entity.Song, error) {
	var song *entity.Song
	r.s.read(func() { song = r.s.songs[id].Clone() })
	if song == nil {
		return nil, repository.ErrNotFound
	}
	return song, nil
}

func (r *SongRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Song, error) {
	return r.GetByID(ctx, id)
}

func (r *SongRepository) UpdatePopularity(ctx context.Context, songID string, popularity int64) error {
	return r.s.write(ctx, func() error {
		song, ok := r.s.songs[songID]
		if !ok {
			return repository.ErrNotFound
		}
		song.Popularity = popularity
		return nil
	})
}

func (r *SongRepository) AppendPerformance(ctx context.Context, p *entity.Performance) error {
	return r.s.write(ctx, func() error {
		song, ok := r.s.songs[p.SongID]
		if !ok {
			return repository.ErrNotFound
		}
		if song.Performance(p.ID) != nil {
			return repository.ErrDuplicate
		}
		song.Performances = append(song.Performances, &entity.Performance{
			ID:        p.ID,
			SongID:    p.SongID,
			UserID:    p.UserID,
			AudioURL:  p.AudioURL,
			Likes:     p.Likes.Clone(),
			Comments:  append([]entity.Comment(nil), p.Comments...),
			CreatedAt: p.CreatedAt,
		})
		return nil
	})
}

// performance finds a stored performance by id. Callers hold s.mu.
func (r *SongRepository) performance(id string) *entity.Performance {
	for _, song := range r.s.songs {
		if p := song.Performance(id); p != nil {
			return p
		}
	}
	return nil
}

func (r *SongRepository) AddLike(ctx context.Context, performanceID, userID string) error {
	return r.s.write(ctx, func() error {
		p := r.performance(performanceID)
		if p == nil {
			return repository.ErrNotFound
		}
		p.Likes.Add(userID)
		return nil
	})
}

func (r *SongRepository) RemoveLike(ctx context.Context, performanceID, userID string) error {
	return r.s.write(ctx, func() error {
		p := r.performance(performanceID)
		if p == nil {
			return repository.ErrNotFound
		}
		p.Likes.Remove(userID)
		return nil
	})
}

func (r *SongRepository) AppendComment(ctx context.Context, performanceID string, c entity.Comment) error {
	return r.s.write(ctx, func() error {
		p := r.performance(performanceID)
		if p == nil {
			return repository.ErrNotFound
		}
		p.Comments = append(p.Comments, c)
		return nil
	})
}

func matches(song *entity.Song, f repository.SongFilter) bool {
	if f.Genre != "" && song.Genre != f.Genre {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(song.Title), q) || strings.Contains(strings.ToLower(song.Artist), q)
}

func (r *SongRepository) List(_ context.Context, f repository.SongFilter, p repository.Page) ([]entity.SongSummary, int, error) {
	var hits []*entity.Song
	r.s.read(func() {
		for _, song := range r.s.songs {
			if matches(song, f) {
				hits = append(hits, song)
			}
		}
	})
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Popularity != hits[j].Popularity {
			return hits[i].Popularity > hits[j].Popularity
		}
		return hits[i].CreatedAt.After(hits[j].CreatedAt)
	})

	total := len(hits)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := total
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}
	out := make([]entity.SongSummary, 0, end-start)
	for _, song := range hits[start:end] {
		out = append(out, song.Summary())
	}
	return out, total, nil
}

func (r *SongRepository) Summaries(_ context.Context, ids []string) ([]entity.SongSummary, error) {
	out := make([]entity.SongSummary, 0, len(ids))
	r.s.read(func() {
		for _, id := range ids {
			if song, ok := r.s.songs[id]; ok {
				out = append(out, song.Summary())
			}
		}
	})
	return out, nil
}

var _ repository.SongRepository = (*SongRepository)(nil)
