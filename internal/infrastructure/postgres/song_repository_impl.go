package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

const songColumns = `id::text, title, artist, lyrics, duration_seconds, cover_url, audio_url, genre, difficulty, popularity, created_at`

type SongRepository struct {
	pool *pgxpool.Pool
}

func NewSongRepository(pool *pgxpool.Pool) *SongRepository {
	return &SongRepository{pool: pool}
}

func (r *SongRepository) Create(ctx context.Context, s *entity.Song) error {
	if s.CoverURL == "" {
		s.CoverURL = entity.DefaultCoverURL
	}
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO songs (title, artist, lyrics, duration_seconds, cover_url, audio_url, genre, difficulty, popularity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id::text, created_at
	`, s.Title, s.Artist, s.Lyrics, s.DurationSeconds, s.CoverURL, s.AudioURL, string(s.Genre), s.Difficulty, s.Popularity,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *SongRepository) GetByID(ctx context.Context, id string) (*entity.Song, error) {
	return r.get(ctx, id, "")
}

func (r *SongRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Song, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *SongRepository) get(ctx context.Context, id, lock string) (*entity.Song, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	q := conn(ctx, r.pool)

	s := &entity.Song{}
	var genre string
	err := q.QueryRow(ctx, `SELECT `+songColumns+` FROM songs WHERE id = $1`+lock, id).Scan(
		&s.ID, &s.Title, &s.Artist, &s.Lyrics, &s.DurationSeconds, &s.CoverURL, &s.AudioURL,
		&genre, &s.Difficulty, &s.Popularity, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	s.Genre = entity.Genre(genre)

	if err := r.loadPerformances(ctx, q, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SongRepository) loadPerformances(ctx context.Context, q querier, s *entity.Song) error {
	rows, err := q.Query(ctx, `
		SELECT id::text, user_id::text, audio_url, created_at
		FROM performances WHERE song_id = $1 ORDER BY created_at, id
	`, s.ID)
	if err != nil {
		return err
	}
	perfs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Performance, error) {
		p := &entity.Performance{SongID: s.ID}
		err := row.Scan(&p.ID, &p.UserID, &p.AudioURL, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return err
	}
	s.Performances = perfs
	if len(perfs) == 0 {
		return nil
	}

	byID := make(map[string]*entity.Performance, len(perfs))
	for _, p := range perfs {
		byID[p.ID] = p
	}

	rows, err = q.Query(ctx, `
		SELECT l.performance_id::text, l.user_id::text
		FROM performance_likes l JOIN performances p ON p.id = l.performance_id
		WHERE p.song_id = $1 ORDER BY l.created_at
	`, s.ID)
	if err != nil {
		return err
	}
	var perfID, userID string
	_, err = pgx.ForEachRow(rows, []any{&perfID, &userID}, func() error {
		if p, ok := byID[perfID]; ok {
			p.Likes.Add(userID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	rows, err = q.Query(ctx, `
		SELECT c.id::text, c.performance_id::text, c.user_id::text, c.body, c.created_at
		FROM performance_comments c JOIN performances p ON p.id = c.performance_id
		WHERE p.song_id = $1 ORDER BY c.created_at, c.id
	`, s.ID)
	if err != nil {
		return err
	}
	var c entity.Comment
	_, err = pgx.ForEachRow(rows, []any{&c.ID, &perfID, &c.UserID, &c.Text, &c.CreatedAt}, func() error {
		if p, ok := byID[perfID]; ok {
			p.Comments = append(p.Comments, c)
		}
		return nil
	})
	return err
}

func (r *SongRepository) UpdatePopularity(ctx context.Context, songID string, popularity int64) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE songs SET popularity = $1 WHERE id = $2`, popularity, songID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SongRepository) AppendPerformance(ctx context.Context, p *entity.Performance) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO performances (id, song_id, user_id, audio_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.SongID, p.UserID, p.AudioURL, p.CreatedAt)
	return duplicate(err)
}

func (r *SongRepository) AddLike(ctx context.Context, performanceID, userID string) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO performance_likes (performance_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (performance_id, user_id) DO NOTHING
	`, performanceID, userID)
	return err
}

func (r *SongRepository) RemoveLike(ctx context.Context, performanceID, userID string) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM performance_likes WHERE performance_id = $1 AND user_id = $2`, performanceID, userID)
	return err
}

func (r *SongRepository) AppendComment(ctx context.Context, performanceID string, c entity.Comment) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO performance_comments (id, performance_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, performanceID, c.UserID, c.Text, c.CreatedAt)
	return duplicate(err)
}

func scanSongSummaries(rows pgx.Rows) ([]entity.SongSummary, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.SongSummary, error) {
		var s entity.SongSummary
		var genre string
		err := row.Scan(&s.ID, &s.Title, &s.Artist, &s.CoverURL, &genre, &s.Difficulty, &s.Popularity)
		s.Genre = entity.Genre(genre)
		return s, err
	})
}

const songSummaryColumns = `id::text, title, artist, cover_url, genre, difficulty, popularity`

func (r *SongRepository) List(ctx context.Context, f repository.SongFilter, p repository.Page) ([]entity.SongSummary, int, error) {
	q := conn(ctx, r.pool)
	where := `WHERE ($1 = '' OR genre = $1) AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR artist ILIKE '%' || $2 || '%')`

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM songs `+where, string(f.Genre), f.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, `
		SELECT `+songSummaryColumns+` FROM songs `+where+`
		ORDER BY popularity DESC, created_at DESC
		LIMIT $3 OFFSET $4
	`, string(f.Genre), f.Search, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	list, err := scanSongSummaries(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Summaries returns the songs for ids in the order given; unknown ids are skipped.
func (r *SongRepository) Summaries(ctx context.Context, ids []string) ([]entity.SongSummary, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return []entity.SongSummary{}, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+songSummaryColumns+` FROM songs WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	list, err := scanSongSummaries(rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.SongSummary, len(list))
	for _, s := range list {
		byID[s.ID] = s
	}
	out := make([]entity.SongSummary, 0, len(list))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

var _ repository.SongRepository = (*SongRepository)(nil)
