package application

import (
	"context"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/ledger"
	repo "github.com/oksasatya/karaoke-social-api/internal/domain/repository"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SongService serves the catalog and every interaction recorded on a song.
type SongService struct {
	Stores       Stores
	Engagement   *ledger.EngagementLedger
	Points       *Points
	GCS          *storage.Client
	GCSBucket    string
	ES           *elasticsearch.Client
	ESSongsIndex string
	Logger       *logrus.Logger
}

func NewSongService(stores Stores, points *Points, logger *logrus.Logger) *SongService {
	return &SongService{Stores: stores, Engagement: ledger.NewEngagementLedger(), Points: points, Logger: logger}
}

// SongPage is one page of the catalog listing.
type SongPage struct {
	Items []entity.SongSummary
	Page  int
	Limit int
	Total int
}

// NormalizePage applies the listing defaults and caps the page size.
func NormalizePage(page, limit int) repo.Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return repo.Page{Page: page, Limit: limit}
}

func (s *SongService) List(ctx context.Context, genre, search string, page, limit int) (*SongPage, error) {
	f := repo.SongFilter{Genre: entity.Genre(strings.ToLower(strings.TrimSpace(genre))), Search: strings.TrimSpace(search)}
	if f.Genre != "" && !f.Genre.Valid() {
		return nil, ErrInvalidGenre
	}
	p := NormalizePage(page, limit)
	items, total, err := s.Stores.Songs.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	return &SongPage{Items: items, Page: p.Page, Limit: p.Limit, Total: total}, nil
}

// CommentView is a comment with its author expanded.
type CommentView struct {
	ID        string             `json:"id"`
	Text      string             `json:"text"`
	Author    entity.UserSummary `json:"author"`
	CreatedAt time.Time          `json:"created_at"`
}

// PerformanceView is a performance with its singer and commenters expanded.
type PerformanceView struct {
	ID        string             `json:"id"`
	AudioURL  string             `json:"audio_url"`
	Singer    entity.UserSummary `json:"singer"`
	Likes     int                `json:"likes"`
	LikedBy   []string           `json:"liked_by"`
	Comments  []CommentView      `json:"comments"`
	CreatedAt time.Time          `json:"created_at"`
}

// SongDetail is the full song page.
type SongDetail struct {
	entity.SongSummary
	Lyrics          string            `json:"lyrics"`
	DurationSeconds int               `json:"duration_seconds"`
	AudioURL        string            `json:"audio_url"`
	Performances    []PerformanceView `json:"performances"`
	CreatedAt       time.Time         `json:"created_at"`
}

func (s *SongService) Get(ctx context.Context, id string) (*SongDetail, error) {
	song, err := s.Stores.Songs.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, ledger.ErrSongNotFound)
	}
	var ids []string
	for _, p := range song.Performances {
		ids = append(ids, p.UserID)
		for _, c := range p.Comments {
			ids = append(ids, c.UserID)
		}
	}
	people, err := s.Stores.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	author := func(id string) entity.UserSummary {
		if u, ok := people[id]; ok {
			return u
		}
		return entity.UserSummary{ID: id}
	}

	d := &SongDetail{
		SongSummary:     song.Summary(),
		Lyrics:          song.Lyrics,
		DurationSeconds: song.DurationSeconds,
		AudioURL:        song.AudioURL,
		Performances:    make([]PerformanceView, 0, len(song.Performances)),
		CreatedAt:       song.CreatedAt,
	}
	for _, p := range song.Performances {
		pv := PerformanceView{
			ID:        p.ID,
			AudioURL:  p.AudioURL,
			Singer:    author(p.UserID),
			Likes:     p.Likes.Len(),
			LikedBy:   append([]string{}, p.Likes...),
			Comments:  make([]CommentView, 0, len(p.Comments)),
			CreatedAt: p.CreatedAt,
		}
		for _, c := range p.Comments {
			pv.Comments = append(pv.Comments, CommentView{ID: c.ID, Text: c.Text, Author: author(c.UserID), CreatedAt: c.CreatedAt})
		}
		d.Performances = append(d.Performances, pv)
	}
	return d, nil
}

type CreateSongInput struct {
	Title           string
	Artist          string
	Lyrics          string
	DurationSeconds int
	CoverURL        string
	AudioURL        string
	Genre           string
	Difficulty      int
}

func (s *SongService) Create(ctx context.Context, in CreateSongInput) (*entity.Song, error) {
	genre := entity.Genre(strings.ToLower(strings.TrimSpace(in.Genre)))
	if genre == "" {
		genre = entity.GenreOther
	}
	switch {
	case !genre.Valid():
		return nil, ErrInvalidGenre
	case in.Difficulty < entity.MinDifficulty || in.Difficulty > entity.MaxDifficulty:
		return nil, ErrInvalidDifficulty
	case in.DurationSeconds <= 0:
		return nil, ErrInvalidDuration
	}
	song := &entity.Song{
		Title:           strings.TrimSpace(in.Title),
		Artist:          strings.TrimSpace(in.Artist),
		Lyrics:          in.Lyrics,
		DurationSeconds: in.DurationSeconds,
		CoverURL:        in.CoverURL,
		AudioURL:        in.AudioURL,
		Genre:           genre,
		Difficulty:      in.Difficulty,
	}
	if err := s.Stores.Songs.Create(ctx, song); err != nil {
		return nil, err
	}
	s.indexSong(ctx, song)
	return song, nil
}

func (s *SongService) indexSong(ctx context.Context, song *entity.Song) {
	if s.ES == nil || s.ESSongsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         song.ID,
		"title":      song.Title,
		"artist":     song.Artist,
		"genre":      song.Genre,
		"popularity": song.Popularity,
	}
	if err := helpers.ESIndexDoc(ctx, s.ES, s.ESSongsIndex, song.ID, doc); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("song_id", song.ID).Warn("es index failed")
	}
}

// Search matches title and artist through Elasticsearch and falls back to the
// database search when it is not configured or fails.
func (s *SongService) Search(ctx context.Context, q string, size int) ([]entity.SongSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []entity.SongSummary{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	if s.ES != nil && s.ESSongsIndex != "" {
		ids, err := helpers.ESMultiMatch(ctx, s.ES, s.ESSongsIndex, q, []string{"title^2", "artist"}, size)
		if err == nil {
			return s.Stores.Songs.Summaries(ctx, ids)
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("es song search failed, using database")
		}
	}
	items, _, err := s.Stores.Songs.List(ctx, repo.SongFilter{Search: q}, repo.Page{Page: 1, Limit: size})
	return items, err
}

// PerformanceResult is returned after a performance was recorded.
type PerformanceResult struct {
	Song          *entity.Song
	Performance   *entity.Performance
	PointsAwarded int64
	Level         int
}

// RecordPerformance appends a performance by userID and grants the performer
// points. Song then user are locked for the whole unit of work.
func (s *SongService) RecordPerformance(ctx context.Context, songID, userID, audioURL string) (*PerformanceResult, error) {
	var (
		res PerformanceResult
		g   granted
	)
	err := s.Stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		song, err := s.Stores.Songs.GetByIDForUpdate(ctx, songID)
		if err != nil {
			return orNotFound(err, ledger.ErrSongNotFound)
		}
		performer, err := s.Stores.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return orNotFound(err, ErrUserNotFound)
		}
		previous := performer.Level
		p, award, err := s.Engagement.RecordPerformance(song, performer, audioURL)
		if err != nil {
			return err
		}
		if err := s.Stores.Songs.AppendPerformance(ctx, p); err != nil {
			return err
		}
		if err := s.Stores.Songs.UpdatePopularity(ctx, song.ID, song.Popularity); err != nil {
			return err
		}
		if err := s.Stores.Users.Update(ctx, performer); err != nil {
			return err
		}
		if g, err = s.Points.record(ctx, performer, previous, award); err != nil {
			return err
		}
		res = PerformanceResult{Song: song, Performance: p, PointsAwarded: award.Points, Level: performer.Level}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Points.announce(ctx, g)
	s.indexSong(ctx, res.Song)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"song_id":        songID,
			"performance_id": res.Performance.ID,
			"user_id":        userID,
			"popularity":     res.Song.Popularity,
		}).Info("performance recorded")
	}
	return &res, nil
}

// credit applies an optional award to the performance author inside the
// current unit of work.
func (s *SongService) credit(ctx context.Context, award *entity.PointAward) ([]granted, error) {
	if award == nil {
		return nil, nil
	}
	author, err := s.Stores.Users.GetByIDForUpdate(ctx, award.UserID)
	if err != nil {
		return nil, orNotFound(err, ErrUserNotFound)
	}
	previous, err := ledger.ApplyAward(author, *award)
	if err != nil {
		return nil, err
	}
	if err := s.Stores.Users.Update(ctx, author); err != nil {
		return nil, err
	}
	g, err := s.Points.record(ctx, author, previous, *award)
	if err != nil {
		return nil, err
	}
	return []granted{g}, nil
}

// actor checks that the acting user exists inside the current unit of work.
func (s *SongService) actor(ctx context.Context, userID string) error {
	if _, err := s.Stores.Users.GetByID(ctx, userID); err != nil {
		return orNotFound(err, ErrUserNotFound)
	}
	return nil
}

// LikeResult reports the like state after a toggle.
type LikeResult struct {
	Liked      bool
	Likes      int
	Popularity int64
}

func (s *SongService) ToggleLike(ctx context.Context, songID, performanceID, userID string) (*LikeResult, error) {
	var (
		res LikeResult
		gs  []granted
	)
	err := s.Stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		song, err := s.Stores.Songs.GetByIDForUpdate(ctx, songID)
		if err != nil {
			return orNotFound(err, ledger.ErrSongNotFound)
		}
		if err := s.actor(ctx, userID); err != nil {
			return err
		}
		out, err := s.Engagement.ToggleLike(song, performanceID, userID)
		if err != nil {
			return err
		}
		if out.Liked {
			err = s.Stores.Songs.AddLike(ctx, performanceID, userID)
		} else {
			err = s.Stores.Songs.RemoveLike(ctx, performanceID, userID)
		}
		if err != nil {
			return err
		}
		if err := s.Stores.Songs.UpdatePopularity(ctx, song.ID, song.Popularity); err != nil {
			return err
		}
		if gs, err = s.credit(ctx, out.Award); err != nil {
			return err
		}
		res = LikeResult{Liked: out.Liked, Likes: out.Performance.Likes.Len(), Popularity: song.Popularity}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Points.announce(ctx, gs...)
	return &res, nil
}

func (s *SongService) AddComment(ctx context.Context, songID, performanceID, userID, text string) (*entity.Comment, error) {
	var (
		comment entity.Comment
		gs      []granted
	)
	err := s.Stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		song, err := s.Stores.Songs.GetByIDForUpdate(ctx, songID)
		if err != nil {
			return orNotFound(err, ledger.ErrSongNotFound)
		}
		if err := s.actor(ctx, userID); err != nil {
			return err
		}
		out, err := s.Engagement.AddComment(song, performanceID, userID, text)
		if err != nil {
			return err
		}
		if err := s.Stores.Songs.AppendComment(ctx, performanceID, out.Comment); err != nil {
			return err
		}
		if err := s.Stores.Songs.UpdatePopularity(ctx, song.ID, song.Popularity); err != nil {
			return err
		}
		if gs, err = s.credit(ctx, out.Award); err != nil {
			return err
		}
		comment = out.Comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Points.announce(ctx, gs...)
	return &comment, nil
}

// UploadAudio stores a recording in GCS and returns its public URL, which is
// then passed to RecordPerformance.
func (s *SongService) UploadAudio(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", ErrStorageNotReady
	}
	return helpers.UploadObject(ctx, s.GCS, s.GCSBucket, helpers.ObjectPath("audio", userID, filename), contentType, r)
}
