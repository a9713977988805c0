package entity

import (
	"time"

	"github.com/oksasatya/karaoke-social-api/internal/domain/scoring"
)

type Genre string

const (
	GenrePop       Genre = "pop"
	GenreRock      Genre = "rock"
	GenreSertanejo Genre = "sertanejo"
	GenreMPB       Genre = "mpb"
	GenreFunk      Genre = "funk"
	GenreRap       Genre = "rap"
	GenreOther     Genre = "other"
)

// Genres lists every accepted genre in display order.
var Genres = []Genre{GenrePop, GenreRock, GenreSertanejo, GenreMPB, GenreFunk, GenreRap, GenreOther}

func (g Genre) Valid() bool {
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}

const (
	DefaultCoverURL = "/covers/default.jpg"
	MinDifficulty   = 1
	MaxDifficulty   = 5
)

// Song is the aggregate root for a catalog entry and every performance recorded
// on it. Popularity is derived and stored so listings can sort on it.
type Song struct {
	ID              string
	Title           string
	Artist          string
	Lyrics          string
	DurationSeconds int
	CoverURL        string
	AudioURL        string
	Genre           Genre
	Difficulty      int
	Popularity      int64
	Performances    []*Performance
	CreatedAt       time.Time
}

// Performance is one recording of a song by one user.
type Performance struct {
	ID        string
	SongID    string
	UserID    string
	AudioURL  string
	Likes     IDSet
	Comments  []Comment
	CreatedAt time.Time
}

type Comment struct {
	ID        string
	UserID    string
	Text      string
	CreatedAt time.Time
}

// Performance looks up a performance by id within the song.
func (s *Song) Performance(id string) *Performance {
	for _, p := range s.Performances {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// RecomputePopularity stores and returns 2*performances + likes + comments.
func (s *Song) RecomputePopularity() int64 {
	likes, comments := 0, 0
	for _, p := range s.Performances {
		likes += p.Likes.Len()
		comments += len(p.Comments)
	}
	s.Popularity = scoring.Popularity(len(s.Performances), likes, comments)
	return s.Popularity
}

// Clone returns a deep copy so stores can hand out snapshots.
func (s *Song) Clone() *Song {
	if s == nil {
		return nil
	}
	c := *s
	c.Performances = make([]*Performance, 0, len(s.Performances))
	for _, p := range s.Performances {
		pc := *p
		pc.Likes = p.Likes.Clone()
		pc.Comments = append([]Comment(nil), p.Comments...)
		c.Performances = append(c.Performances, &pc)
	}
	return &c
}

// SongSummary is the listing projection of a song.
type SongSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	CoverURL   string `json:"cover_url"`
	Genre      Genre  `json:"genre"`
	Difficulty int    `json:"difficulty"`
	Popularity int64  `json:"popularity"`
}

func (s *Song) Summary() SongSummary {
	return SongSummary{
		ID:         s.ID,
		Title:      s.Title,
		Artist:     s.Artist,
		CoverURL:   s.CoverURL,
		Genre:      s.Genre,
		Difficulty: s.Difficulty,
		Popularity: s.Popularity,
	}
}
