// Package ledger applies the points and coins rules to in-memory aggregates.
// It never loads or saves anything; callers persist the mutated entities.
package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/scoring"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// IDFunc mints ids for new performances, comments, history records and awards.
type IDFunc func() string

func defaultClock() time.Time { return time.Now().UTC() }

// EngagementLedger awards points for performances, likes and comments.
type EngagementLedger struct {
	Now   Clock
	NewID IDFunc
}

func NewEngagementLedger() *EngagementLedger {
	return &EngagementLedger{Now: defaultClock, NewID: uuid.NewString}
}

// LikeOutcome is the result of ToggleLike. Award is nil when no points are due.
type LikeOutcome struct {
	Liked       bool
	Performance *entity.Performance
	Award       *entity.PointAward
}

// CommentOutcome is the result of AddComment. Award is nil for self-comments.
type CommentOutcome struct {
	Comment     entity.Comment
	Performance *entity.Performance
	Award       *entity.PointAward
}

func (l *EngagementLedger) award(userID, actorID string, reason entity.AwardReason, points int64, sourceID string) entity.PointAward {
	return entity.PointAward{
		ID:        l.NewID(),
		UserID:    userID,
		ActorID:   actorID,
		Reason:    reason,
		Points:    points,
		SourceID:  sourceID,
		CreatedAt: l.Now(),
	}
}

// RecordPerformance appends a new performance by performer, recomputes the
// song's popularity and grants the performer the performance points.
func (l *EngagementLedger) RecordPerformance(song *entity.Song, performer *entity.User, audioRef string) (*entity.Performance, entity.PointAward, error) {
	if song == nil {
		return nil, entity.PointAward{}, ErrSongNotFound
	}
	if performer == nil {
		return nil, entity.PointAward{}, ErrUserNotFound
	}
	if strings.TrimSpace(audioRef) == "" {
		return nil, entity.PointAward{}, ErrEmptyAudio
	}
	p := &entity.Performance{
		ID:        l.NewID(),
		SongID:    song.ID,
		UserID:    performer.ID,
		AudioURL:  audioRef,
		CreatedAt: l.Now(),
	}
	song.Performances = append(song.Performances, p)
	song.RecomputePopularity()

	a := l.award(performer.ID, performer.ID, entity.AwardPerformance, scoring.PerformancePoints, p.ID)
	performer.AddPoints(a.Points)
	return p, a, nil
}

// ToggleLike likes or un-likes a performance for userID. A new like from
// someone other than the author yields an award for the author; un-liking
// never takes points back.
func (l *EngagementLedger) ToggleLike(song *entity.Song, performanceID, userID string) (LikeOutcome, error) {
	if song == nil {
		return LikeOutcome{}, ErrSongNotFound
	}
	p := song.Performance(performanceID)
	if p == nil {
		return LikeOutcome{}, ErrPerformanceNotFound
	}
	out := LikeOutcome{Performance: p}
	if p.Likes.Add(userID) {
		out.Liked = true
		if p.UserID != userID {
			a := l.award(p.UserID, userID, entity.AwardLikeReceived, scoring.LikePoints, p.ID)
			out.Award = &a
		}
	} else {
		p.Likes.Remove(userID)
	}
	song.RecomputePopularity()
	return out, nil
}

// AddComment appends a comment by userID. A comment from someone other than
// the author yields an award for the author.
func (l *EngagementLedger) AddComment(song *entity.Song, performanceID, userID, text string) (CommentOutcome, error) {
	if song == nil {
		return CommentOutcome{}, ErrSongNotFound
	}
	p := song.Performance(performanceID)
	if p == nil {
		return CommentOutcome{}, ErrPerformanceNotFound
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return CommentOutcome{}, ErrEmptyComment
	}
	c := entity.Comment{ID: l.NewID(), UserID: userID, Text: text, CreatedAt: l.Now()}
	p.Comments = append(p.Comments, c)
	out := CommentOutcome{Comment: c, Performance: p}
	if p.UserID != userID {
		a := l.award(p.UserID, userID, entity.AwardCommentReceived, scoring.CommentPoints, c.ID)
		out.Award = &a
	}
	song.RecomputePopularity()
	return out, nil
}

// ApplyAward credits the award to its recipient and recomputes the level. It
// returns the level before the award.
func ApplyAward(u *entity.User, a entity.PointAward) (int, error) {
	if u == nil {
		return 0, ErrUserNotFound
	}
	if u.ID != a.UserID {
		return u.Level, ErrAwardRecipient
	}
	return u.AddPoints(a.Points), nil
}
