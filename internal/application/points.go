package application

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	repo "github.com/oksasatya/karaoke-social-api/internal/domain/repository"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
	"github.com/oksasatya/karaoke-social-api/pkg/metrics"
)

// Points persists awards inside a unit of work and publishes their effects
// (metrics, leaderboard, level-up mail) once the unit committed.
type Points struct {
	Awards repo.PointAwardRepository
	Redis  *redis.Client
	Notify *Notifier
	Logger *logrus.Logger
}

// granted is an award already applied to its recipient, waiting for commit.
type granted struct {
	user          *entity.User
	previousLevel int
	award         entity.PointAward
}

func (p *Points) record(ctx context.Context, u *entity.User, previousLevel int, a entity.PointAward) (granted, error) {
	if err := p.Awards.Append(ctx, a); err != nil {
		return granted{}, err
	}
	return granted{user: u, previousLevel: previousLevel, award: a}, nil
}

func (p *Points) announce(ctx context.Context, gs ...granted) {
	for _, g := range gs {
		if g.user == nil {
			continue
		}
		metrics.PointsAwarded.WithLabelValues(string(g.award.Reason)).Add(float64(g.award.Points))
		if p.Redis != nil {
			if err := helpers.RedisSetScore(ctx, p.Redis, helpers.KeyLeaderboard, g.user.ID, float64(g.user.Points)); err != nil && p.Logger != nil {
				p.Logger.WithError(err).WithField("user_id", g.user.ID).Warn("leaderboard update failed")
			}
		}
		if g.user.Level > g.previousLevel {
			metrics.LevelUps.Inc()
			if p.Logger != nil {
				p.Logger.WithFields(logrus.Fields{
					"user_id": g.user.ID,
					"from":    g.previousLevel,
					"to":      g.user.Level,
					"points":  g.user.Points,
				}).Info("level up")
			}
			p.Notify.LevelUp(ctx, g.user, g.previousLevel)
		}
	}
}

// History lists the user's awards newest first.
func (p *Points) History(ctx context.Context, userID string, limit int) ([]entity.PointAward, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return p.Awards.ListByUser(ctx, userID, limit)
}
