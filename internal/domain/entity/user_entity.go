package entity

import (
	"errors"
	"time"

	"github.com/oksasatya/karaoke-social-api/internal/domain/scoring"
)

const DefaultAvatarURL = "/avatars/default.jpg"

var ErrSelfFollow = errors.New("cannot follow yourself")

// User is the aggregate root for a singer. Level is derived from Points and is
// only ever changed through AddPoints.
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID            string
	Email         string
	Password      string
	Name          string
	AvatarURL     string
	Level         int
	Points        int64
	Coins         int64
	Followers     IDSet
	Following     IDSet
	FavoriteSongs IDSet
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewUser builds a fresh account at level 1 with the given starting coins.
func NewUser(name, email, passwordHash string, startingCoins int64) *User {
	if startingCoins < 0 {
		startingCoins = 0
	}
	return &User{
		Email:     email,
		Password:  passwordHash,
		Name:      name,
		AvatarURL: DefaultAvatarURL,
		Level:     scoring.CalculateLevel(0),
		Coins:     startingCoins,
	}
}

// AddPoints grants n points (ignored when n <= 0) and recomputes the level.
// It returns the level before the grant.
func (u *User) AddPoints(n int64) (previousLevel int) {
	previousLevel = u.Level
	if n > 0 {
		u.Points += n
	}
	u.RecomputeLevel()
	return previousLevel
}

// RecomputeLevel restores the level invariant after points were loaded or
// corrected.
func (u *User) RecomputeLevel() int {
	u.Level = scoring.CalculateLevel(u.Points)
	return u.Level
}

// ToggleFollow flips whether follower follows target, keeping both sides of
// the relation in step. It returns true when follower now follows target.
func ToggleFollow(follower, target *User) (bool, error) {
	if follower.ID == target.ID {
		return false, ErrSelfFollow
	}
	if follower.Following.Has(target.ID) {
		follower.Following.Remove(target.ID)
		target.Followers.Remove(follower.ID)
		return false, nil
	}
	follower.Following.Add(target.ID)
	target.Followers.Add(follower.ID)
	return true, nil
}

// ToggleFavorite flips songID in the user's favorites and reports the new state.
func (u *User) ToggleFavorite(songID string) bool {
	if u.FavoriteSongs.Remove(songID) {
		return false
	}
	u.FavoriteSongs.Add(songID)
	return true
}

// Clone returns a deep copy so stores can hand out snapshots.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Followers = u.Followers.Clone()
	c.Following = u.Following.Clone()
	c.FavoriteSongs = u.FavoriteSongs.Clone()
	return &c
}

// UserSummary is the public card shown next to performances, comments and
// gift history.
type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Level     int    `json:"level"`
	Points    int64  `json:"points"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL, Level: u.Level, Points: u.Points}
}
