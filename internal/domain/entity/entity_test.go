package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSet(t *testing.T) {
	var s IDSet
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("a"))
	assert.True(t, s.Add("b"))
	c := s.Clone()
	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, IDSet{"b"}, s)
	assert.Equal(t, IDSet{"a", "b"}, c)
}

func TestNewUserStartsAtLevelOne(t *testing.T) {
	u := NewUser("Ana", "ana@example.com", "hash", 100)
	assert.Equal(t, 1, u.Level)
	assert.Equal(t, int64(0), u.Points)
	assert.Equal(t, int64(100), u.Coins)
	assert.Equal(t, DefaultAvatarURL, u.AvatarURL)
}

func TestAddPointsRecomputesLevel(t *testing.T) {
	u := NewUser("Ana", "ana@example.com", "hash", 0)
	prev := u.AddPoints(9)
	assert.Equal(t, 1, prev)
	assert.Equal(t, 1, u.Level)
	prev = u.AddPoints(1)
	assert.Equal(t, 1, prev)
	assert.Equal(t, 2, u.Level)
	u.AddPoints(-50)
	assert.Equal(t, int64(10), u.Points)
}

func TestToggleFollowKeepsBothSides(t *testing.T) {
	a := &User{ID: "a"}
	b := &User{ID: "b"}

	following, err := ToggleFollow(a, b)
	require.NoError(t, err)
	assert.True(t, following)
	assert.True(t, a.Following.Has("b"))
	assert.True(t, b.Followers.Has("a"))

	following, err = ToggleFollow(a, b)
	require.NoError(t, err)
	assert.False(t, following)
	assert.Empty(t, a.Following)
	assert.Empty(t, b.Followers)

	_, err = ToggleFollow(a, a)
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestToggleFavorite(t *testing.T) {
	u := &User{ID: "u"}
	assert.True(t, u.ToggleFavorite("s1"))
	assert.False(t, u.ToggleFavorite("s1"))
	assert.Empty(t, u.FavoriteSongs)
}

func TestSongRecomputePopularity(t *testing.T) {
	s := &Song{Performances: []*Performance{
		{ID: "p1", Likes: IDSet{"u1", "u2"}, Comments: []Comment{{ID: "c1"}}},
		{ID: "p2"},
	}}
	assert.Equal(t, int64(2*2+2+1), s.RecomputePopularity())
	assert.Equal(t, int64(7), s.Popularity)
	assert.NotNil(t, s.Performance("p2"))
	assert.Nil(t, s.Performance("missing"))
}

func TestSongCloneIsDeep(t *testing.T) {
	s := &Song{Performances: []*Performance{{ID: "p1", Likes: IDSet{"u1"}}}}
	c := s.Clone()
	c.Performances[0].Likes.Add("u2")
	c.Performances[0].Comments = append(c.Performances[0].Comments, Comment{ID: "c"})
	assert.Equal(t, 1, s.Performances[0].Likes.Len())
	assert.Empty(t, s.Performances[0].Comments)
}

func TestGiftTierDrivesBonusPoints(t *testing.T) {
	g := NewGift("Mic", "golden mic", "/icons/mic.png", 50, TierSpecial)
	assert.Equal(t, int64(50), g.BonusPoints)
	assert.True(t, g.Available)

	g.SetTier(TierLegendary)
	assert.Equal(t, int64(1000), g.BonusPoints)

	g.SetTier("unknown")
	assert.Equal(t, int64(0), g.BonusPoints)
	assert.False(t, g.Tier.Valid())

	d := NewGift("Rose", "a rose", "/icons/rose.png", 5, "")
	assert.Equal(t, TierBasic, d.Tier)
	assert.Equal(t, int64(10), d.BonusPoints)
}

func TestGenreValid(t *testing.T) {
	assert.True(t, GenreMPB.Valid())
	assert.False(t, Genre("jazz").Valid())
}
