package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/ledger"
	"github.com/oksasatya/karaoke-social-api/pkg/helpers"
)

func newUserService(f *fixture) *UserService {
	svc := NewUserService(f.stores, helpers.NewJWTManager("access", "refresh", time.Minute, time.Hour), nil, nil)
	svc.Notify = f.notify
	svc.Points = f.points
	return svc
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	f := newFixture()
	svc := newUserService(f)
	ctx := context.Background()

	u, err := svc.Register(ctx, " Ana ", "Ana@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, int64(100), u.Coins)
	assert.Equal(t, 1, u.Level)
	assert.Equal(t, []string{"welcome"}, f.pub.types())

	admin, err := svc.IsAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, admin)

	_, err = svc.Register(ctx, "Other", "ana@example.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailTaken)

	resp, pair, err := svc.Login(ctx, "ANA@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.UserID)
	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, _, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, uid, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
	_, _, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_FollowAndProfile(t *testing.T) {
	f := newFixture()
	svc := newUserService(f)
	ctx := context.Background()

	ana := f.user(t, "ana", 0)
	bia := f.user(t, "bia", 0)
	song := f.song(t, "Trem Bala", entity.GenrePop)

	res, err := svc.ToggleFollow(ctx, ana.ID, bia.ID)
	require.NoError(t, err)
	assert.True(t, res.Following)
	assert.Equal(t, 1, res.FollowersCount)

	fav, err := svc.ToggleFavoriteSong(ctx, ana.ID, song.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	p, err := svc.GetProfile(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, p.Following, 1)
	assert.Equal(t, "bia", p.Following[0].Name)
	assert.Empty(t, p.Followers)
	require.Len(t, p.FavoriteSongs, 1)
	assert.Equal(t, "Trem Bala", p.FavoriteSongs[0].Title)

	p, err = svc.GetProfile(ctx, bia.ID)
	require.NoError(t, err)
	require.Len(t, p.Followers, 1)
	assert.Equal(t, ana.ID, p.Followers[0].ID)

	res, err = svc.ToggleFollow(ctx, ana.ID, bia.ID)
	require.NoError(t, err)
	assert.False(t, res.Following)
	assert.Empty(t, f.reload(t, bia.ID).Followers)
	assert.Empty(t, f.reload(t, ana.ID).Following)

	_, err = svc.ToggleFollow(ctx, ana.ID, ana.ID)
	assert.ErrorIs(t, err, entity.ErrSelfFollow)
	_, err = svc.ToggleFollow(ctx, ana.ID, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.ToggleFavoriteSong(ctx, ana.ID, "nope")
	assert.ErrorIs(t, err, ledger.ErrSongNotFound)
}

func TestUserService_UpdateProfile(t *testing.T) {
	f := newFixture()
	svc := newUserService(f)
	ctx := context.Background()
	ana := f.user(t, "ana", 0)

	u, err := svc.UpdateProfile(ctx, ana.ID, UpdateProfileInput{Name: "Ana Maria"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", u.Name)
	assert.Equal(t, entity.DefaultAvatarURL, u.AvatarURL)

	_, err = svc.UpdateProfile(ctx, "ghost", UpdateProfileInput{Name: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.UploadAvatar(ctx, ana.ID, nil, "a.png", "image/png")
	assert.ErrorIs(t, err, ErrStorageNotReady)
}

func TestUserService_BoardsFallBackToStore(t *testing.T) {
	f := newFixture()
	svc := newUserService(f)
	ctx := context.Background()

	low := f.user(t, "low", 0)
	high := f.user(t, "high", 0)
	high.AddPoints(500)
	require.NoError(t, f.stores.Users.Update(ctx, high))

	top, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, high.ID, top[0].ID)
	assert.Equal(t, low.ID, top[1].ID)

	online, err := svc.Online(ctx)
	require.NoError(t, err)
	assert.Len(t, online, 2)

	found, err := svc.SearchUsers(ctx, "high", 5)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUserService_PointsHistory(t *testing.T) {
	f := newFixture()
	svc := newUserService(f)
	songs := NewSongService(f.stores, f.points, nil)
	ctx := context.Background()

	ana := f.user(t, "ana", 0)
	song := f.song(t, "Sozinho", entity.GenrePop)
	_, err := songs.RecordPerformance(ctx, song.ID, ana.ID, "a.mp3")
	require.NoError(t, err)

	awards, err := svc.PointsHistory(ctx, ana.ID, 0)
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Equal(t, entity.AwardPerformance, awards[0].Reason)
	assert.Equal(t, int64(100), awards[0].Points)

	_, err = svc.PointsHistory(ctx, "ghost", 10)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "tok", "newsecret"), ErrResetUnavailable)
	link, err := svc.StartPasswordReset(ctx, "ana@example.com", "http://x/reset")
	require.NoError(t, err)
	assert.Empty(t, link)
}
