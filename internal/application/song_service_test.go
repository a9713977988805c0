package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/ledger"
)

func TestSongService_RecordPerformance(t *testing.T) {
	f := newFixture()
	svc := NewSongService(f.stores, f.points, nil)
	ctx := context.Background()

	singer := f.user(t, "ana", 0)
	song := f.song(t, "Evidencias", entity.GenreSertanejo)

	res, err := svc.RecordPerformance(ctx, song.ID, singer.ID, "https://cdn/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.PointsAwarded)
	assert.Equal(t, 3, res.Level)
	assert.Equal(t, int64(2), res.Song.Popularity)

	got := f.reload(t, singer.ID)
	assert.Equal(t, int64(100), got.Points)
	assert.Equal(t, 3, got.Level)

	stored, err := f.stores.Songs.GetByID(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, stored.Performances, 1)
	assert.Equal(t, singer.ID, stored.Performances[0].UserID)
	assert.Equal(t, int64(2), stored.Popularity)

	assert.Equal(t, []string{"level_up"}, f.pub.types())

	_, err = svc.RecordPerformance(ctx, "missing", singer.ID, "x")
	assert.ErrorIs(t, err, ledger.ErrSongNotFound)
	_, err = svc.RecordPerformance(ctx, song.ID, singer.ID, " ")
	assert.Equal(t, ledger.KindValidation, ledger.KindOf(err))
	assert.Equal(t, int64(100), f.reload(t, singer.ID).Points)
}

func TestSongService_RelikeAwardsTheAuthorAgain(t *testing.T) {
	f := newFixture()
	svc := NewSongService(f.stores, f.points, nil)
	ctx := context.Background()

	singer := f.user(t, "ana", 0)
	fan := f.user(t, "bia", 0)
	song := f.song(t, "Garota de Ipanema", entity.GenreMPB)
	res, err := svc.RecordPerformance(ctx, song.ID, singer.ID, "a.mp3")
	require.NoError(t, err)
	pid := res.Performance.ID

	like, err := svc.ToggleLike(ctx, song.ID, pid, fan.ID)
	require.NoError(t, err)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.Likes)
	assert.Equal(t, int64(3), like.Popularity)
	assert.Equal(t, int64(110), f.reload(t, singer.ID).Points)

	like, err = svc.ToggleLike(ctx, song.ID, pid, fan.ID)
	require.NoError(t, err)
	assert.False(t, like.Liked)
	assert.Equal(t, int64(2), like.Popularity)
	assert.Equal(t, int64(110), f.reload(t, singer.ID).Points)

	like, err = svc.ToggleLike(ctx, song.ID, pid, fan.ID)
	require.NoError(t, err)
	assert.True(t, like.Liked)
	assert.Equal(t, int64(3), like.Popularity)
	assert.Equal(t, int64(120), f.reload(t, singer.ID).Points)

	like, err = svc.ToggleLike(ctx, song.ID, pid, singer.ID)
	require.NoError(t, err)
	assert.True(t, like.Liked)
	assert.Equal(t, int64(120), f.reload(t, singer.ID).Points)

	_, err = svc.ToggleLike(ctx, song.ID, "nope", fan.ID)
	assert.ErrorIs(t, err, ledger.ErrPerformanceNotFound)

	stored, err := f.stores.Songs.GetByID(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{fan.ID, singer.ID}, []string(stored.Performances[0].Likes))
	assert.Equal(t, int64(4), stored.Popularity)

	awards, err := f.stores.Awards.ListByUser(ctx, singer.ID, 10)
	require.NoError(t, err)
	var likes int
	for _, a := range awards {
		if a.Reason == entity.AwardLikeReceived {
			likes++
			assert.Equal(t, fan.ID, a.ActorID)
		}
	}
	assert.Equal(t, 2, likes)
}

func TestSongService_UnknownActorIsRejected(t *testing.T) {
	f := newFixture()
	svc := NewSongService(f.stores, f.points, nil)
	ctx := context.Background()

	singer := f.user(t, "ana", 0)
	song := f.song(t, "Shallow", entity.GenrePop)
	res, err := svc.RecordPerformance(ctx, song.ID, singer.ID, "a.mp3")
	require.NoError(t, err)
	pid := res.Performance.ID

	_, err = svc.ToggleLike(ctx, song.ID, pid, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, ledger.KindNotFound, ledger.KindOf(err))
	_, err = svc.AddComment(ctx, song.ID, pid, "ghost", "hi")
	assert.ErrorIs(t, err, ErrUserNotFound)

	stored, err := f.stores.Songs.GetByID(ctx, song.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Performances[0].Likes.Len())
	assert.Empty(t, stored.Performances[0].Comments)
	assert.Equal(t, int64(2), stored.Popularity)
	assert.Equal(t, int64(100), f.reload(t, singer.ID).Points)
}

func TestSongService_CommentRollsBackWhenAWriteFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	singer := f.user(t, "ana", 0)
	fan := f.user(t, "bia", 0)
	song := f.song(t, "Aquarela", entity.GenreMPB)
	res, err := NewSongService(f.stores, f.points, nil).RecordPerformance(ctx, song.ID, singer.ID, "a.mp3")
	require.NoError(t, err)

	stores := f.stores
	stores.Songs = brokenSongs{f.stores.Songs}
	svc := NewSongService(stores, f.points, nil)

	_, err = svc.AddComment(ctx, song.ID, res.Performance.ID, fan.ID, "bravo")
	require.ErrorIs(t, err, errDiskFull)
	_, err = svc.ToggleLike(ctx, song.ID, res.Performance.ID, fan.ID)
	require.ErrorIs(t, err, errDiskFull)

	stored, err := f.stores.Songs.GetByID(ctx, song.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Performances[0].Comments)
	assert.Zero(t, stored.Performances[0].Likes.Len())
	assert.Equal(t, int64(100), f.reload(t, singer.ID).Points)
}

func TestSongService_Comments(t *testing.T) {
	f := newFixture()
	svc := NewSongService(f.stores, f.points, nil)
	ctx := context.Background()

	singer := f.user(t, "ana", 0)
	fan := f.user(t, "bia", 0)
	song := f.song(t, "Aquarela", entity.GenreMPB)
	res, err := svc.RecordPerformance(ctx, song.ID, singer.ID, "a.mp3")
	require.NoError(t, err)
	pid := res.Performance.ID

	c, err := svc.AddComment(ctx, song.ID, pid, fan.ID, "  bravo  ")
	require.NoError(t, err)
	assert.Equal(t, "bravo", c.Text)
	assert.Equal(t, int64(105), f.reload(t, singer.ID).Points)

	_, err = svc.AddComment(ctx, song.ID, pid, singer.ID, "thanks")
	require.NoError(t, err)
	assert.Equal(t, int64(105), f.reload(t, singer.ID).Points)

	_, err = svc.AddComment(ctx, song.ID, pid, fan.ID, "")
	assert.ErrorIs(t, err, ledger.ErrEmptyComment)

	detail, err := svc.Get(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), detail.Popularity)
	require.Len(t, detail.Performances, 1)
	pv := detail.Performances[0]
	assert.Equal(t, "ana", pv.Singer.Name)
	require.Len(t, pv.Comments, 2)
	assert.Equal(t, "bia", pv.Comments[0].Author.Name)
}

func TestSongService_ListAndCreate(t *testing.T) {
	f := newFixture()
	svc := NewSongService(f.stores, f.points, nil)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := svc.Create(ctx, CreateSongInput{Title: title, Artist: "Band", Genre: "Rock", Difficulty: 3, DurationSeconds: 200})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, CreateSongInput{Title: "Baile", Artist: "MC", Genre: "funk", Difficulty: 1, DurationSeconds: 150})
	require.NoError(t, err)

	page, err := svc.List(ctx, "rock", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 3, page.Total)

	page, err = svc.List(ctx, "", "mc", 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, entity.DefaultCoverURL, page.Items[0].CoverURL)

	_, err = svc.List(ctx, "jazz", "", 1, 10)
	assert.ErrorIs(t, err, ErrInvalidGenre)

	_, err = svc.Create(ctx, CreateSongInput{Title: "X", Artist: "Y", Genre: "pop", Difficulty: 6, DurationSeconds: 10})
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
	_, err = svc.Create(ctx, CreateSongInput{Title: "X", Artist: "Y", Genre: "pop", Difficulty: 2})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	found, err := svc.Search(ctx, "two", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Two", found[0].Title)

	_, err = svc.UploadAudio(ctx, "u", nil, "a.mp3", "audio/mpeg")
	assert.ErrorIs(t, err, ErrStorageNotReady)
}
