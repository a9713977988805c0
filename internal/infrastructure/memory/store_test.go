package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

func seedUser(t *testing.T, s *Store, name string) *entity.User {
	t.Helper()
	u := entity.NewUser(name, name+"@example.com", "hash", 100)
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "ana")

	got, err := s.Users().GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, int64(100), got.Coins)

	err = s.Users().Create(ctx, entity.NewUser("dup", "ana@example.com", "hash", 0))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = s.Users().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "ana")

	got, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Coins = 0

	again, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.Coins)
}

func TestUserRepository_SetFollowKeepsBothSides(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a, b := seedUser(t, s, "a"), seedUser(t, s, "b")

	require.NoError(t, s.Users().SetFollow(ctx, a.ID, b.ID, true))
	ga, _ := s.Users().GetByID(ctx, a.ID)
	gb, _ := s.Users().GetByID(ctx, b.ID)
	assert.True(t, ga.Following.Has(b.ID))
	assert.True(t, gb.Followers.Has(a.ID))

	require.NoError(t, s.Users().SetFollow(ctx, a.ID, b.ID, false))
	ga, _ = s.Users().GetByID(ctx, a.ID)
	gb, _ = s.Users().GetByID(ctx, b.ID)
	assert.Empty(t, ga.Following)
	assert.Empty(t, gb.Followers)
}

func TestStore_WithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "ana")
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		got, err := s.Users().GetByIDForUpdate(ctx, u.ID)
		require.NoError(t, err)
		got.Coins = 1
		require.NoError(t, s.Users().Update(ctx, got))
		require.NoError(t, s.Awards().Append(ctx, entity.PointAward{ID: "a1", UserID: u.ID}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Coins)

	awards, err := s.Awards().ListByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, awards)
}

func TestStore_WithinTxCommits(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "ana")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		got, err := s.Users().GetByIDForUpdate(ctx, u.ID)
		if err != nil {
			return err
		}
		got.Coins = 42
		// nested units join the outer one
		return s.WithinTx(ctx, func(ctx context.Context) error {
			return s.Users().Update(ctx, got)
		})
	})
	require.NoError(t, err)

	got, _ := s.Users().GetByID(ctx, u.ID)
	assert.Equal(t, int64(42), got.Coins)
}

func TestSongRepository_ListFiltersAndPages(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	songs := []*entity.Song{
		{Title: "Evidências", Artist: "Chitãozinho & Xororó", Genre: entity.GenreSertanejo, Popularity: 5},
		{Title: "Garota de Ipanema", Artist: "Tom Jobim", Genre: entity.GenreMPB, Popularity: 9},
		{Title: "Bohemian Rhapsody", Artist: "Queen", Genre: entity.GenreRock, Popularity: 7},
	}
	for _, song := range songs {
		require.NoError(t, s.Songs().Create(ctx, song))
	}

	list, total, err := s.Songs().List(ctx, repository.SongFilter{}, repository.Page{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "Garota de Ipanema", list[0].Title)
	assert.Equal(t, "Bohemian Rhapsody", list[1].Title)
	assert.Equal(t, entity.DefaultCoverURL, list[0].CoverURL)

	list, total, err = s.Songs().List(ctx, repository.SongFilter{}, repository.Page{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 1)

	list, total, err = s.Songs().List(ctx, repository.SongFilter{Search: "queen"}, repository.Page{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Bohemian Rhapsody", list[0].Title)

	_, total, err = s.Songs().List(ctx, repository.SongFilter{Genre: entity.GenreMPB}, repository.Page{Page: 5, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestGiftRepository_History(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a, b := seedUser(t, s, "a"), seedUser(t, s, "b")
	g := entity.NewGift("Rose", "a rose", "/icons/rose.png", 10, entity.TierBasic)
	require.NoError(t, s.Gifts().Create(ctx, g))

	rec := entity.GiftTransferRecord{ID: "t1", GiftID: g.ID, SenderID: a.ID, ReceiverID: b.ID}
	require.NoError(t, s.Gifts().AppendTransfer(ctx, rec))
	assert.ErrorIs(t, s.Gifts().AppendTransfer(ctx, rec), repository.ErrDuplicate)
	assert.ErrorIs(t, s.Gifts().AppendTransfer(ctx, entity.GiftTransferRecord{ID: "t2", GiftID: "missing"}), repository.ErrNotFound)

	received, err := s.Gifts().Received(ctx, b.ID, 10)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, a.ID, received[0].CounterParty)
	assert.Equal(t, "Rose", received[0].GiftName)

	sent, err := s.Gifts().Sent(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, b.ID, sent[0].CounterParty)

	none, err := s.Gifts().Sent(ctx, b.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGiftRepository_CatalogUpdateKeepsHistory(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a, b := seedUser(t, s, "a"), seedUser(t, s, "b")
	g := entity.NewGift("Rose", "", "", 10, entity.TierBasic)
	require.NoError(t, s.Gifts().Create(ctx, g))
	require.NoError(t, s.Gifts().AppendTransfer(ctx, entity.GiftTransferRecord{ID: "t1", GiftID: g.ID, SenderID: a.ID, ReceiverID: b.ID}))

	locked, err := s.Gifts().GetByIDForShare(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, locked.History)

	locked.Available = false
	require.NoError(t, s.Gifts().Update(ctx, locked))

	got, err := s.Gifts().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)
	require.Len(t, got.History, 1)
	assert.Equal(t, "t1", got.History[0].ID)
}

func TestSongRepository_TargetedWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	singer, fan := seedUser(t, s, "ana"), seedUser(t, s, "bia")
	song := &entity.Song{Title: "Shallow", Artist: "Lady Gaga", Genre: entity.GenrePop}
	require.NoError(t, s.Songs().Create(ctx, song))

	p := &entity.Performance{ID: "p1", SongID: song.ID, UserID: singer.ID, AudioURL: "a.mp3"}
	require.NoError(t, s.Songs().AppendPerformance(ctx, p))
	assert.ErrorIs(t, s.Songs().AppendPerformance(ctx, p), repository.ErrDuplicate)

	require.NoError(t, s.Songs().AddLike(ctx, "p1", fan.ID))
	require.NoError(t, s.Songs().AddLike(ctx, "p1", fan.ID))
	require.NoError(t, s.Songs().AppendComment(ctx, "p1", entity.Comment{ID: "c1", UserID: fan.ID, Text: "nice"}))
	require.NoError(t, s.Songs().UpdatePopularity(ctx, song.ID, 4))

	got, err := s.Songs().GetByID(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Popularity)
	require.Len(t, got.Performances, 1)
	assert.Equal(t, []string{fan.ID}, []string(got.Performances[0].Likes))
	require.Len(t, got.Performances[0].Comments, 1)
	assert.Equal(t, "nice", got.Performances[0].Comments[0].Text)

	require.NoError(t, s.Songs().RemoveLike(ctx, "p1", fan.ID))
	got, _ = s.Songs().GetByID(ctx, song.ID)
	assert.Zero(t, got.Performances[0].Likes.Len())

	assert.ErrorIs(t, s.Songs().AddLike(ctx, "nope", fan.ID), repository.ErrNotFound)
	assert.ErrorIs(t, s.Songs().AppendComment(ctx, "nope", entity.Comment{ID: "c2"}), repository.ErrNotFound)
	assert.ErrorIs(t, s.Songs().UpdatePopularity(ctx, "nope", 1), repository.ErrNotFound)
}

func TestUserRepository_Roles(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := seedUser(t, s, "ana")

	ok, err := s.Users().HasRole(ctx, u.ID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Users().AssignRole(ctx, u.ID, entity.RoleAdmin))
	ok, _ = s.Users().HasRole(ctx, u.ID, entity.RoleAdmin)
	assert.True(t, ok)

	assert.ErrorIs(t, s.Users().AssignRole(ctx, u.ID, "superuser"), entity.ErrUnknownRole)
	assert.ErrorIs(t, s.Users().AssignRole(ctx, "missing", entity.RoleUser), repository.ErrNotFound)
}
