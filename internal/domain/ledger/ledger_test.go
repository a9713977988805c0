package ledger

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seqIDs(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

func newEngagement() *EngagementLedger {
	return &EngagementLedger{Now: func() time.Time { return fixedNow }, NewID: seqIDs("id-")}
}

func newEconomy() *EconomyLedger {
	return &EconomyLedger{Now: func() time.Time { return fixedNow }, NewID: seqIDs("tx-")}
}

func TestRecordPerformanceAwardsPoints(t *testing.T) {
	l := newEngagement()
	song := &entity.Song{ID: "song"}
	singer := &entity.User{ID: "singer", Level: 1}

	for i := 1; i <= 3; i++ {
		p, award, err := l.RecordPerformance(song, singer, "https://cdn/rec.mp3")
		require.NoError(t, err)
		assert.Equal(t, "singer", p.UserID)
		assert.Equal(t, "song", p.SongID)
		assert.Empty(t, p.Likes)
		assert.Empty(t, p.Comments)
		assert.Equal(t, int64(100), award.Points)
		assert.Equal(t, entity.AwardPerformance, award.Reason)
		assert.Len(t, song.Performances, i)
		assert.Equal(t, int64(100*i), singer.Points)
	}
	assert.Equal(t, int64(6), song.Popularity)
	assert.Equal(t, 3, singer.Level)
}

func TestRecordPerformanceRejectsEmptyAudio(t *testing.T) {
	l := newEngagement()
	song := &entity.Song{ID: "song"}
	singer := &entity.User{ID: "singer", Level: 1}
	_, _, err := l.RecordPerformance(song, singer, "  ")
	assert.ErrorIs(t, err, ErrEmptyAudio)
	assert.Empty(t, song.Performances)
	assert.Zero(t, singer.Points)
}

func songWithPerformance(author string) *entity.Song {
	return &entity.Song{ID: "song", Performances: []*entity.Performance{{ID: "perf", SongID: "song", UserID: author}}}
}

func TestToggleLikeIsItsOwnInverse(t *testing.T) {
	l := newEngagement()
	song := songWithPerformance("author")
	author := &entity.User{ID: "author", Level: 1}

	out, err := l.ToggleLike(song, "perf", "fan")
	require.NoError(t, err)
	assert.True(t, out.Liked)
	require.NotNil(t, out.Award)
	assert.Equal(t, "author", out.Award.UserID)
	assert.Equal(t, "fan", out.Award.ActorID)
	assert.Equal(t, int64(10), out.Award.Points)
	_, err = ApplyAward(author, *out.Award)
	require.NoError(t, err)
	assert.Equal(t, int64(3), song.Popularity)

	out, err = l.ToggleLike(song, "perf", "fan")
	require.NoError(t, err)
	assert.False(t, out.Liked)
	assert.Nil(t, out.Award)
	assert.Empty(t, song.Performances[0].Likes)
	assert.Equal(t, int64(2), song.Popularity)
	assert.Equal(t, int64(10), author.Points, "un-like keeps granted points")
	assert.Equal(t, 2, author.Level)
}

func TestSelfInteractionsAwardNothing(t *testing.T) {
	l := newEngagement()
	song := songWithPerformance("author")

	like, err := l.ToggleLike(song, "perf", "author")
	require.NoError(t, err)
	assert.True(t, like.Liked)
	assert.Nil(t, like.Award)

	comment, err := l.AddComment(song, "perf", "author", "thanks all")
	require.NoError(t, err)
	assert.Nil(t, comment.Award)
	assert.Equal(t, int64(2+1+1), song.Popularity)
}

func TestAddCommentAwardsAuthor(t *testing.T) {
	l := newEngagement()
	song := songWithPerformance("author")

	out, err := l.AddComment(song, "perf", "fan", "  great pitch ")
	require.NoError(t, err)
	assert.Equal(t, "great pitch", out.Comment.Text)
	assert.Equal(t, fixedNow, out.Comment.CreatedAt)
	require.NotNil(t, out.Award)
	assert.Equal(t, int64(5), out.Award.Points)
	assert.Equal(t, entity.AwardCommentReceived, out.Award.Reason)
	assert.Equal(t, int64(3), song.Popularity)

	_, err = l.AddComment(song, "perf", "fan", "")
	assert.ErrorIs(t, err, ErrEmptyComment)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestMissingPerformance(t *testing.T) {
	l := newEngagement()
	song := songWithPerformance("author")
	_, err := l.ToggleLike(song, "nope", "fan")
	assert.ErrorIs(t, err, ErrPerformanceNotFound)
	_, err = l.AddComment(song, "nope", "fan", "hi")
	assert.ErrorIs(t, err, ErrPerformanceNotFound)
	_, err = l.ToggleLike(nil, "perf", "fan")
	assert.ErrorIs(t, err, ErrSongNotFound)
}

func TestApplyAwardRejectsWrongRecipient(t *testing.T) {
	u := &entity.User{ID: "a", Level: 1}
	_, err := ApplyAward(u, entity.PointAward{UserID: "b", Points: 10})
	assert.ErrorIs(t, err, ErrAwardRecipient)
	assert.Zero(t, u.Points)
}

func TestTransferSpecialGift(t *testing.T) {
	l := newEconomy()
	sender := &entity.User{ID: "s", Coins: 100, Level: 1}
	receiver := &entity.User{ID: "r", Level: 1}
	gift := entity.NewGift("Star", "shiny", "/star.png", 50, entity.TierSpecial)
	gift.ID = "gift"

	r, err := l.Transfer(sender, receiver, gift)
	require.NoError(t, err)
	assert.Equal(t, StageRecorded, r.Stage)
	assert.Equal(t, int64(50), sender.Coins)
	assert.Equal(t, int64(50), r.SenderCoins)
	assert.Equal(t, int64(35), receiver.Coins)
	assert.Equal(t, int64(35), r.Payout)
	assert.Equal(t, int64(15), r.Fee)
	assert.Equal(t, int64(50), receiver.Points)
	assert.Equal(t, int64(50), r.PointsGained)
	assert.Equal(t, 2, receiver.Level)
	assert.Equal(t, 2, r.ReceiverLevel)
	assert.True(t, r.LeveledUp())
	require.Len(t, gift.History, 1)
	assert.Equal(t, entity.GiftTransferRecord{ID: "tx-1", GiftID: "gift", SenderID: "s", ReceiverID: "r", CreatedAt: fixedNow}, gift.History[0])
	assert.Equal(t, entity.AwardGiftReceived, r.Award.Reason)
	assert.Equal(t, "tx-1", r.Award.SourceID)
}

func TestTransferValidationLeavesStateUntouched(t *testing.T) {
	l := newEconomy()
	gift := entity.NewGift("Crown", "", "", 500, entity.TierLegendary)
	disabled := entity.NewGift("Old", "", "", 1, entity.TierBasic)
	disabled.Available = false

	cases := []struct {
		name     string
		sender   *entity.User
		receiver *entity.User
		gift     *entity.Gift
		want     error
		kind     Kind
	}{
		{"missing gift", &entity.User{ID: "s", Coins: 1000}, &entity.User{ID: "r"}, nil, ErrGiftNotFound, KindNotFound},
		{"unavailable", &entity.User{ID: "s", Coins: 1000}, &entity.User{ID: "r"}, disabled, ErrGiftUnavailable, KindUnavailable},
		{"missing receiver", &entity.User{ID: "s", Coins: 1000}, nil, gift, ErrReceiverNotFound, KindNotFound},
		{"insufficient", &entity.User{ID: "s", Coins: 499}, &entity.User{ID: "r"}, gift, ErrInsufficientBalance, KindInsufficientBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var before entity.User
			if tc.receiver != nil {
				before = *tc.receiver
			}
			coins := tc.sender.Coins
			var history int
			if tc.gift != nil {
				history = len(tc.gift.History)
			}

			r, err := l.Transfer(tc.sender, tc.receiver, tc.gift)
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, tc.want))
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Equal(t, coins, tc.sender.Coins)
			if tc.receiver != nil {
				assert.Equal(t, before.Coins, tc.receiver.Coins)
				assert.Equal(t, before.Points, tc.receiver.Points)
			}
			if tc.gift != nil {
				assert.Len(t, tc.gift.History, history)
			}
		})
	}
}

func TestTransferExactBalance(t *testing.T) {
	l := newEconomy()
	sender := &entity.User{ID: "s", Coins: 9}
	receiver := &entity.User{ID: "r", Level: 1}
	gift := entity.NewGift("Rose", "", "", 9, entity.TierBasic)

	r, err := l.Transfer(sender, receiver, gift)
	require.NoError(t, err)
	assert.Zero(t, sender.Coins)
	assert.Equal(t, int64(6), receiver.Coins)
	assert.Equal(t, int64(10), r.PointsGained)
}

func TestTransferToSelfBurnsTheFee(t *testing.T) {
	l := newEconomy()
	u := &entity.User{ID: "u", Coins: 100, Level: 1}
	gift := entity.NewGift("Star", "", "", 50, entity.TierSpecial)

	r, err := l.Transfer(u, u, gift)
	require.NoError(t, err)
	assert.Equal(t, StageRecorded, r.Stage)
	assert.Equal(t, int64(85), u.Coins)
	assert.Equal(t, int64(85), r.SenderCoins)
	assert.Equal(t, int64(85), r.ReceiverCoins)
	assert.Equal(t, int64(15), r.Fee)
	assert.Equal(t, int64(50), u.Points)
	assert.Equal(t, 2, u.Level)
	require.Len(t, gift.History, 1)
	assert.Equal(t, "u", gift.History[0].SenderID)
	assert.Equal(t, "u", gift.History[0].ReceiverID)
}

func TestErrorIsMatchesByKindAndReason(t *testing.T) {
	err := &Error{Kind: KindNotFound, Reason: "gift not found"}
	assert.ErrorIs(t, err, ErrGiftNotFound)
	assert.NotErrorIs(t, err, ErrReceiverNotFound)
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, "pending", StagePending.String())
	assert.Equal(t, "credited", StageCredited.String())
}
