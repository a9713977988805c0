package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/karaoke-social-api/config"
	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	repo "github.com/oksasatya/karaoke-social-api/internal/domain/repository"
	"github.com/oksasatya/karaoke-social-api/internal/infrastructure/memory"
	"github.com/oksasatya/karaoke-social-api/pkg/mailer"
)

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.jobs))
	for _, j := range p.jobs {
		t, _ := j.Data["Type"].(string)
		out = append(out, t)
	}
	return out
}

type fixture struct {
	store  *memory.Store
	stores Stores
	pub    *recordingPublisher
	notify *Notifier
	points *Points
}

func newFixture() *fixture {
	st := memory.NewStore()
	f := &fixture{
		store: st,
		stores: Stores{
			Tx:     st,
			Users:  st.Users(),
			Songs:  st.Songs(),
			Gifts:  st.Gifts(),
			Awards: st.Awards(),
		},
		pub: &recordingPublisher{},
	}
	f.notify = NewNotifier(f.pub, &config.Config{AppName: "karaoke", MailSendEnabled: true}, nil)
	f.points = &Points{Awards: f.stores.Awards, Notify: f.notify}
	return f
}

func (f *fixture) user(t *testing.T, name string, coins int64) *entity.User {
	t.Helper()
	u := entity.NewUser(name, name+"@example.com", "hash", coins)
	require.NoError(t, f.stores.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) song(t *testing.T, title string, genre entity.Genre) *entity.Song {
	t.Helper()
	s := &entity.Song{Title: title, Artist: "Artist", Genre: genre, Difficulty: 2, DurationSeconds: 180}
	require.NoError(t, f.stores.Songs.Create(context.Background(), s))
	return s
}

func (f *fixture) gift(t *testing.T, name string, value int64, tier entity.GiftTier) *entity.Gift {
	t.Helper()
	g := entity.NewGift(name, "", "", value, tier)
	require.NoError(t, f.stores.Gifts.Create(context.Background(), g))
	return g
}

func (f *fixture) reload(t *testing.T, id string) *entity.User {
	t.Helper()
	u, err := f.stores.Users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

var errDiskFull = errors.New("disk full")

// brokenGifts fails the transfer record write, which runs after the user
// writes of a send.
type brokenGifts struct {
	repo.GiftRepository
}

func (brokenGifts) AppendTransfer(context.Context, entity.GiftTransferRecord) error { return errDiskFull }

// brokenSongs fails the popularity write, which runs after the like or comment
// row was stored.
type brokenSongs struct {
	repo.SongRepository
}

func (brokenSongs) UpdatePopularity(context.Context, string, int64) error { return errDiskFull }
