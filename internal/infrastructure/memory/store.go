// Package memory keeps every aggregate in process. It backs the test suites and
// STORAGE_DRIVER=memory; it is not durable.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

type txKey struct{}

// Store holds the aggregates. txMu serialises writers (one unit of work at a
// time) and mu guards the maps themselves.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	users  map[string]*entity.User
	emails map[string]string
	roles  map[string]map[string]bool
	songs  map[string]*entity.Song
	gifts  map[string]*entity.Gift
	awards []entity.PointAward

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:  map[string]*entity.User{},
		emails: map[string]string{},
		roles:  map[string]map[string]bool{},
		songs:  map[string]*entity.Song{},
		gifts:  map[string]*entity.Gift{},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// WithinTx runs fn while holding the writer lock. When fn fails the store is
// restored to the state it had before fn started.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

type snapshot struct {
	users  map[string]*entity.User
	emails map[string]string
	roles  map[string]map[string]bool
	songs  map[string]*entity.Song
	gifts  map[string]*entity.Gift
	awards []entity.PointAward
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		users:  make(map[string]*entity.User, len(s.users)),
		emails: make(map[string]string, len(s.emails)),
		roles:  make(map[string]map[string]bool, len(s.roles)),
		songs:  make(map[string]*entity.Song, len(s.songs)),
		gifts:  make(map[string]*entity.Gift, len(s.gifts)),
		awards: append([]entity.PointAward(nil), s.awards...),
	}
	for k, v := range s.users {
		snap.users[k] = v.Clone()
	}
	for k, v := range s.emails {
		snap.emails[k] = v
	}
	for k, v := range s.roles {
		rs := make(map[string]bool, len(v))
		for r := range v {
			rs[r] = true
		}
		snap.roles[k] = rs
	}
	for k, v := range s.songs {
		snap.songs[k] = v.Clone()
	}
	for k, v := range s.gifts {
		snap.gifts[k] = v.Clone()
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.emails, s.roles = snap.users, snap.emails, snap.roles
	s.songs, s.gifts, s.awards = snap.songs, snap.gifts, snap.awards
}

// Users, Songs, Gifts and Awards expose the store through the repository
// interfaces.
func (s *Store) Users() *UserRepository        { return &UserRepository{s: s} }
func (s *Store) Songs() *SongRepository        { return &SongRepository{s: s} }
func (s *Store) Gifts() *GiftRepository        { return &GiftRepository{s: s} }
func (s *Store) Awards() *PointAwardRepository { return &PointAwardRepository{s: s} }

var _ repository.Transactor = (*Store)(nil)
