package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return r.s.write(ctx, func() error {
		key := strings.ToLower(u.Email)
		if _, ok := r.s.emails[key]; ok {
			return repository.ErrDuplicate
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		now := r.s.now()
		u.CreatedAt, u.UpdatedAt = now, now
		r.s.users[u.ID] = u.Clone()
		r.s.emails[key] = u.ID
		return nil
	})
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	var u *entity.User
	r.s.read(func() { u = r.s.users[id].Clone() })
	if u == nil {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

// GetByIDForUpdate needs no extra locking: writers are already serialised by
// WithinTx.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var id string
	r.s.read(func() { id = r.s.emails[strings.ToLower(email)] })
	if id == "" {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Update copies the scalar fields; relations change through SetFollow and
// SetFavorite only.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	return r.s.write(ctx, func() error {
		cur, ok := r.s.users[u.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if !strings.EqualFold(cur.Email, u.Email) {
			key := strings.ToLower(u.Email)
			if _, taken := r.s.emails[key]; taken {
				return repository.ErrDuplicate
			}
			delete(r.s.emails, strings.ToLower(cur.Email))
			r.s.emails[key] = u.ID
		}
		u.UpdatedAt = r.s.now()
		cur.Email, cur.Name, cur.AvatarURL = u.Email, u.Name, u.AvatarURL
		cur.Level, cur.Points, cur.Coins = u.Level, u.Points, u.Coins
		cur.UpdatedAt = u.UpdatedAt
		return nil
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.s.write(ctx, func() error {
		cur, ok := r.s.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		cur.Password = hash
		cur.UpdatedAt = r.s.now()
		return nil
	})
}

func (r *UserRepository) SetFollow(ctx context.Context, followerID, followeeID string, follow bool) error {
	return r.s.write(ctx, func() error {
		follower, ok := r.s.users[followerID]
		if !ok {
			return repository.ErrNotFound
		}
		followee, ok := r.s.users[followeeID]
		if !ok {
			return repository.ErrNotFound
		}
		if follow {
			follower.Following.Add(followeeID)
			followee.Followers.Add(followerID)
		} else {
			follower.Following.Remove(followeeID)
			followee.Followers.Remove(followerID)
		}
		return nil
	})
}

func (r *UserRepository) SetFavorite(ctx context.Context, userID, songID string, favorite bool) error {
	return r.s.write(ctx, func() error {
		u, ok := r.s.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		if _, ok := r.s.songs[songID]; !ok {
			return repository.ErrNotFound
		}
		if favorite {
			u.FavoriteSongs.Add(songID)
		} else {
			u.FavoriteSongs.Remove(songID)
		}
		return nil
	})
}

func (r *UserRepository) Summaries(_ context.Context, ids []string) (map[string]entity.UserSummary, error) {
	out := make(map[string]entity.UserSummary, len(ids))
	r.s.read(func() {
		for _, id := range ids {
			if u, ok := r.s.users[id]; ok {
				out[id] = u.Summary()
			}
		}
	})
	return out, nil
}

func (r *UserRepository) sorted(limit int, less func(a, b *entity.User) bool) []entity.UserSummary {
	var all []*entity.User
	r.s.read(func() {
		all = make([]*entity.User, 0, len(r.s.users))
		for _, u := range r.s.users {
			all = append(all, u.Clone())
		}
	})
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]entity.UserSummary, 0, len(all))
	for _, u := range all {
		out = append(out, u.Summary())
	}
	return out
}

func (r *UserRepository) TopByPoints(_ context.Context, limit int) ([]entity.UserSummary, error) {
	return r.sorted(limit, func(a, b *entity.User) bool {
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}), nil
}

func (r *UserRepository) Recent(_ context.Context, limit int) ([]entity.UserSummary, error) {
	return r.sorted(limit, func(a, b *entity.User) bool {
		return a.UpdatedAt.After(b.UpdatedAt)
	}), nil
}

func (r *UserRepository) HasRole(_ context.Context, userID, role string) (bool, error) {
	var ok bool
	r.s.read(func() { ok = r.s.roles[userID][role] })
	return ok, nil
}

func (r *UserRepository) AssignRole(ctx context.Context, userID, role string) error {
	if !entity.KnownRole(role) {
		return entity.ErrUnknownRole
	}
	return r.s.write(ctx, func() error {
		if _, ok := r.s.users[userID]; !ok {
			return repository.ErrNotFound
		}
		if r.s.roles[userID] == nil {
			r.s.roles[userID] = map[string]bool{}
		}
		r.s.roles[userID][role] = true
		return nil
	})
}

var _ repository.UserRepository = (*UserRepository)(nil)
