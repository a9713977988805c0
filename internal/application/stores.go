package application

import (
	"context"
	"errors"
	"sort"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	repo "github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

// Stores bundles the repositories of one storage backend with its unit of work.
type Stores struct {
	Tx     repo.Transactor
	Users  repo.UserRepository
	Songs  repo.SongRepository
	Gifts  repo.GiftRepository
	Awards repo.PointAwardRepository
}

// lockUsers loads the users for update in ascending id order so two units of
// work touching the same pair never wait on each other crosswise. Missing
// users come back nil.
func lockUsers(ctx context.Context, users repo.UserRepository, ids ...string) (map[string]*entity.User, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	out := make(map[string]*entity.User, len(ids))
	for _, id := range sorted {
		if _, seen := out[id]; seen {
			continue
		}
		u, err := users.GetByIDForUpdate(ctx, id)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		out[id] = u
	}
	return out, nil
}
