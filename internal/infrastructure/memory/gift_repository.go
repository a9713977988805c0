package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
	"github.com/oksasatya/karaoke-social-api/internal/domain/repository"
)

type GiftRepository struct {
	s *Store
}

func (r *GiftRepository) Create(ctx context.Context, g *entity.Gift) error {
	return r.s.write(ctx, func() error {
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		g.CreatedAt = r.s.now()
		r.s.gifts[g.ID] = g.Clone()
		return nil
	})
}

func (r *GiftRepository) GetByID(_ context.Context, id string) (*entity.Gift, error) {
	var g *entity.Gift
	r.s.read(func() { g = r.s.gifts[id].Clone() })
	if g == nil {
		return nil, repository.ErrNotFound
	}
	return g, nil
}

func (r *GiftRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Gift, error) {
	return r.row(id)
}

func (r *GiftRepository) GetByIDForShare(ctx context.Context, id string) (*entity.Gift, error) {
	return r.row(id)
}

// row returns the catalog fields without history, like the locked Postgres
// lookups.
func (r *GiftRepository) row(id string) (*entity.Gift, error) {
	var g *entity.Gift
	r.s.read(func() {
		if stored, ok := r.s.gifts[id]; ok {
			c := *stored
			c.History = nil
			g = &c
		}
	})
	if g == nil {
		return nil, repository.ErrNotFound
	}
	return g, nil
}

// Update replaces the catalog fields and keeps the stored history.
func (r *GiftRepository) Update(ctx context.Context, g *entity.Gift) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.gifts[g.ID]
		if !ok {
			return repository.ErrNotFound
		}
		c := g.Clone()
		c.History = stored.History
		r.s.gifts[g.ID] = c
		return nil
	})
}

func (r *GiftRepository) AppendTransfer(ctx context.Context, rec entity.GiftTransferRecord) error {
	return r.s.write(ctx, func() error {
		g, ok := r.s.gifts[rec.GiftID]
		if !ok {
			return repository.ErrNotFound
		}
		for _, existing := range g.History {
			if existing.ID == rec.ID {
				return repository.ErrDuplicate
			}
		}
		g.History = append(g.History, rec)
		return nil
	})
}

func (r *GiftRepository) ListAvailable(_ context.Context) ([]*entity.Gift, error) {
	var out []*entity.Gift
	r.s.read(func() {
		for _, g := range r.s.gifts {
			if g.Available {
				out = append(out, g.Clone())
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *GiftRepository) Received(_ context.Context, userID string, limit int) ([]repository.TransferEntry, error) {
	return r.history(limit, func(rec entity.GiftTransferRecord) (string, bool) {
		return rec.SenderID, rec.ReceiverID == userID
	}), nil
}

func (r *GiftRepository) Sent(_ context.Context, userID string, limit int) ([]repository.TransferEntry, error) {
	return r.history(limit, func(rec entity.GiftTransferRecord) (string, bool) {
		return rec.ReceiverID, rec.SenderID == userID
	}), nil
}

// history collects the records pick accepts; pick also names the counterparty.
func (r *GiftRepository) history(limit int, pick func(entity.GiftTransferRecord) (string, bool)) []repository.TransferEntry {
	out := []repository.TransferEntry{}
	r.s.read(func() {
		for _, g := range r.s.gifts {
			for _, rec := range g.History {
				other, ok := pick(rec)
				if !ok {
					continue
				}
				out = append(out, repository.TransferEntry{
					RecordID:     rec.ID,
					GiftID:       g.ID,
					GiftName:     g.Name,
					GiftIconURL:  g.IconURL,
					GiftValue:    g.Value,
					GiftTier:     g.Tier,
					CounterParty: other,
					CreatedAt:    rec.CreatedAt,
				})
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

var _ repository.GiftRepository = (*GiftRepository)(nil)
