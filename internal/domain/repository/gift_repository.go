package repository

import (
	"context"
	"time"

	"github.com/oksasatya/karaoke-social-api/internal/domain/entity"
)

// TransferEntry is one history row joined with its gift, as shown in the
// sent/received listings.
type TransferEntry struct {
	RecordID     string
	GiftID       string
	GiftName     string
	GiftIconURL  string
	GiftValue    int64
	GiftTier     entity.GiftTier
	CounterParty string
	CreatedAt    time.Time
}

type GiftRepository interface {
	Create(ctx context.Context, g *entity.Gift) error
	// GetByID loads the gift with its full transfer history.
	GetByID(ctx context.Context, id string) (*entity.Gift, error)
	// GetByIDForUpdate locks the catalog row for an edit. History is not loaded.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Gift, error)
	// GetByIDForShare takes a shared lock on the catalog row so concurrent
	// sends of the same gift do not wait on each other. History is not loaded.
	GetByIDForShare(ctx context.Context, id string) (*entity.Gift, error)
	// Update writes the catalog columns only.
	Update(ctx context.Context, g *entity.Gift) error
	AppendTransfer(ctx context.Context, rec entity.GiftTransferRecord) error
	ListAvailable(ctx context.Context) ([]*entity.Gift, error)
	// Received lists transfers to userID newest first; CounterParty is the sender.
	Received(ctx context.Context, userID string, limit int) ([]TransferEntry, error)
	// Sent lists transfers from userID newest first; CounterParty is the receiver.
	Sent(ctx context.Context, userID string, limit int) ([]TransferEntry, error)
}
