package entity

import (
	"time"

	"github.com/oksasatya/karaoke-social-api/internal/domain/scoring"
)

type GiftTier string

const (
	TierBasic     GiftTier = scoring.TierBasic
	TierSpecial   GiftTier = scoring.TierSpecial
	TierRare      GiftTier = scoring.TierRare
	TierLegendary GiftTier = scoring.TierLegendary
)

func (t GiftTier) Valid() bool { return scoring.KnownTier(string(t)) }

// Gift is a catalog item users buy with coins and send to each other.
// BonusPoints always equals BonusPointsForTier(Tier); change the tier through
// SetTier only.
type Gift struct {
	ID          string
	Name        string
	Description string
	IconURL     string
	Value       int64
	Tier        GiftTier
	BonusPoints int64
	Available   bool
	History     []GiftTransferRecord
	CreatedAt   time.Time
}

// GiftTransferRecord is an append-only entry of the gift's send history.
type GiftTransferRecord struct {
	ID         string
	GiftID     string
	SenderID   string
	ReceiverID string
	CreatedAt  time.Time
}

// NewGift builds an available gift with bonus points derived from tier. An
// empty tier defaults to basic.
func NewGift(name, description, iconURL string, value int64, tier GiftTier) *Gift {
	g := &Gift{
		Name:        name,
		Description: description,
		IconURL:     iconURL,
		Value:       value,
		Available:   true,
	}
	if tier == "" {
		tier = TierBasic
	}
	g.SetTier(tier)
	return g
}

// SetTier changes the tier and recomputes BonusPoints in the same call.
func (g *Gift) SetTier(t GiftTier) {
	g.Tier = t
	g.BonusPoints = scoring.BonusPointsForTier(string(t))
}

// Clone returns a deep copy so stores can hand out snapshots.
func (g *Gift) Clone() *Gift {
	if g == nil {
		return nil
	}
	c := *g
	c.History = append([]GiftTransferRecord(nil), g.History...)
	return &c
}
