package scoring

// Gift rarity tiers.
const (
	TierBasic     = "basic"
	TierSpecial   = "special"
	TierRare      = "rare"
	TierLegendary = "legendary"
)

var tierBonus = map[string]int64{
	TierBasic:     10,
	TierSpecial:   50,
	TierRare:      200,
	TierLegendary: 1000,
}

// BonusPointsForTier returns the points a receiver earns for a gift of the
// given tier. Unknown tiers earn nothing.
func BonusPointsForTier(tier string) int64 {
	return tierBonus[tier]
}

// KnownTier reports whether tier is part of the catalog.
func KnownTier(tier string) bool {
	_, ok := tierBonus[tier]
	return ok
}

// Fixed point grants for social interactions.
const (
	PerformancePoints = 100
	LikePoints        = 10
	CommentPoints     = 5
)

// PayoutPercent is the share of a gift's value credited to the receiver.
// The remainder is the platform fee.
const PayoutPercent = 70

// Payout returns floor(value * PayoutPercent / 100) for non-negative values.
func Payout(value int64) int64 {
	if value <= 0 {
		return 0
	}
	return value * PayoutPercent / 100
}
