package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateLevel(t *testing.T) {
	cases := map[int64]int{
		-5:      1,
		0:       1,
		9:       1,
		10:      2,
		98:      2,
		99:      3,
		100:     3,
		999:     4,
		1000:    4,
		9999:    5,
		1000000: 7,
	}
	for points, want := range cases {
		assert.Equal(t, want, CalculateLevel(points), "points=%d", points)
	}
}

func TestCalculateLevelMonotonic(t *testing.T) {
	prev := CalculateLevel(0)
	for p := int64(1); p < 20000; p++ {
		l := CalculateLevel(p)
		if l < prev {
			t.Fatalf("level decreased at %d: %d -> %d", p, prev, l)
		}
		if l < 1 {
			t.Fatalf("level below 1 at %d", p)
		}
		prev = l
	}
}

func TestPopularity(t *testing.T) {
	assert.Equal(t, int64(0), Popularity(0, 0, 0))
	assert.Equal(t, int64(2), Popularity(1, 0, 0))
	assert.Equal(t, int64(2*3+7+4), Popularity(3, 7, 4))
}

func TestBonusPointsForTier(t *testing.T) {
	assert.Equal(t, int64(10), BonusPointsForTier(TierBasic))
	assert.Equal(t, int64(50), BonusPointsForTier(TierSpecial))
	assert.Equal(t, int64(200), BonusPointsForTier(TierRare))
	assert.Equal(t, int64(1000), BonusPointsForTier(TierLegendary))
	assert.Equal(t, int64(0), BonusPointsForTier("mythic"))
	assert.False(t, KnownTier(""))
}

func TestPayout(t *testing.T) {
	assert.Equal(t, int64(35), Payout(50))
	assert.Equal(t, int64(0), Payout(1))
	assert.Equal(t, int64(6), Payout(9))
	assert.Equal(t, int64(700), Payout(1000))
	assert.Equal(t, int64(0), Payout(-3))
}
