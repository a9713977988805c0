// Package scoring holds the pure rules behind points, levels, popularity and
// gift bonuses. Nothing here touches storage or the clock.
package scoring

// CalculateLevel derives a user's level from accumulated points:
// floor(log10(points+1)) + 1, i.e. the number of decimal digits of points+1.
// Negative input is treated as zero.
func CalculateLevel(points int64) int {
	if points < 0 {
		points = 0
	}
	n := points + 1
	level := 0
	for n > 0 {
		level++
		n /= 10
	}
	return level
}
