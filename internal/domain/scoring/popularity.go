package scoring

// PerformanceWeight is how many engagements a single performance is worth.
const PerformanceWeight = 2

// Popularity scores a song from its performance, like and comment totals.
func Popularity(performances, likes, comments int) int64 {
	return int64(PerformanceWeight*performances + likes + comments)
}
