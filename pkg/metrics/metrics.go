// Package metrics holds the Prometheus collectors for the economy and the
// HTTP edge. Collectors register on the default registry at init.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GiftsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karaoke_gifts_sent_total",
			Help: "Gift transfers committed, by gift tier",
		},
		[]string{"tier"},
	)
	CoinsMoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karaoke_coins_total",
			Help: "Coins moved by the economy, by direction (debited, credited, fee, purchased)",
		},
		[]string{"direction"},
	)
	PointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "karaoke_points_awarded_total",
			Help: "Points granted, by award reason",
		},
		[]string{"reason"},
	)
	LevelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "karaoke_level_ups_total",
			Help: "Times a user reached a higher level",
		},
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(GiftsSent, CoinsMoved, PointsAwarded, LevelUps, RateLimited)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
