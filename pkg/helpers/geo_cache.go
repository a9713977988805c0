package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	mailtpl "github.com/oksasatya/karaoke-social-api/pkg/mailer/templates"
)

// CachedGeoResolver answers repeated lookups for the same address from Redis.
// ip-api.com rate limits free clients per minute, and the same IP usually
// shows up on several emails in a row.
type CachedGeoResolver struct {
	Rdb   *redis.Client
	Inner mailtpl.GeoResolver
	TTL   time.Duration
}

func KeyGeo(ip string) string { return "geo:ip:" + ip }

func (r CachedGeoResolver) Lookup(ctx context.Context, ip string) (mailtpl.Geo, error) {
	addr, err := mailtpl.PublicIP(ip)
	if err != nil {
		return mailtpl.Geo{}, err
	}
	key := KeyGeo(addr.String())
	if r.Rdb != nil {
		var g mailtpl.Geo
		if ok, err := RedisGetJSON(ctx, r.Rdb, key, &g); err == nil && ok {
			return g, nil
		}
	}
	g, err := r.Inner.Lookup(ctx, addr.String())
	if err != nil {
		return mailtpl.Geo{}, err
	}
	if r.Rdb != nil {
		ttl := r.TTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		_ = RedisSetJSON(ctx, r.Rdb, key, g, ttl)
	}
	return g, nil
}
