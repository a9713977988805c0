package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func RedisSetJSON(ctx context.Context, rdb *redis.Client, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

func RedisGetJSON[T any](ctx context.Context, rdb *redis.Client, key string, dest *T) (bool, error) {
	res, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(res, dest); err != nil {
		return false, err
	}
	return true, nil
}

func RedisDel(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err()
}

// KeySession is the Redis hash holding the active session of a user.
func KeySession(userID string) string { return "user:session:" + userID }

// Sorted-set keys shared by the API and the seed command.
const (
	KeyLeaderboard = "leaderboard:points"
	KeyPresence    = "presence:users"
)

// RedisTouchPresence records userID as active at t.
func RedisTouchPresence(ctx context.Context, rdb *redis.Client, userID string, t time.Time) error {
	return rdb.ZAdd(ctx, KeyPresence, redis.Z{Score: float64(t.Unix()), Member: userID}).Err()
}

// RedisActiveSince returns up to limit user ids seen at or after since, most
// recent first. Older entries are trimmed on the way.
func RedisActiveSince(ctx context.Context, rdb *redis.Client, since time.Time, limit int) ([]string, error) {
	cutoff := strconv.FormatInt(since.Unix(), 10)
	pipe := rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, KeyPresence, "-inf", "("+cutoff)
	ids := pipe.ZRevRangeByScore(ctx, KeyPresence, &redis.ZRangeBy{Min: cutoff, Max: "+inf", Count: int64(limit)})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return ids.Val(), nil
}

// RedisSetScore overwrites member's score in the sorted set key.
func RedisSetScore(ctx context.Context, rdb *redis.Client, key, member string, score float64) error {
	return rdb.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

// RedisTop returns the n highest scored members of key.
func RedisTop(ctx context.Context, rdb *redis.Client, key string, n int) ([]redis.Z, error) {
	return rdb.ZRevRangeWithScores(ctx, key, 0, int64(n-1)).Result()
}
