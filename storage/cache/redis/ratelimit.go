// Package rediscache holds the Redis backed stores.
package rediscache

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/ratelimit"
)

// NewClient connects to Redis and checks it answers.
func NewClient(ctx context.Context, conf *core.Config) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        conf.Redis.Addr,
		Password:    conf.Redis.Password,
		DB:          conf.Redis.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return rdb, nil
}

// rateLimitStore keeps the requests of a user on an endpoint in a sorted set scored by request time.
type rateLimitStore struct {
	rdb    goredis.Cmdable
	window time.Duration
}

var _ ratelimit.Store = (*rateLimitStore)(nil) // interface compliance check

func NewRateLimitStore(rdb goredis.Cmdable, conf *core.Config) *rateLimitStore {
	return &rateLimitStore{rdb: rdb, window: conf.AI.RateLimitWindow}
}

func rateLimitKey(userID, endpoint string) string {
	return "ratelimit:" + userID + ":" + endpoint
}

func score(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro(), 10)
}

func (store *rateLimitStore) Count(ctx context.Context, userID, endpoint string, since time.Time) (int, error) {
	n, err := store.rdb.ZCount(ctx, rateLimitKey(userID, endpoint), "("+score(since), "+inf").Result()
	if err != nil {
		return 0, errors.Wrap(err, "counting rate limit records")
	}
	return int(n), nil
}

// Record adds a request and drops the ones that fell out of the window.
func (store *rateLimitStore) Record(ctx context.Context, userID, endpoint string, at time.Time) error {
	key := rateLimitKey(userID, endpoint)
	_, err := store.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZAdd(ctx, key, goredis.Z{Score: float64(at.UnixMicro()), Member: uuid.New().String()})
		pipe.ZRemRangeByScore(ctx, key, "-inf", score(at.Add(-store.window)))
		pipe.Expire(ctx, key, store.window)
		return nil
	})
	return errors.Wrap(err, "recording rate limit request")
}
