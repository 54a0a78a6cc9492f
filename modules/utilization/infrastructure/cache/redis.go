package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/prezboard/engine/modules/utilization/domain/calc"
	"github.com/prezboard/engine/pkg/metrics"
)

const redisKeyPrefix = "engine:result:"

// RedisResultStore keeps results in Redis with native expiry, so
// multiple engine instances can share one result cache.
type RedisResultStore struct {
	rdb *redis.Client
	ttl time.Duration
	log *logrus.Logger
}

func NewRedisResultStore(redisURL string, ttl time.Duration, log *logrus.Logger) (*RedisResultStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	return &RedisResultStore{rdb: redis.NewClient(opts), ttl: ttl, log: log}, nil
}

func (r *RedisResultStore) Get(ctx context.Context, key string) (*calc.ScopeResult, bool) {
	raw, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WithError(err).WithField("key", key).Warn("redis result get failed")
		}
		metrics.ObserveCache("result", false)
		return nil, false
	}
	var res calc.ScopeResult
	if err := json.Unmarshal(raw, &res); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("corrupt cached result dropped")
		r.rdb.Del(ctx, redisKeyPrefix+key)
		metrics.ObserveCache("result", false)
		return nil, false
	}
	metrics.ObserveCache("result", true)
	return &res, true
}

func (r *RedisResultStore) Set(ctx context.Context, key string, result *calc.ScopeResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		r.log.WithError(err).WithField("key", key).Warn("result not cacheable")
		return
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("redis result set failed")
	}
}

func (r *RedisResultStore) Invalidate(ctx context.Context, prefix string) int {
	keys, err := r.scanKeys(ctx, redisKeyPrefix+prefix+"*")
	if err != nil {
		r.log.WithError(err).Warn("redis invalidate scan failed")
		return -1
	}
	if len(keys) == 0 {
		return 0
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.log.WithError(err).Warn("redis invalidate del failed")
		return -1
	}
	return len(keys)
}

func (r *RedisResultStore) Status(ctx context.Context) Status {
	st := Status{Name: "result", Backend: "redis", TTL: r.ttl}
	keys, err := r.scanKeys(ctx, redisKeyPrefix+"*")
	if err != nil {
		r.log.WithError(err).Warn("redis status scan failed")
		return st
	}
	st.Size = len(keys)
	for _, key := range keys {
		left, err := r.rdb.TTL(ctx, key).Result()
		if err != nil {
			continue
		}
		st.Entries = append(st.Entries, EntryStatus{
			Key:       key[len(redisKeyPrefix):],
			Age:       r.ttl - left,
			ExpiresIn: left,
		})
	}
	return st
}

// Run is a no-op: Redis expires entries natively.
func (r *RedisResultStore) Run(context.Context) {}

func (r *RedisResultStore) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}
