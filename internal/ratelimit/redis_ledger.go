package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// keyTTL outlives the daily window so idle keys expire on their own.
const keyTTL = 25 * time.Hour

// RedisLedger stores usage records in one sorted set per provider, scored
// by timestamp in milliseconds, so several processes share one quota.
type RedisLedger struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisLedger returns a ledger using rdb. Keys are "<prefix>:usage:<provider>".
func NewRedisLedger(rdb *redis.Client, prefix string) *RedisLedger {
	if prefix == "" {
		prefix = "physiq"
	}
	return &RedisLedger{rdb: rdb, prefix: prefix}
}

// NewRedisClient parses url, connects and pings.
func NewRedisClient(ctx context.Context, url string, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")

	return rdb, nil
}

func (l *RedisLedger) key(provider string) string {
	return fmt.Sprintf("%s:usage:%s", l.prefix, provider)
}

// member is the stored form of a Record. ID keeps same-millisecond
// records distinct within the set.
type member struct {
	ID string `json:"id"`
	Record
}

func (l *RedisLedger) Append(ctx context.Context, provider string, r Record) error {
	b, err := json.Marshal(member{ID: uuid.NewString(), Record: r})
	if err != nil {
		return fmt.Errorf("encode usage record: %w", err)
	}

	key := l.key(provider)
	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(r.Time.UnixMilli()), Member: string(b)})
	pipe.Expire(ctx, key, keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append usage for %s: %w", provider, err)
	}
	return nil
}

func (l *RedisLedger) Since(ctx context.Context, provider string, since time.Time) ([]Record, error) {
	vals, err := l.rdb.ZRangeByScore(ctx, l.key(provider), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read usage for %s: %w", provider, err)
	}

	out := make([]Record, 0, len(vals))
	for _, v := range vals {
		var m member
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			continue
		}
		out = append(out, m.Record)
	}
	return out, nil
}

func (l *RedisLedger) Prune(ctx context.Context, provider string, cutoff time.Time) error {
	upper := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)
	if err := l.rdb.ZRemRangeByScore(ctx, l.key(provider), "-inf", upper).Err(); err != nil {
		return fmt.Errorf("prune usage for %s: %w", provider, err)
	}
	return nil
}
