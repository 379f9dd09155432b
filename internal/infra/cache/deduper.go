package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// Deduper remembers keys for a TTL window using SETNX.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

// AcquireOnce returns true the first time scope+key is seen. When Redis is
// unavailable it returns true and lets the store's unique index decide.
func (d *Deduper) AcquireOnce(ctx context.Context, scope, key string) bool {
	ok, err := d.rdb.SetNX(ctx, "dedup:"+scope+":"+key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("dedupe check failed, allowing message",
			zap.String("scope", scope),
			zap.Error(err),
		)
		return true
	}
	return ok
}
