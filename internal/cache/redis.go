package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore：Redis 后端，值为 Entry 的 JSON；键 TTL 与有效期一致，过期由 Redis 自行清理
type RedisStore struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRedisStore(rc *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultMaxAge
	}
	return &RedisStore{rc: rc, ttl: ttl}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	s, err := r.rc.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.rc.Set(ctx, key, string(b), r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.rc.Del(ctx, key).Err()
}
