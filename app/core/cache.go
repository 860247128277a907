package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gridbase/gridbase/pkg/types"
)

// redisCache 以 redis 实现 types.Cache，键统一加前缀
type redisCache struct {
	cli    *redis.Client
	prefix string
}

func setupCache(cfg RedisConfig) types.Cache {
	if cfg.Addr == "" {
		slog.Warn("Redis not configured, query cache disabled")
		return &emptyCache{}
	}

	cli := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		panic(err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "gridbase"
	}

	return &redisCache{
		cli:    cli,
		prefix: prefix,
	}
}

func (c *redisCache) key(k string) string {
	return c.prefix + ":" + k
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.cli.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *redisCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return c.cli.SetEx(ctx, c.key(key), value, expiresAt).Err()
}

func (c *redisCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.cli.Expire(ctx, c.key(key), expiration).Err()
}

func (c *redisCache) Del(ctx context.Context, key string) error {
	return c.cli.Del(ctx, c.key(key)).Err()
}

// emptyCache 未配置 redis 时的空实现，所有读都视为未命中
type emptyCache struct{}

func (c *emptyCache) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (c *emptyCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return nil
}

func (c *emptyCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (c *emptyCache) Del(ctx context.Context, key string) error {
	return nil
}
