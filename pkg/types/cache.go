package types

import (
	"context"
	"time"
)

// Cache 接口定义了缓存操作的基本方法
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Del(ctx context.Context, key string) error
}

const (
	// 公开表列表与查询结果缓存，TTL 过期，不做写穿透失效
	CACHE_KEY_PUBLIC_TABLES  = "public:tables:all"
	CACHE_TTL_PUBLIC_TABLES  = time.Minute * 5
	CACHE_TTL_QUERY_RESULTS  = time.Minute
	CACHE_KEY_QUERY_TEMPLATE = "query:%s:%s:%d:%d" // tableHash, whereHash, limit, offset
)
