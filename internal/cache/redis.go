package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss 键不存在或已过期
var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "evalhub"

// RedisCache 快照镜像与任务历史共用的 Redis 存储，值统一按 JSON 存放
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache 连接单机 Redis，启动时 ping 一次，连不上直接失败
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return NewRedisCacheWithClient(client), nil
}

// NewRedisCacheWithClient 复用已有连接（哨兵 / 集群客户端也可以）
func NewRedisCacheWithClient(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping 实现 healthcheck.Pinger
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// CacheKey evalhub:{kind}:{parts...}
func CacheKey(kind string, parts ...string) string {
	return strings.Join(append([]string{keyPrefix, kind}, parts...), ":")
}

func setJSON(ctx context.Context, cmd redis.Cmdable, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := cmd.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func getJSON[T any](ctx context.Context, cmd redis.Cmdable, key string) (T, error) {
	var out T
	data, err := cmd.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return out, ErrCacheMiss
		}
		return out, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return out, nil
}
