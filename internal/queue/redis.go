package asynqx

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hibiken/asynq"
)

// NewRedisConnOpt 仅接受 URI（例如 redis://localhost:6379/6）。
// 统一用 asynq.ParseRedisURI，避免手工拆分 addr/db。
func NewRedisConnOpt(redisURI string) (asynq.RedisConnOpt, error) {
	return asynq.ParseRedisURI(redisURI)
}

// RedisURI 由 host:port、密码和 db 拼出 URI；已经是 URI 时原样返回
func RedisURI(addr, password string, db int) string {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		return addr
	}
	u := url.URL{Scheme: "redis", Host: addr, Path: fmt.Sprintf("/%d", db)}
	if password != "" {
		u.User = url.UserPassword("", password)
	}
	return u.String()
}
