package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/azhengyongqin/prompt-eval-hub/internal/metrics"
)

// 探针与抓取请求量大且没有业务含义，不计入 HTTP 指标
var unmeteredPaths = map[string]struct{}{
	"/metrics": {},
	"/healthz": {},
	"/readyz":  {},
}

// PrometheusMiddleware 按路由模板记录请求数与耗时，未匹配路由归为 unmatched，
// 避免把任意 project_id 写进标签
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, skip := unmeteredPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start).Seconds())
	}
}

// RequestIDMiddleware 沿用调用方的 X-Request-ID（格式不合法时重新生成），并回写到响应头
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if !ValidateID(requestID) {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
