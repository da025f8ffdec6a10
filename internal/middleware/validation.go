package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

const (
	// MaxPayloadSize 最大 payload 大小（2MB）
	MaxPayloadSize = 2 * 1024 * 1024

	// KindKey 校验后的作业类型在 gin.Context 中的 key
	KindKey = "job_kind"
)

var (
	// IDRegex 项目 / 任务 ID（字母数字下划线连字符，1-128字符）
	IDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)
)

// PayloadSizeLimit Payload 大小限制中间件
func PayloadSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "请求体过大，最大允许 2MB",
			})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// ValidateID 校验项目 / 任务 ID
func ValidateID(id string) bool {
	return IDRegex.MatchString(id)
}

// SanitizeString 清理字符串（去除首尾空白与控制字符）
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)

	var builder strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

func validateIDParam(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param(name)
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": name + " 参数缺失",
			})
			c.Abort()
			return
		}

		if !ValidateID(id) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": name + " 格式无效，必须是1-128个字母、数字、下划线或连字符",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ValidateProjectIDParam Gin 中间件：验证路径参数中的 project_id
func ValidateProjectIDParam() gin.HandlerFunc {
	return validateIDParam("project_id")
}

// ValidateTaskIDParam Gin 中间件：验证路径参数中的 task_id
func ValidateTaskIDParam() gin.HandlerFunc {
	return validateIDParam("task_id")
}

// ValidateKindParam Gin 中间件：解析路径参数 kind（支持别名），结果放入 KindKey
func ValidateKindParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := model.ParseJobKind(c.Param("kind"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			c.Abort()
			return
		}
		c.Set(KindKey, kind)
		c.Next()
	}
}

// ValidateActionParam Gin 中间件：验证路径参数 action 为 pause/resume/stop
func ValidateActionParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sdk.TaskAction(c.Param("action")).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "action 必须是 pause、resume 或 stop",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetKind 读取 ValidateKindParam 解析出的作业类型
func GetKind(c *gin.Context) model.JobKind {
	if v, ok := c.Get(KindKey); ok {
		if kind, ok := v.(model.JobKind); ok {
			return kind
		}
	}
	return ""
}

// RateLimit 按客户端 IP 的令牌桶限流，rps<=0 时不限流
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}

	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[ip] = l
		}
		mu.Unlock()

		if !l.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "请求过于频繁，请稍后重试",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CORSMiddleware CORS 中间件（内部系统可选）
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
