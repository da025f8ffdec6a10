package middleware

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
)

const (
	// MaxBodyLogSize 最大记录的请求/响应体大小（字节）
	MaxBodyLogSize = 4096
)

var apiKeyPattern = regexp.MustCompile(`("api_key"\s*:\s*")[^"]*"`)

// responseWriter 包装 gin.ResponseWriter，统计响应大小并缓存前 4KB 响应体
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
	size int
}

func (w *responseWriter) Write(b []byte) (int, error) {
	size, err := w.ResponseWriter.Write(b)
	w.size += size
	if w.body.Len()+len(b) <= MaxBodyLogSize {
		w.body.Write(b)
	}
	return size, err
}

// LoggingMiddleware 记录请求日志；4xx 记 warn，5xx 记 error 并附带响应体
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		requestBody := readLoggableBody(c)

		blw := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		log := logger.WithRequestID(GetRequestID(c))

		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}

		ev = ev.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration(ms)", time.Since(start)).
			Int("response_size", blw.size).
			Str("client_ip", c.ClientIP())

		if projectID := c.Param("project_id"); projectID != "" {
			ev = ev.Str("project_id", projectID)
		}
		if c.Request.URL.RawQuery != "" {
			ev = ev.Str("query", c.Request.URL.RawQuery)
		}
		if requestBody != "" {
			ev = ev.Str("request_body", requestBody)
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		if status >= 500 && blw.body.Len() > 0 {
			ev = ev.Str("response_body", blw.body.String())
		}

		ev.Msg("HTTP 请求")
	}
}

// readLoggableBody 读取并回填 JSON 请求体，api_key 打码；multipart 与表单不记录
func readLoggableBody(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.Method != "POST" {
		return ""
	}
	if !strings.HasPrefix(c.ContentType(), "application/json") {
		return ""
	}

	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	body := apiKeyPattern.ReplaceAllString(string(bodyBytes), `${1}***"`)
	if len(body) > MaxBodyLogSize {
		return body[:MaxBodyLogSize] + "... (truncated)"
	}
	return body
}

// GetRequestID 从上下文中获取请求 ID
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
