package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
)

func runParam(t *testing.T, mw gin.HandlerFunc, key, value string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Params = gin.Params{{Key: key, Value: value}}
	mw(c)
	return c, w
}

func TestValidateProjectIDParam(t *testing.T) {
	tests := []struct {
		name       string
		projectID  string
		wantStatus int
	}{
		{"valid uuid", "550e8400-e29b-41d4-a716-446655440000", http.StatusOK},
		{"valid with underscore", "proj_1", http.StatusOK},
		{"invalid chars", "proj@1", http.StatusBadRequest},
		{"path traversal", "../etc", http.StatusBadRequest},
		{"empty", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := runParam(t, ValidateProjectIDParam(), "project_id", tt.projectID)
			if tt.wantStatus == http.StatusOK {
				assert.False(t, c.IsAborted())
			} else {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.wantStatus, w.Code)
			}
		})
	}
}

func TestValidateTaskIDParam(t *testing.T) {
	tests := []struct {
		name       string
		taskID     string
		wantStatus int
	}{
		{"valid uuid", "550e8400-e29b-41d4-a716-446655440000", http.StatusOK},
		{"valid short", "task123", http.StatusOK},
		{"too long", strings.Repeat("a", 129), http.StatusBadRequest},
		{"empty", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := runParam(t, ValidateTaskIDParam(), "task_id", tt.taskID)
			if tt.wantStatus == http.StatusOK {
				assert.False(t, c.IsAborted())
			} else {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.wantStatus, w.Code)
			}
		})
	}
}

func TestValidateKindParam(t *testing.T) {
	tests := []struct {
		raw  string
		want model.JobKind
	}{
		{"batch", model.JobKindBatchTask},
		{"optimization", model.JobKindOptimization},
		{"auto_iterate", model.JobKindAutoIterate},
		{"nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c, w := runParam(t, ValidateKindParam(), "kind", tt.raw)
			if tt.want == "" {
				assert.True(t, c.IsAborted())
				assert.Equal(t, http.StatusBadRequest, w.Code)
				return
			}
			assert.False(t, c.IsAborted())
			assert.Equal(t, tt.want, GetKind(c))
		})
	}
}

func TestValidateActionParam(t *testing.T) {
	for _, action := range []string{"pause", "resume", "stop"} {
		c, _ := runParam(t, ValidateActionParam(), "action", action)
		assert.False(t, c.IsAborted(), action)
	}

	c, w := runParam(t, ValidateActionParam(), "action", "delete")
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeString("  hello\x00 world\x7f \n"))
}

func TestPayloadSizeLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 测试正常大小的请求
	t.Run("normal size", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, r := gin.CreateTestContext(w)
		r.Use(PayloadSizeLimit(1024))
		r.POST("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		body := bytes.NewBufferString("test")
		c.Request = httptest.NewRequest("POST", "/test", body)
		r.ServeHTTP(w, c.Request)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	// 测试超大请求
	t.Run("oversized", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, r := gin.CreateTestContext(w)
		r.Use(PayloadSizeLimit(10))
		r.POST("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		body := bytes.NewBufferString(strings.Repeat("a", 20))
		c.Request = httptest.NewRequest("POST", "/test", body)
		c.Request.ContentLength = 20
		r.ServeHTTP(w, c.Request)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(0.001, 2))
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// 其他 IP 有独立的桶
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(0, 0))
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("generate request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, r := gin.CreateTestContext(w)
		r.Use(RequestIDMiddleware())
		r.GET("/test", func(c *gin.Context) {
			requestID, exists := c.Get("request_id")
			assert.True(t, exists)
			assert.Len(t, requestID, 36)
			c.String(http.StatusOK, "ok")
		})

		c.Request = httptest.NewRequest("GET", "/test", nil)
		r.ServeHTTP(w, c.Request)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("use existing request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, r := gin.CreateTestContext(w)
		r.Use(RequestIDMiddleware())
		r.GET("/test", func(c *gin.Context) {
			assert.Equal(t, "test-123", GetRequestID(c))
			c.String(http.StatusOK, "ok")
		})

		c.Request = httptest.NewRequest("GET", "/test", nil)
		c.Request.Header.Set("X-Request-ID", "test-123")
		r.ServeHTTP(w, c.Request)

		assert.Equal(t, "test-123", w.Header().Get("X-Request-ID"))
	})

	t.Run("replace malformed request id", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestIDMiddleware())
		r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "bad id <script>")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	})
}

func TestLoggingMiddlewareKeepsBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggingMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		assert.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusOK, body)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/echo", strings.NewReader(`{"job_id":"t1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"job_id":"t1"}`, w.Body.String())
}

func TestRedactAPIKey(t *testing.T) {
	got := apiKeyPattern.ReplaceAllString(`{"prompt":"p","api_key": "sk-123"}`, `${1}***"`)
	assert.Equal(t, `{"prompt":"p","api_key": "***"}`, got)
}
