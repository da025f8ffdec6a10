package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound 实体不存在（HTTP 404），调用方应视为"已被删除"
var ErrNotFound = errors.New("not found")

// APIError 后端返回了非 2xx 响应（应用层错误）
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Detail)
}

// Is 让 errors.Is(err, ErrNotFound) 对 404 生效
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// AsAPIError 从错误链中取出 *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound 判断错误是否为 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// newAPIError 解析 {"detail": "..."}；detail 不是字符串时保留原始 JSON
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			e.Detail = s
		} else {
			e.Detail = string(payload.Detail)
		}
		return e
	}

	e.Detail = strings.TrimSpace(string(body))
	if e.Detail == "" {
		e.Detail = http.StatusText(status)
	}
	return e
}
