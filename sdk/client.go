package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

//go:generate mockgen -source=client.go -destination=../internal/mocks/mock_api.go -package=mocks

// API 评测后端的全部交互，便于 gomock 打桩。
type API interface {
	GetProject(ctx context.Context, projectID string) (*Project, error)
	ListProjectTasks(ctx context.Context, projectID string) ([]TaskSummary, error)

	StartTask(ctx context.Context, req StartTaskRequest) (*StartTaskResponse, error)
	GetTask(ctx context.Context, taskID string, page, pageSize int) (*TaskStatus, error)
	ControlTask(ctx context.Context, taskID string, action TaskAction) error

	StartOptimize(ctx context.Context, req StartOptimizeRequest) (*ActionResponse, error)
	GetOptimizeStatus(ctx context.Context, projectID string) (*OptimizeStatus, error)
	StopOptimize(ctx context.Context, projectID string) error

	StartAutoIterate(ctx context.Context, req StartAutoIterateRequest) (*ActionResponse, error)
	GetAutoIterateStatus(ctx context.Context, projectID string) (*AutoIterateStatus, error)
	StopAutoIterate(ctx context.Context, projectID string) error

	Ping(ctx context.Context) error
}

// Client HTTP 客户端，用于与评测后端通信
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	limiter *rate.Limiter
}

var _ API = (*Client)(nil)

// Option 客户端可选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

// WithRateLimit 限制每秒请求数，rps<=0 表示不限流
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient 创建客户端
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetProject 获取项目详情，项目不存在时返回的错误满足 errors.Is(err, ErrNotFound)
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var out Project
	if err := c.get(ctx, c.url("/projects/%s", projectID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProjectTasks 获取项目的验证任务历史
func (c *Client) ListProjectTasks(ctx context.Context, projectID string) ([]TaskSummary, error) {
	var out []TaskSummary
	if err := c.get(ctx, c.url("/projects/%s/tasks", projectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartTask 以 multipart 表单启动一次批量验证
func (c *Client) StartTask(ctx context.Context, req StartTaskRequest) (*StartTaskResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range req.fields() {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write form field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/tasks/start"), &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	var out StartTaskResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	if out.TaskID == "" {
		return nil, fmt.Errorf("decode response: task_id 为空")
	}
	return &out, nil
}

// GetTask 获取批量验证状态；page/pageSize 控制结果分页，<=0 时交给后端默认
func (c *Client) GetTask(ctx context.Context, taskID string, page, pageSize int) (*TaskStatus, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if pageSize > 0 {
		q.Set("page_size", fmt.Sprint(pageSize))
	}
	var out TaskStatus
	if err := c.get(ctx, c.url("/tasks/%s", taskID), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ControlTask 暂停/恢复/停止批量验证
func (c *Client) ControlTask(ctx context.Context, taskID string, action TaskAction) error {
	if !action.Valid() {
		return &ValidationError{Fields: []string{"action"}, msg: "action 必须是 pause/resume/stop"}
	}
	return c.post(ctx, c.url("/tasks/%s/"+string(action), taskID), nil, nil)
}

// StartOptimize 基于某次验证任务启动提示词优化
func (c *Client) StartOptimize(ctx context.Context, req StartOptimizeRequest) (*ActionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("task_id", req.TaskID)
	if req.Strategy != "" {
		q.Set("strategy", req.Strategy)
	}
	var out ActionResponse
	if err := c.post(ctx, c.url("/projects/%s/optimize", req.ProjectID)+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOptimizeStatus 获取项目的优化状态
func (c *Client) GetOptimizeStatus(ctx context.Context, projectID string) (*OptimizeStatus, error) {
	var out OptimizeStatus
	if err := c.get(ctx, c.url("/projects/%s/optimize/status", projectID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopOptimize 停止项目的优化
func (c *Client) StopOptimize(ctx context.Context, projectID string) error {
	return c.post(ctx, c.url("/projects/%s/optimize/stop", projectID), nil, nil)
}

// StartAutoIterate 以表单启动自动迭代
func (c *Client) StartAutoIterate(ctx context.Context, req StartAutoIterateRequest) (*ActionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out ActionResponse
	if err := c.post(ctx, c.url("/projects/%s/auto-iterate", req.ProjectID), req.form(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAutoIterateStatus 获取项目的自动迭代状态
func (c *Client) GetAutoIterateStatus(ctx context.Context, projectID string) (*AutoIterateStatus, error) {
	var out AutoIterateStatus
	if err := c.get(ctx, c.url("/projects/%s/auto-iterate/status", projectID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StopAutoIterate 停止项目的自动迭代
func (c *Client) StopAutoIterate(ctx context.Context, projectID string) error {
	return c.post(ctx, c.url("/projects/%s/auto-iterate/stop", projectID), nil, nil)
}

// Ping 只检查后端是否可达：拿到任何 HTTP 响应都算成功
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) url(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return c.BaseURL + fmt.Sprintf(format, args...)
}

func (c *Client) get(ctx context.Context, u string, q url.Values, out any) error {
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

// post 发送 POST；form 非空时以 application/x-www-form-urlencoded 提交
func (c *Client) post(ctx context.Context, u string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
