package healthcheck

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pinger 可探活的依赖（pgxpool.Pool、cache.RedisCache、sdk.API 都实现了它）
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker 健康检查器
type HealthChecker struct {
	deps    map[string]Pinger
	timeout time.Duration
	version string
}

// NewHealthChecker 创建健康检查器，nil 依赖会被忽略
func NewHealthChecker(version string, deps map[string]Pinger) *HealthChecker {
	h := &HealthChecker{
		deps:    map[string]Pinger{},
		timeout: 2 * time.Second,
		version: version,
	}
	for name, p := range deps {
		if p != nil {
			h.deps[name] = p
		}
	}
	return h
}

// CheckResult 健康检查结果
type CheckResult struct {
	Status  string            `json:"status"` // "ok" or "error"
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version,omitempty"`
}

// LivenessCheck 存活检查（快速返回，不检查依赖）
func (h *HealthChecker) LivenessCheck() CheckResult {
	return CheckResult{
		Status: "ok",
		Checks: map[string]string{
			"service": "running",
		},
		Version: h.version,
	}
}

// ReadinessCheck 就绪检查，并发探测所有依赖
func (h *HealthChecker) ReadinessCheck(ctx context.Context) CheckResult {
	if ctx == nil {
		ctx = context.Background()
	}
	result := CheckResult{
		Status:  "ok",
		Checks:  make(map[string]string, len(h.deps)),
		Version: h.version,
	}

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name // go 1.21: per-iteration copy for the goroutine below
		p := h.deps[name]
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, h.timeout)
			defer cancel()

			err := p.Ping(pctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Checks[name] = "error: " + err.Error()
				result.Status = "error"
				return nil
			}
			result.Checks[name] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	return result
}
