package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
)

// Hook 关闭钩子
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// GracefulShutdownManager 优雅关闭管理器。
// 钩子按注册的相反顺序执行（后启动的先关闭），单个钩子失败不会中断后续钩子。
type GracefulShutdownManager struct {
	timeout time.Duration
	hooks   []namedHook
	mu      sync.Mutex
	done    bool
}

// NewGracefulShutdownManager 创建优雅关闭管理器
func NewGracefulShutdownManager(timeout time.Duration) *GracefulShutdownManager {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GracefulShutdownManager{timeout: timeout}
}

// AddHook 添加关闭钩子
func (g *GracefulShutdownManager) AddHook(name string, hook Hook) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, namedHook{name: name, fn: hook})
}

// AddCloser 添加不需要 ctx 的关闭函数（例如 registry.Close）
func (g *GracefulShutdownManager) AddCloser(name string, closeFn func()) {
	g.AddHook(name, func(context.Context) error {
		closeFn()
		return nil
	})
}

// Shutdown 执行优雅关闭，只生效一次
func (g *GracefulShutdownManager) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	if g.done {
		g.mu.Unlock()
		return nil
	}
	g.done = true
	hooks := make([]namedHook, len(g.hooks))
	copy(hooks, g.hooks)
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	logger.L.Info().Dur("timeout", g.timeout).Int("hooks", len(hooks)).Msg("开始优雅关闭")

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		start := time.Now()
		if err := h.fn(ctx); err != nil {
			logger.L.Error().Err(err).Str("hook", h.name).Msg("关闭钩子执行失败")
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		logger.L.Debug().Str("hook", h.name).Dur("elapsed", time.Since(start)).Msg("关闭钩子完成")
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.L.Info().Msg("优雅关闭完成")
	return nil
}
