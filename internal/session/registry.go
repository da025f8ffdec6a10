package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/poller"
)

// Registry 按项目 ID 管理视图
type Registry struct {
	fetcher poller.Fetcher
	loader  PageLoader
	opts    Options

	mu    sync.RWMutex
	items map[string]*View // key: project_id
}

func NewRegistry(fetcher poller.Fetcher, loader PageLoader, opts Options) *Registry {
	return &Registry{
		fetcher: fetcher,
		loader:  loader,
		opts:    opts,
		items:   map[string]*View{},
	}
}

// View 获取或创建项目的视图
func (r *Registry) View(projectID string) *View {
	r.mu.RLock()
	v, ok := r.items[projectID]
	r.mu.RUnlock()
	if ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.items[projectID]; ok {
		return v
	}
	v = NewView(projectID, r.fetcher, r.loader, r.opts)
	r.items[projectID] = v
	return v
}

// Get 获取已存在的视图
func (r *Registry) Get(projectID string) (*View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[projectID]
	return v, ok
}

// Drop 拆除并移除视图（例如项目已被删除）
func (r *Registry) Drop(projectID string) bool {
	r.mu.Lock()
	v, ok := r.items[projectID]
	delete(r.items, projectID)
	r.mu.Unlock()

	if ok {
		v.Close()
	}
	return ok
}

// List 返回所有视图的项目 ID（排序）
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.items))
	for id := range r.items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Close 拆除全部视图
func (r *Registry) Close() {
	r.mu.Lock()
	views := make([]*View, 0, len(r.items))
	for _, v := range r.items {
		views = append(views, v)
	}
	r.items = map[string]*View{}
	r.mu.Unlock()

	for _, v := range views {
		v.Close()
	}
}

// EvictIdle 移除所有轮询器都已停止、且超过 ttl 没有更新的视图，返回被移除的项目 ID。
// 之后的读取由 Redis 镜像兜底。
func (r *Registry) EvictIdle(ttl time.Duration) []string {
	cutoff := time.Now().Add(-ttl)

	type closing struct {
		view    *View
		pollers []*poller.Poller
	}
	var (
		out     []string
		pending []closing
	)

	r.mu.Lock()
	for id, v := range r.items {
		if ps, ok := v.closeIfIdle(cutoff); ok {
			delete(r.items, id)
			out = append(out, id)
			pending = append(pending, closing{view: v, pollers: ps})
		}
	}
	r.mu.Unlock()

	for _, c := range pending {
		c.view.finishClose(c.pollers)
	}
	sort.Strings(out)
	return out
}

// RunEvictor 每隔 every 清理一次空闲视图，直到 ctx 结束。ttl <= 0 时不清理。
func (r *Registry) RunEvictor(ctx context.Context, every, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if every <= 0 {
		every = time.Minute
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	log := logger.WithComponent("session")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ids := r.EvictIdle(ttl); len(ids) > 0 {
				log.Info().Strs("project_ids", ids).Msg("已清理空闲视图")
			}
		}
	}
}
