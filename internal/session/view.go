package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/internal/poller"
)

var (
	ErrViewClosed = errors.New("view closed")
	ErrNoJob      = errors.New("没有正在跟踪的作业")
)

// Slot 视图中某一类作业的状态槽
type Slot struct {
	Handle    model.JobHandle    `json:"handle"`
	Snapshot  *model.JobSnapshot `json:"snapshot,omitempty"`
	Active    bool               `json:"active"`
	Settled   bool               `json:"settled"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// PageLoader 拉取批量验证结果的指定页
type PageLoader interface {
	LoadPage(ctx context.Context, taskID string, page, pageSize int) ([]model.RowResult, error)
}

// SettledHook 作业进入终态后的回调（刷新历史、落库等）
type SettledHook func(h model.JobHandle, snap model.JobSnapshot)

// Options 视图参数
type Options struct {
	Poller   poller.Options
	PageSize int
	// Mirror 额外接收每个快照（例如 Redis 镜像），必须是非阻塞的
	Mirror   poller.Sink
	OnSettle []SettledHook
}

// View 一个项目页面拥有的全部轮询器，每类作业一个槽。
// mu 保护轮询器表，stateMu 保护槽状态；发布路径只拿 stateMu。
type View struct {
	id      string
	fetcher poller.Fetcher
	loader  PageLoader
	opts    Options

	mu      sync.Mutex
	pollers map[model.JobKind]*poller.Poller
	closed  bool
	created time.Time

	stateMu     sync.RWMutex
	slots       map[model.JobKind]*Slot
	stateClosed bool
}

// NewView 创建视图
func NewView(id string, fetcher poller.Fetcher, loader PageLoader, opts Options) *View {
	if opts.PageSize <= 0 {
		opts.PageSize = poller.DefaultPageSize
	}
	return &View{
		id:      id,
		fetcher: fetcher,
		loader:  loader,
		opts:    opts,
		pollers: map[model.JobKind]*poller.Poller{},
		slots:   map[model.JobKind]*Slot{},
		created: time.Now(),
	}
}

// ID 视图标识（项目 ID）
func (v *View) ID() string { return v.id }

// Watch 开始跟踪 h。同类作业的旧轮询器会先被停止；同一个作业仍在轮询时为空操作。
func (v *View) Watch(h model.JobHandle) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("%w: %v", poller.ErrInvalidHandle, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrViewClosed
	}

	if old := v.pollers[h.Kind]; old != nil {
		if cur, ok := old.Handle(); ok && cur == h && old.Active() {
			return nil
		}
		old.Stop()
	}

	v.stateMu.Lock()
	v.slots[h.Kind] = &Slot{Handle: h, UpdatedAt: time.Now()}
	v.stateMu.Unlock()

	opts := v.opts.Poller
	opts.OnSettled = v.settled
	p := poller.New(v.fetcher, v, opts)
	v.pollers[h.Kind] = p

	log := logger.WithProjectID(v.id)
	log.Info().Str("kind", string(h.Kind)).Str("job_id", h.JobID).Msg("开始跟踪作业")
	return p.Start(h)
}

// StopKind 停止某一类作业的轮询，槽中保留最后一次快照
func (v *View) StopKind(kind model.JobKind) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.pollers[kind]
	if !ok {
		return false
	}
	p.Stop()
	return true
}

// Publish 实现 poller.Sink；不属于当前槽的快照（已被替换的作业）直接丢弃
func (v *View) Publish(h model.JobHandle, snap model.JobSnapshot) {
	v.stateMu.Lock()
	if v.stateClosed {
		v.stateMu.Unlock()
		return
	}
	slot, ok := v.slots[h.Kind]
	if !ok || slot.Handle != h {
		v.stateMu.Unlock()
		return
	}
	s := snap
	slot.Snapshot = &s
	slot.UpdatedAt = time.Now()
	v.stateMu.Unlock()

	if v.opts.Mirror != nil {
		v.opts.Mirror.Publish(h, snap)
	}
}

func (v *View) settled(h model.JobHandle, snap model.JobSnapshot) {
	v.stateMu.Lock()
	if slot, ok := v.slots[h.Kind]; ok && slot.Handle == h {
		slot.Settled = true
	}
	v.stateMu.Unlock()

	log := logger.WithProjectID(v.id)
	log.Info().Str("kind", string(h.Kind)).Str("job_id", h.JobID).Str("status", string(snap.Status)).Msg("作业已结束")

	for _, hook := range v.opts.OnSettle {
		hook(h, snap)
	}
}

// Snapshot 读取某一类作业的槽
func (v *View) Snapshot(kind model.JobKind) (Slot, bool) {
	v.stateMu.RLock()
	slot, ok := v.slots[kind]
	var out Slot
	if ok {
		out = copySlot(slot)
	}
	v.stateMu.RUnlock()
	if !ok {
		return Slot{}, false
	}
	out.Active = v.active(kind)
	return out, true
}

// Slots 按固定顺序返回全部槽
func (v *View) Slots() []Slot {
	out := make([]Slot, 0, len(model.AllJobKinds))
	for _, kind := range model.AllJobKinds {
		if s, ok := v.Snapshot(kind); ok {
			out = append(out, s)
		}
	}
	return out
}

// LoadMore 为批量验证槽加载下一页结果
func (v *View) LoadMore(ctx context.Context) (Slot, error) {
	v.mu.Lock()
	closed := v.closed
	p := v.pollers[model.JobKindBatchTask]
	v.mu.Unlock()
	if closed {
		return Slot{}, ErrViewClosed
	}
	if v.loader == nil {
		return Slot{}, errors.New("未配置分页加载")
	}
	if p == nil {
		return Slot{}, ErrNoJob
	}
	h, ok := p.Handle()
	if !ok {
		return Slot{}, ErrNoJob
	}

	base := v.opts.PageSize
	loaded := 0
	if last, ok := p.Last(); ok {
		loaded = len(last.Results)
	}
	page := loaded/base + 1

	rows, err := v.loader.LoadPage(ctx, h.JobID, page, base)
	if err != nil {
		return Slot{}, fmt.Errorf("load page %d: %w", page, err)
	}
	if err := p.AppendPage((page-1)*base, rows); err != nil {
		return Slot{}, err
	}

	slot, _ := v.Snapshot(model.JobKindBatchTask)
	return slot, nil
}

// Close 拆除视图：停止全部轮询器并等待其退出，之后的发布一律丢弃。幂等。
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	ps := v.closeLocked()
	v.mu.Unlock()

	v.finishClose(ps)
}

// closeIfIdle 没有活跃轮询器且 cutoff 之后没有任何更新时把视图标记为关闭，
// 返回的轮询器由调用方交给 finishClose。判断与标记在同一把锁内完成，
// 不会与并发的 Watch 交错。
func (v *View) closeIfIdle(cutoff time.Time) ([]*poller.Poller, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || !v.idleLocked(cutoff) {
		return nil, false
	}
	return v.closeLocked(), true
}

// idleLocked 调用方持有 v.mu
func (v *View) idleLocked(cutoff time.Time) bool {
	for _, p := range v.pollers {
		if p.Active() {
			return false
		}
	}

	last := v.created
	v.stateMu.RLock()
	for _, slot := range v.slots {
		if slot.UpdatedAt.After(last) {
			last = slot.UpdatedAt
		}
	}
	v.stateMu.RUnlock()
	return !last.After(cutoff)
}

func (v *View) closeLocked() []*poller.Poller {
	v.closed = true
	ps := make([]*poller.Poller, 0, len(v.pollers))
	for _, p := range v.pollers {
		p.Stop()
		ps = append(ps, p)
	}
	return ps
}

func (v *View) finishClose(ps []*poller.Poller) {
	v.stateMu.Lock()
	v.stateClosed = true
	v.stateMu.Unlock()

	for _, p := range ps {
		p.Wait()
	}
}

func (v *View) active(kind model.JobKind) bool {
	v.mu.Lock()
	p, ok := v.pollers[kind]
	v.mu.Unlock()
	return ok && p.Active()
}

func copySlot(s *Slot) Slot {
	out := *s
	if s.Snapshot != nil {
		snap := s.Snapshot.Clone()
		out.Snapshot = &snap
	}
	return out
}
