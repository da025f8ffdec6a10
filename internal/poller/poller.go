// Package poller 轮询后端作业状态，把快照合并后发布给调用方，直到作业进入终态。
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/metrics"
	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

const (
	DefaultInterval   = time.Second
	DefaultRetryGrace = 2 * time.Second
	DefaultMaxRetries = 1

	// ConnectionLostMessage 连续网络失败后合成的 error 快照文案
	ConnectionLostMessage = "连接中断，请刷新页面后重试"
)

var (
	ErrInvalidHandle = errors.New("invalid job handle")
	ErrStopped       = errors.New("poller stopped")
)

// FetchRequest 一次状态查询的输入
type FetchRequest struct {
	Handle model.JobHandle
	// Loaded 本地已持有的结果行数，BatchTask 据此放大分页
	Loaded int
}

// Fetcher 查询作业状态。
// 返回 *sdk.APIError 视为应用层失败，其它错误视为网络失败。
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (model.JobSnapshot, error)
}

// Sink 接收发布的快照。Publish 在轮询器锁内调用，不能回调轮询器。
type Sink interface {
	Publish(h model.JobHandle, snap model.JobSnapshot)
}

// SinkFunc 函数适配 Sink
type SinkFunc func(h model.JobHandle, snap model.JobSnapshot)

func (f SinkFunc) Publish(h model.JobHandle, snap model.JobSnapshot) { f(h, snap) }

// SettledFunc 作业进入终态后只调用一次
type SettledFunc func(h model.JobHandle, snap model.JobSnapshot)

// Options 轮询参数，零值使用默认值
type Options struct {
	Interval   time.Duration
	RetryGrace time.Duration
	MaxRetries uint64
	OnSettled  SettledFunc
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.RetryGrace <= 0 {
		o.RetryGrace = DefaultRetryGrace
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	return o
}

// Poller 单个作业的状态轮询器（TaskStatusPoller）。
// 同一时刻最多一个轮询循环；Stop 之后不会再有任何发布。
type Poller struct {
	fetcher Fetcher
	sink    Sink
	opts    Options

	mu       sync.Mutex
	handle   *model.JobHandle
	last     *model.JobSnapshot
	failures int
	active   bool
	stopped  bool
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
}

// New 创建轮询器
func New(fetcher Fetcher, sink Sink, opts Options) *Poller {
	if sink == nil {
		sink = SinkFunc(func(model.JobHandle, model.JobSnapshot) {})
	}
	return &Poller{
		fetcher: fetcher,
		sink:    sink,
		opts:    opts.withDefaults(),
	}
}

// Start 开始轮询 h，第一次查询立即发出。已有活跃循环时为空操作。
func (p *Poller) Start(h model.JobHandle) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		return nil
	}
	if p.handle == nil || *p.handle != h {
		p.last = nil
	}
	p.handle = &h
	p.active = true
	p.stopped = false
	p.failures = 0
	p.gen++

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done

	metrics.PollerStarted(string(h.Kind))
	go p.run(ctx, p.gen, h, done)
	return nil
}

// Stop 停止轮询并取消在途请求。幂等，任意时刻可调用。
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopped = true
	p.gen++
	p.deactivateLocked()
}

// Wait 等待当前轮询 goroutine 退出
func (p *Poller) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Active 是否仍在调度轮询
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Handle 当前作业，未启动时 ok=false
func (p *Poller) Handle() (model.JobHandle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return model.JobHandle{}, false
	}
	return *p.handle, true
}

// Last 最近一次发布的快照
func (p *Poller) Last() (model.JobSnapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return model.JobSnapshot{}, false
	}
	return p.last.Clone(), true
}

// Reconcile 按当前作业类型合并快照
func (p *Poller) Reconcile(prev *model.JobSnapshot, next model.JobSnapshot) model.JobSnapshot {
	h, ok := p.Handle()
	if !ok {
		return next.Clone()
	}
	return Reconcile(h.Kind, prev, next)
}

// AppendPage 把"加载更多"拿到的一页结果拼进本地快照并重新发布。
// offset 是该页第一行在结果列表中的位置。
func (p *Poller) AppendPage(offset int, rows []model.RowResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || p.handle == nil {
		return ErrStopped
	}
	if p.handle.Kind != model.JobKindBatchTask {
		return fmt.Errorf("%s 不支持分页加载", p.handle.Kind)
	}

	cur := model.JobSnapshot{}
	if p.last != nil {
		cur = p.last.Clone()
	}
	cur.Results = spliceRows(cur.Results, offset, rows)
	cur.Errors = appendErrors(cur.Errors, rows)
	p.publishLocked(*p.handle, cur)
	return nil
}

type pollOutcome struct {
	next    time.Duration
	cont    bool
	settled *model.JobSnapshot
}

func (p *Poller) run(ctx context.Context, gen uint64, h model.JobHandle, done chan struct{}) {
	defer close(done)

	log := logger.WithJob(string(h.Kind), h.JobID)
	retry := newRetryPolicy(p.opts.RetryGrace, p.opts.MaxRetries)

	for {
		loaded, ok := p.loaded(gen)
		if !ok {
			return
		}

		start := time.Now()
		snap, err := p.fetcher.Fetch(ctx, FetchRequest{Handle: h, Loaded: loaded})
		out := p.handleResult(ctx, gen, h, snap, err, retry, time.Since(start), &log)

		if out.settled != nil && p.opts.OnSettled != nil {
			p.opts.OnSettled(h, *out.settled)
		}
		if !out.cont {
			return
		}

		timer := time.NewTimer(out.next)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *Poller) loaded(gen uint64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || !p.active {
		return 0, false
	}
	if p.last == nil {
		return 0, true
	}
	return len(p.last.Results), true
}

// handleResult 在锁内检查代数，过期响应直接丢弃
func (p *Poller) handleResult(ctx context.Context, gen uint64, h model.JobHandle, snap model.JobSnapshot, err error,
	retry backoff.BackOff, elapsed time.Duration, log *zerolog.Logger) pollOutcome {
	kind := string(h.Kind)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || !p.active || ctx.Err() != nil {
		metrics.RecordPoll(kind, metrics.OutcomeDiscarded, 0)
		return pollOutcome{}
	}

	if err != nil {
		if apiErr, ok := sdk.AsAPIError(err); ok {
			metrics.RecordPoll(kind, metrics.OutcomeAppError, elapsed.Seconds())
			log.Warn().Int("http_status", apiErr.StatusCode).Str("detail", apiErr.Detail).Msg("后端返回错误，作业标记为失败")
			return p.settleLocked(h, p.failedSnapshotLocked(model.JobStatusFailed, apiErr.Detail))
		}

		p.failures++
		metrics.RecordPoll(kind, metrics.OutcomeTransport, elapsed.Seconds())
		d := retry.NextBackOff()
		if d == backoff.Stop {
			log.Error().Err(err).Int("failures", p.failures).Msg("状态查询连续失败，停止轮询")
			return p.settleLocked(h, p.failedSnapshotLocked(model.JobStatusError, ConnectionLostMessage))
		}
		metrics.RecordPollRetry(kind)
		log.Warn().Err(err).Dur("retry_in", d).Msg("状态查询失败，稍后重试")
		return pollOutcome{next: d, cont: true}
	}

	p.failures = 0
	retry.Reset()
	metrics.RecordPoll(kind, metrics.OutcomeOK, elapsed.Seconds())

	merged := Reconcile(h.Kind, p.last, snap)
	switch {
	case merged.Status.IsTerminal():
		return p.settleLocked(h, merged)
	case merged.Status == model.JobStatusIdle:
		p.publishLocked(h, merged)
		p.deactivateLocked()
		log.Info().Msg("没有进行中的作业，停止轮询")
		return pollOutcome{}
	default:
		if !merged.Status.Valid() {
			log.Warn().Str("status", string(merged.Status)).Msg("未知状态，继续轮询")
		}
		p.publishLocked(h, merged)
		return pollOutcome{next: p.opts.Interval, cont: true}
	}
}

func (p *Poller) settleLocked(h model.JobHandle, snap model.JobSnapshot) pollOutcome {
	p.publishLocked(h, snap)
	p.deactivateLocked()
	metrics.RecordSettled(string(h.Kind), string(snap.Status))
	out := snap.Clone()
	return pollOutcome{settled: &out}
}

func (p *Poller) publishLocked(h model.JobHandle, snap model.JobSnapshot) {
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	p.last = &snap
	p.sink.Publish(h, snap.Clone())
}

// failedSnapshotLocked 保留已展示的进度与结果，只替换状态和文案
func (p *Poller) failedSnapshotLocked(status model.JobStatus, message string) model.JobSnapshot {
	out := model.JobSnapshot{}
	if p.last != nil {
		out = p.last.Clone()
	}
	out.Status = status
	out.Message = message
	out.FetchedAt = time.Now()
	return out
}

func (p *Poller) deactivateLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.active {
		p.active = false
		if p.handle != nil {
			metrics.PollerStopped(string(p.handle.Kind))
		}
	}
}
