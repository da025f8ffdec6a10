package cache

import (
	"context"
	"time"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/metrics"
	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
)

// SnapshotWriter 镜像写入目标，RedisCache 实现了它
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, slot MirroredSlot, ttl time.Duration) error
}

// Mirror 把发布的快照异步写入 Redis。
// Publish 非阻塞，缓冲满时丢弃并计数；写入由 Run 的单个协程完成。
type Mirror struct {
	w   SnapshotWriter
	ttl time.Duration
	ch  chan MirroredSlot
}

// NewMirror 创建镜像器，buffer<=0 时使用 256
func NewMirror(w SnapshotWriter, ttl time.Duration, buffer int) *Mirror {
	if buffer <= 0 {
		buffer = 256
	}
	return &Mirror{
		w:   w,
		ttl: ttl,
		ch:  make(chan MirroredSlot, buffer),
	}
}

// Publish 实现 poller.Sink
func (m *Mirror) Publish(h model.JobHandle, snap model.JobSnapshot) {
	slot := MirroredSlot{Handle: h, Snapshot: snap, MirroredAt: time.Now()}
	select {
	case m.ch <- slot:
	default:
		metrics.RecordMirrorDrop()
		logger.L.Warn().Str("kind", string(h.Kind)).Str("job_id", h.JobID).Msg("镜像队列已满，丢弃快照")
	}
}

// Run 消费镜像队列直到 ctx 取消，退出前尽量写完已缓冲的快照
func (m *Mirror) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			m.drain()
			return nil
		case slot := <-m.ch:
			m.write(ctx, slot)
		}
	}
}

func (m *Mirror) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case slot := <-m.ch:
			m.write(ctx, slot)
		default:
			return
		}
	}
}

func (m *Mirror) write(ctx context.Context, slot MirroredSlot) {
	if err := m.w.SaveSnapshot(ctx, slot, m.ttl); err != nil {
		metrics.RecordError("mirror", "save_snapshot")
		logger.L.Warn().Err(err).Str("job_id", slot.Handle.JobID).Msg("写入镜像快照失败")
	}
}
