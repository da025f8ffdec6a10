package asynqx

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/metrics"
	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
)

// Enqueuer *asynq.Client 实现了它
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher 把作业结束通知投递到 settled 队列
type Dispatcher struct {
	client Enqueuer
	queue  string
}

func NewDispatcher(client Enqueuer, queue string) *Dispatcher {
	if queue == "" {
		queue = "settled"
	}
	return &Dispatcher{client: client, queue: queue}
}

// Queue 投递的队列名
func (d *Dispatcher) Queue() string { return d.queue }

// Settled 可直接注册为 session.SettledHook。
// 在轮询协程中执行，入队失败只记录日志。
func (d *Dispatcher) Settled(h model.JobHandle, snap model.JobSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := d.Dispatch(ctx, NewHistoryRefreshPayload(h, snap)); err != nil {
		metrics.RecordError("queue", "enqueue")
		log := logger.WithJob(string(h.Kind), h.JobID)
		log.Warn().Err(err).Msg("投递历史刷新任务失败")
	}
}

// Dispatch 入队一条 history:refresh，同一作业重复投递视为成功
func (d *Dispatcher) Dispatch(ctx context.Context, p HistoryRefreshPayload) error {
	task, err := NewHistoryRefreshTask(p)
	if err != nil {
		return err
	}

	opts := EnqueueOptions(EnqueueParams{
		Queue:          d.queue,
		TaskID:         p.DedupID(),
		MaxRetry:       5,
		TimeoutSeconds: 30,
		Retention:      10 * time.Minute,
	})

	info, err := d.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			logger.L.Debug().Str("job_id", p.JobID).Msg("历史刷新任务已存在，跳过")
			return nil
		}
		return err
	}

	logger.L.Debug().Str("asynq_id", info.ID).Str("queue", info.Queue).Str("job_id", p.JobID).Msg("已投递历史刷新任务")
	return nil
}
