package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/internal/poller"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// followCmd 跟踪作业直到结束或收到 Ctrl-C
func (c *cli) followCmd(cmd *cobra.Command, api sdk.API, h model.JobHandle) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snap, settled, err := c.follow(ctx, api, h, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if !settled {
		return nil
	}
	switch snap.Status {
	case model.JobStatusError, model.JobStatusFailed:
		return fmt.Errorf("作业失败: %s", snap.Message)
	}
	return nil
}

// follow 轮询 h 并把每次状态变化写到 out。
// 作业进入终态时返回 settled=true；后端没有进行中的作业（idle）时直接返回；
// ctx 取消时只停止本地轮询，
// 设置了 --stop-on-exit 才会同时停止后端作业。
func (c *cli) follow(ctx context.Context, api sdk.API, h model.JobHandle, out io.Writer) (model.JobSnapshot, bool, error) {
	var (
		mu       sync.Mutex
		lastLine string
	)
	// idle 时轮询器停止但不会触发 OnSettled
	idleCh := make(chan model.JobSnapshot, 1)
	sink := poller.SinkFunc(func(_ model.JobHandle, snap model.JobSnapshot) {
		if snap.Status == model.JobStatusIdle {
			select {
			case idleCh <- snap:
			default:
			}
		}
		line := formatSnapshot(h, snap)
		mu.Lock()
		defer mu.Unlock()
		if line == lastLine {
			return
		}
		lastLine = line
		fmt.Fprintln(out, line)
	})

	settledCh := make(chan model.JobSnapshot, 1)
	p := poller.New(poller.NewBackendFetcher(api, c.pageSize), sink, poller.Options{
		Interval: c.interval,
		OnSettled: func(_ model.JobHandle, snap model.JobSnapshot) {
			select {
			case settledCh <- snap:
			default:
			}
		},
	})
	if err := p.Start(h); err != nil {
		return model.JobSnapshot{}, false, err
	}
	defer p.Wait()
	defer p.Stop()

	select {
	case snap := <-settledCh:
		if snap.BestPrompt != "" {
			fmt.Fprintf(out, "最佳提示词:\n%s\n", snap.BestPrompt)
		}
		return snap, true, nil
	case snap := <-idleCh:
		fmt.Fprintln(out, "没有进行中的作业")
		return snap, false, nil
	case <-ctx.Done():
	}

	p.Stop()
	last, _ := p.Last()
	if !c.stopOnExit {
		fmt.Fprintln(out, "已停止本地跟踪，后端作业仍在运行")
		return last, false, nil
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := stopBackend(stopCtx, api, h); err != nil {
		return last, false, fmt.Errorf("停止后端作业失败: %w", err)
	}
	logger.L.Info().Str("kind", string(h.Kind)).Str("job_id", h.JobID).Msg("已停止后端作业")
	fmt.Fprintln(out, "已停止后端作业")
	return last, false, nil
}

// stopBackend 按作业类型调用对应的停止接口
func stopBackend(ctx context.Context, api sdk.API, h model.JobHandle) error {
	switch h.Kind {
	case model.JobKindBatchTask:
		return api.ControlTask(ctx, h.JobID, sdk.TaskActionStop)
	case model.JobKindOptimization:
		return api.StopOptimize(ctx, h.ProjectID)
	case model.JobKindAutoIterate:
		return api.StopAutoIterate(ctx, h.ProjectID)
	default:
		return fmt.Errorf("%w: kind=%s", poller.ErrInvalidHandle, h.Kind)
	}
}

// formatSnapshot 单行进度
func formatSnapshot(h model.JobHandle, snap model.JobSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s %s] %s", h.Kind, h.JobID, snap.Status)

	switch h.Kind {
	case model.JobKindBatchTask:
		fmt.Fprintf(&b, " %d/%d", snap.Progress.CurrentIndex, snap.Progress.TotalCount)
		if n := len(snap.Errors); n > 0 {
			fmt.Fprintf(&b, " 错误 %d", n)
		}
	case model.JobKindAutoIterate:
		if r := snap.Rounds; r != nil {
			fmt.Fprintf(&b, " 第 %d/%d 轮 准确率 %.1f%% / %.1f%%", r.Current, r.Max, r.Accuracy, r.TargetAccuracy)
		}
	}

	if snap.Message != "" {
		b.WriteString(" ")
		b.WriteString(snap.Message)
	}
	return b.String()
}
