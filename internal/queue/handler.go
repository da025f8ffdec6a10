package asynqx

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/repository"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// HistoryLister 拉取项目任务历史
type HistoryLister interface {
	ListProjectTasks(ctx context.Context, projectID string) ([]sdk.TaskSummary, error)
}

// HistoryStore 任务历史缓存
type HistoryStore interface {
	SaveHistory(ctx context.Context, projectID string, tasks []sdk.TaskSummary, ttl time.Duration) error
}

// HistoryRefresher 处理 history:refresh：记录作业结果并刷新任务历史缓存
type HistoryRefresher struct {
	api   HistoryLister
	store HistoryStore
	runs  repository.JobRunRepository
	ttl   time.Duration
}

// NewHistoryRefresher store 和 runs 可以为 nil
func NewHistoryRefresher(api HistoryLister, store HistoryStore, runs repository.JobRunRepository, ttl time.Duration) *HistoryRefresher {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &HistoryRefresher{api: api, store: store, runs: runs, ttl: ttl}
}

// ProcessTask 实现 asynq.Handler
func (h *HistoryRefresher) ProcessTask(ctx context.Context, t *asynq.Task) error {
	p, err := ParseHistoryRefreshPayload(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	log := logger.WithJob(p.Kind, p.JobID)
	retry, _ := asynq.GetRetryCount(ctx)

	if h.runs != nil {
		run := repository.JobRun{
			ProjectID:    p.ProjectID,
			JobID:        p.JobID,
			RunID:        p.RunID,
			Kind:         p.Kind,
			Status:       p.Status,
			Message:      p.Message,
			CurrentIndex: p.CurrentIndex,
			TotalCount:   p.TotalCount,
			ErrorCount:   p.ErrorCount,
			BestPrompt:   p.BestPrompt,
			SettledAt:    p.SettledAt,
		}
		if err := h.runs.UpsertRun(ctx, run); err != nil {
			return fmt.Errorf("record job run: %w", err)
		}
	}

	tasks, err := h.api.ListProjectTasks(ctx, p.ProjectID)
	if err != nil {
		if sdk.IsNotFound(err) {
			log.Info().Str("project_id", p.ProjectID).Msg("项目已删除，跳过历史刷新")
			return fmt.Errorf("project %s gone: %w", p.ProjectID, asynq.SkipRetry)
		}
		return fmt.Errorf("list project tasks: %w", err)
	}

	if h.store != nil {
		if err := h.store.SaveHistory(ctx, p.ProjectID, tasks, h.ttl); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
	}

	log.Info().Int("tasks", len(tasks)).Int("retry", retry).Msg("任务历史已刷新")
	return nil
}
