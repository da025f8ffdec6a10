package asynqx

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
)

// TypeHistoryRefresh 作业结束后刷新任务历史
const TypeHistoryRefresh = "history:refresh"

// HistoryRefreshPayload history:refresh 任务的 payload
type HistoryRefreshPayload struct {
	ProjectID    string    `json:"project_id"`
	JobID        string    `json:"job_id"`
	RunID        string    `json:"run_id"`
	Kind         string    `json:"kind"`
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
	CurrentIndex int       `json:"current_index"`
	TotalCount   int       `json:"total_count"`
	ErrorCount   int       `json:"error_count"`
	BestPrompt   string    `json:"best_prompt,omitempty"`
	SettledAt    time.Time `json:"settled_at"`
}

// NewHistoryRefreshPayload 由终态快照生成 payload
func NewHistoryRefreshPayload(h model.JobHandle, snap model.JobSnapshot) HistoryRefreshPayload {
	projectID := h.ProjectID
	if projectID == "" {
		projectID = h.JobID
	}
	settledAt := snap.FetchedAt
	if settledAt.IsZero() {
		settledAt = time.Now()
	}
	return HistoryRefreshPayload{
		ProjectID:    projectID,
		JobID:        h.JobID,
		RunID:        RunID(h, settledAt),
		Kind:         string(h.Kind),
		Status:       string(snap.Status),
		Message:      snap.Message,
		CurrentIndex: snap.Progress.CurrentIndex,
		TotalCount:   snap.Progress.TotalCount,
		ErrorCount:   len(snap.Errors),
		BestPrompt:   snap.BestPrompt,
		SettledAt:    settledAt,
	}
}

// RunID 一次作业运行的标识。
// BatchTask 的 task_id 每次启动都不同，直接使用；项目级作业的 JobID 就是项目 id，
// 同一项目的多次运行靠结束时间区分。
func RunID(h model.JobHandle, settledAt time.Time) string {
	if h.Kind == model.JobKindBatchTask {
		return h.JobID
	}
	return h.JobID + "@" + strconv.FormatInt(settledAt.UnixNano(), 10)
}

// DedupID 同一次运行只保留一条刷新任务
func (p HistoryRefreshPayload) DedupID() string {
	id := p.RunID
	if id == "" {
		id = p.JobID
	}
	return TypeHistoryRefresh + ":" + p.Kind + ":" + id
}

// NewHistoryRefreshTask 构造 asynq 任务
func NewHistoryRefreshTask(p HistoryRefreshPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypeHistoryRefresh, b), nil
}

// ParseHistoryRefreshPayload 解析 payload
func ParseHistoryRefreshPayload(t *asynq.Task) (HistoryRefreshPayload, error) {
	var p HistoryRefreshPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal payload: %w", err)
	}
	if p.ProjectID == "" || p.JobID == "" || p.Kind == "" {
		return p, fmt.Errorf("payload 缺少 project_id/job_id/kind")
	}
	return p, nil
}

type EnqueueParams struct {
	Queue          string
	TaskID         string
	MaxRetry       int32
	TimeoutSeconds int32
	DelaySeconds   int32
	// Retention 完成后在 Redis 中保留的时长，期间相同 TaskID 会被拒绝
	Retention time.Duration
}

func EnqueueOptions(p EnqueueParams) []asynq.Option {
	var opts []asynq.Option

	if p.Queue != "" {
		opts = append(opts, asynq.Queue(p.Queue))
	}
	if p.TaskID != "" {
		opts = append(opts, asynq.TaskID(p.TaskID))
	}
	if p.MaxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(int(p.MaxRetry)))
	}
	if p.TimeoutSeconds > 0 {
		opts = append(opts, asynq.Timeout(time.Duration(p.TimeoutSeconds)*time.Second))
	}
	if p.DelaySeconds > 0 {
		opts = append(opts, asynq.ProcessIn(time.Duration(p.DelaySeconds)*time.Second))
	}
	if p.Retention > 0 {
		opts = append(opts, asynq.Retention(p.Retention))
	}

	return opts
}
