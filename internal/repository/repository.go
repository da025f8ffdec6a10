package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("job run not found")

// JobRun 一次已结束作业的记录
type JobRun struct {
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
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListJobRunsFilter 列表查询过滤条件
type ListJobRunsFilter struct {
	ProjectID string
	Kind      string
	Status    string
	Limit     int
	Offset    int
}

// Normalize 修正分页参数
func (f ListJobRunsFilter) Normalize() ListJobRunsFilter {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// JobRunRepository 作业记录仓储接口
type JobRunRepository interface {
	// UpsertRun 创建或更新作业记录，(kind, run_id) 唯一；run_id 为空时取 job_id
	UpsertRun(ctx context.Context, run JobRun) error

	// GetRun 获取单条记录
	GetRun(ctx context.Context, kind, runID string) (*JobRun, error)

	// ListRuns 查询记录列表（支持分页和过滤）
	ListRuns(ctx context.Context, filter ListJobRunsFilter) ([]JobRun, error)

	// CountRuns 统计记录总数
	CountRuns(ctx context.Context, filter ListJobRunsFilter) (int, error)
}
