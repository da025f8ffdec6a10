package model

import (
	"errors"
	"strings"
	"time"
)

// JobKind 作业类型，决定状态接口与合并策略。
type JobKind string

const (
	JobKindBatchTask    JobKind = "batch"
	JobKindOptimization JobKind = "optimize"
	JobKindAutoIterate  JobKind = "auto-iterate"
)

// AllJobKinds 按固定顺序列出全部作业类型。
var AllJobKinds = []JobKind{JobKindBatchTask, JobKindOptimization, JobKindAutoIterate}

func (k JobKind) Valid() bool {
	switch k {
	case JobKindBatchTask, JobKindOptimization, JobKindAutoIterate:
		return true
	default:
		return false
	}
}

// ParseJobKind 解析路径/命令行中的作业类型，兼容几个常见别名。
func ParseJobKind(raw string) (JobKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "batch", "task", "batch-task":
		return JobKindBatchTask, nil
	case "optimize", "optimization":
		return JobKindOptimization, nil
	case "auto-iterate", "auto_iterate", "autoiterate":
		return JobKindAutoIterate, nil
	default:
		return "", errors.New("未知的作业类型: " + raw)
	}
}

// JobHandle 标识一个被轮询的作业。
// BatchTask 以 task_id 区分；Optimization / AutoIterate 的状态按项目查询，
// 所以 ProjectID 必填，JobID 缺省时取 ProjectID。
type JobHandle struct {
	JobID     string  `json:"job_id"`
	Kind      JobKind `json:"kind"`
	ProjectID string  `json:"project_id,omitempty"`
}

// NewJobHandle 构造作业句柄；项目级作业未给 jobID 时使用 projectID。
func NewJobHandle(kind JobKind, projectID, jobID string) JobHandle {
	if jobID == "" && kind != JobKindBatchTask {
		jobID = projectID
	}
	return JobHandle{JobID: jobID, Kind: kind, ProjectID: projectID}
}

// Validate 检查启动轮询的前置条件。
func (h JobHandle) Validate() error {
	if strings.TrimSpace(h.JobID) == "" {
		return errors.New("job_id 不能为空")
	}
	if !h.Kind.Valid() {
		return errors.New("kind 无效: " + string(h.Kind))
	}
	if h.Kind != JobKindBatchTask && strings.TrimSpace(h.ProjectID) == "" {
		return errors.New("project_id 不能为空")
	}
	return nil
}

// Key 用于缓存、去重等场景的稳定标识。
func (h JobHandle) Key() string {
	return string(h.Kind) + ":" + h.JobID
}

// Progress 批量验证进度。
type Progress struct {
	CurrentIndex int `json:"current_index"`
	TotalCount   int `json:"total_count"`
}

// Rounds 自动迭代轮次信息。
type Rounds struct {
	Current        int     `json:"current"`
	Max            int     `json:"max"`
	Accuracy       float64 `json:"accuracy"`
	TargetAccuracy float64 `json:"target_accuracy"`
}

// RowResult 单行验证结果。
type RowResult struct {
	Index     int    `json:"index"`
	Query     string `json:"query"`
	Target    string `json:"target"`
	Output    string `json:"output"`
	IsCorrect bool   `json:"is_correct"`
	Reason    string `json:"reason,omitempty"`
}

// RowError 判错的行（RowResult 的子集）。
type RowError struct {
	Index  int    `json:"index"`
	Query  string `json:"query"`
	Target string `json:"target"`
	Output string `json:"output"`
	Reason string `json:"reason,omitempty"`
}

// ErrorFromResult 从判错的结果行构造 RowError。
func ErrorFromResult(r RowResult) RowError {
	return RowError{Index: r.Index, Query: r.Query, Target: r.Target, Output: r.Output, Reason: r.Reason}
}

// JobSnapshot 一次轮询得到的作业状态。
type JobSnapshot struct {
	Status     JobStatus   `json:"status"`
	Progress   Progress    `json:"progress"`
	Results    []RowResult `json:"results,omitempty"`
	Errors     []RowError  `json:"errors,omitempty"`
	Message    string      `json:"message,omitempty"`
	Rounds     *Rounds     `json:"rounds,omitempty"`
	BestPrompt string      `json:"best_prompt,omitempty"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

// Clone 深拷贝切片，避免发布出去的快照被后续合并修改。
func (s JobSnapshot) Clone() JobSnapshot {
	out := s
	if s.Results != nil {
		out.Results = append([]RowResult(nil), s.Results...)
	}
	if s.Errors != nil {
		out.Errors = append([]RowError(nil), s.Errors...)
	}
	if s.Rounds != nil {
		r := *s.Rounds
		out.Rounds = &r
	}
	return out
}
