package sdk

import (
	"net/url"
	"strconv"
)

// TaskAction 批量验证的控制动作
type TaskAction string

const (
	TaskActionPause  TaskAction = "pause"
	TaskActionResume TaskAction = "resume"
	TaskActionStop   TaskAction = "stop"
)

func (a TaskAction) Valid() bool {
	switch a {
	case TaskActionPause, TaskActionResume, TaskActionStop:
		return true
	default:
		return false
	}
}

// Project 项目详情
type Project struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CurrentPrompt string `json:"current_prompt"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// TaskSummary 项目下的一次验证任务（历史列表项）
type TaskSummary struct {
	ID           string   `json:"id"`
	Status       string   `json:"status"`
	Prompt       string   `json:"prompt,omitempty"`
	CurrentIndex int      `json:"current_index"`
	TotalCount   int      `json:"total_count"`
	Accuracy     *float64 `json:"accuracy,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

// TaskResult 批量验证的单行结果
type TaskResult struct {
	Index     int    `json:"index"`
	Query     string `json:"query"`
	Target    string `json:"target"`
	Output    string `json:"output"`
	IsCorrect bool   `json:"is_correct"`
	Reason    string `json:"reason,omitempty"`
}

// TaskStatus GET /tasks/{id} 的响应
type TaskStatus struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	CurrentIndex int          `json:"current_index"`
	TotalCount   int          `json:"total_count"`
	Results      []TaskResult `json:"results"`
	Errors       []TaskResult `json:"errors"`
	Message      string       `json:"message,omitempty"`
}

// OptimizeStatus GET /projects/{id}/optimize/status 的响应
type OptimizeStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	NewPrompt string `json:"new_prompt,omitempty"`
}

// AutoIterateStatus GET /projects/{id}/auto-iterate/status 的响应
type AutoIterateStatus struct {
	Status          string  `json:"status"`
	CurrentRound    int     `json:"current_round"`
	MaxRounds       int     `json:"max_rounds"`
	CurrentAccuracy float64 `json:"current_accuracy"`
	TargetAccuracy  float64 `json:"target_accuracy"`
	Message         string  `json:"message,omitempty"`
	BestPrompt      string  `json:"best_prompt,omitempty"`
}

// StartTaskResponse POST /tasks/start 的响应
type StartTaskResponse struct {
	TaskID string `json:"task_id"`
}

// ActionResponse 启动/停止类接口的通用响应
type ActionResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// StartTaskRequest 启动批量验证所需配置
type StartTaskRequest struct {
	ProjectID    string `json:"project_id" validate:"required"`
	FileID       string `json:"file_id" validate:"required"`
	QueryCol     string `json:"query_col" validate:"required"`
	TargetCol    string `json:"target_col" validate:"required"`
	Prompt       string `json:"prompt" validate:"required"`
	APIKey       string `json:"api_key" validate:"required"`
	ModelName    string `json:"model_name,omitempty"`
	APIURL       string `json:"api_url,omitempty" validate:"omitempty,url"`
	Concurrency  int    `json:"concurrency,omitempty" validate:"gte=0,lte=64"`
	ExtractField string `json:"extract_field,omitempty"`
}

func (r StartTaskRequest) fields() [][2]string {
	out := [][2]string{
		{"project_id", r.ProjectID},
		{"file_id", r.FileID},
		{"query_col", r.QueryCol},
		{"target_col", r.TargetCol},
		{"prompt", r.Prompt},
		{"api_key", r.APIKey},
	}
	if r.ModelName != "" {
		out = append(out, [2]string{"model_name", r.ModelName})
	}
	if r.APIURL != "" {
		out = append(out, [2]string{"api_url", r.APIURL})
	}
	if r.Concurrency > 0 {
		out = append(out, [2]string{"concurrency", strconv.Itoa(r.Concurrency)})
	}
	if r.ExtractField != "" {
		out = append(out, [2]string{"extract_field", r.ExtractField})
	}
	return out
}

// StartOptimizeRequest 启动提示词优化
type StartOptimizeRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	TaskID    string `json:"task_id" validate:"required"`
	Strategy  string `json:"strategy,omitempty" validate:"omitempty,max=64"`
}

// StartAutoIterateRequest 启动自动迭代
type StartAutoIterateRequest struct {
	ProjectID      string  `json:"project_id" validate:"required"`
	FileID         string  `json:"file_id" validate:"required"`
	QueryCol       string  `json:"query_col" validate:"required"`
	TargetCol      string  `json:"target_col" validate:"required"`
	Prompt         string  `json:"prompt" validate:"required"`
	MaxRounds      int     `json:"max_rounds" validate:"gte=1,lte=50"`
	TargetAccuracy float64 `json:"target_accuracy" validate:"gt=0,lte=100"`
	Strategy       string  `json:"strategy,omitempty" validate:"omitempty,max=64"`
}

func (r StartAutoIterateRequest) form() url.Values {
	v := url.Values{}
	v.Set("file_id", r.FileID)
	v.Set("query_col", r.QueryCol)
	v.Set("target_col", r.TargetCol)
	v.Set("prompt", r.Prompt)
	v.Set("max_rounds", strconv.Itoa(r.MaxRounds))
	v.Set("target_accuracy", strconv.FormatFloat(r.TargetAccuracy, 'f', -1, 64))
	if r.Strategy != "" {
		v.Set("strategy", r.Strategy)
	}
	return v
}
