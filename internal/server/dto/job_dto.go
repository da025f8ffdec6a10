package dto

import (
	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/internal/session"
)

// StartTaskRequest 启动批量验证（multipart/form-data 或 JSON）
type StartTaskRequest struct {
	FileID       string `form:"file_id" json:"file_id" example:"f_01"`
	QueryCol     string `form:"query_col" json:"query_col" example:"question"`
	TargetCol    string `form:"target_col" json:"target_col" example:"answer"`
	Prompt       string `form:"prompt" json:"prompt"`
	APIKey       string `form:"api_key" json:"api_key"`
	ModelName    string `form:"model_name" json:"model_name" example:"gpt-4o-mini"`
	APIURL       string `form:"api_url" json:"api_url" example:"https://api.openai.com/v1"`
	Concurrency  int    `form:"concurrency" json:"concurrency" example:"8"`
	ExtractField string `form:"extract_field" json:"extract_field"`
}

// StartOptimizeRequest 启动提示词优化
type StartOptimizeRequest struct {
	TaskID   string `json:"task_id" example:"t_01"`
	Strategy string `json:"strategy" example:"multi"`
}

// StartAutoIterateRequest 启动自动迭代
type StartAutoIterateRequest struct {
	FileID         string  `json:"file_id" example:"f_01"`
	QueryCol       string  `json:"query_col" example:"question"`
	TargetCol      string  `json:"target_col" example:"answer"`
	Prompt         string  `json:"prompt"`
	MaxRounds      int     `json:"max_rounds" example:"5"`
	TargetAccuracy float64 `json:"target_accuracy" example:"95"`
	Strategy       string  `json:"strategy" example:"multi"`
}

// WatchRequest 跟踪已有作业
type WatchRequest struct {
	Kind  string `json:"kind" binding:"required" example:"batch"`
	JobID string `json:"job_id" example:"t_01"` // 项目级作业可省略
}

// WatchResponse 开始跟踪后的响应
type WatchResponse struct {
	Handle model.JobHandle `json:"handle"`
}

// SlotResponse 单个槽
type SlotResponse struct {
	session.Slot
	Source string `json:"source" example:"memory"` // memory / mirror
}

// SlotListResponse 视图中全部槽
type SlotListResponse struct {
	ProjectID string         `json:"project_id"`
	Slots     []session.Slot `json:"slots"`
}
