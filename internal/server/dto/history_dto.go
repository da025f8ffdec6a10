package dto

import (
	"github.com/azhengyongqin/prompt-eval-hub/internal/repository"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// HistoryResponse 项目任务历史
type HistoryResponse struct {
	ProjectID string            `json:"project_id"`
	Source    string            `json:"source" example:"cache"` // cache / backend
	Tasks     []sdk.TaskSummary `json:"tasks"`
}

// RunListRequest 作业记录查询
type RunListRequest struct {
	ProjectID string `form:"project_id"`
	Kind      string `form:"kind" example:"batch"`
	Status    string `form:"status" example:"completed"`
	Limit     int    `form:"limit" example:"20"`
	Offset    int    `form:"offset" example:"0"`
}

// RunListResponse 作业记录列表
type RunListResponse struct {
	Items []repository.JobRun `json:"items"`
	Total int                 `json:"total"`
}
