package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/prompt-eval-hub/internal/cache"
	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/repository"
	"github.com/azhengyongqin/prompt-eval-hub/internal/server/dto"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// HistoryStore 任务历史缓存，*cache.RedisCache 实现了它
type HistoryStore interface {
	LoadHistory(ctx context.Context, projectID string) ([]sdk.TaskSummary, error)
	SaveHistory(ctx context.Context, projectID string, tasks []sdk.TaskSummary, ttl time.Duration) error
}

// HistoryHandler 任务历史与作业记录 API Handler
type HistoryHandler struct {
	api     sdk.API
	history HistoryStore
	runs    repository.JobRunRepository
	ttl     time.Duration
}

// NewHistoryHandler 创建 HistoryHandler，history 与 runs 可以为 nil
func NewHistoryHandler(api sdk.API, history HistoryStore, runs repository.JobRunRepository, ttl time.Duration) *HistoryHandler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &HistoryHandler{api: api, history: history, runs: runs, ttl: ttl}
}

// GetHistory godoc
// @Summary 查询项目任务历史
// @Description 优先读取缓存（作业结束后由 history:refresh 刷新），未命中时回源后端
// @Tags Projects
// @Produce json
// @Param project_id path string true "项目 ID"
// @Param refresh query bool false "跳过缓存"
// @Success 200 {object} dto.HistoryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /projects/{project_id}/history [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := c.Param("project_id")

	if h.history != nil && c.Query("refresh") != "true" {
		tasks, err := h.history.LoadHistory(ctx, projectID)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, dto.HistoryResponse{ProjectID: projectID, Source: "cache", Tasks: tasks})
			return
		case !errors.Is(err, cache.ErrCacheMiss):
			logger.L.Warn().Err(err).Str("project_id", projectID).Msg("读取任务历史缓存失败，回源后端")
		}
	}

	tasks, err := h.api.ListProjectTasks(ctx, projectID)
	if err != nil {
		writeBackendError(c, err)
		return
	}
	if tasks == nil {
		tasks = []sdk.TaskSummary{}
	}

	if h.history != nil {
		if err := h.history.SaveHistory(ctx, projectID, tasks, h.ttl); err != nil {
			logger.L.Warn().Err(err).Str("project_id", projectID).Msg("写入任务历史缓存失败")
		}
	}

	c.JSON(http.StatusOK, dto.HistoryResponse{ProjectID: projectID, Source: "backend", Tasks: tasks})
}

// ListRuns godoc
// @Summary 查询已结束的作业记录
// @Tags Runs
// @Produce json
// @Param project_id query string false "项目 ID"
// @Param kind query string false "作业类型"
// @Param status query string false "状态"
// @Param limit query int false "每页数量" default(50)
// @Param offset query int false "偏移量" default(0)
// @Success 200 {object} dto.RunListResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /runs [get]
func (h *HistoryHandler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "未配置数据库"})
		return
	}

	var req dto.RunListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	filter := repository.ListJobRunsFilter{
		ProjectID: req.ProjectID,
		Kind:      req.Kind,
		Status:    req.Status,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}.Normalize()

	ctx := c.Request.Context()
	items, err := h.runs.ListRuns(ctx, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	total, err := h.runs.CountRuns(ctx, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []repository.JobRun{}
	}

	c.JSON(http.StatusOK, dto.RunListResponse{Items: items, Total: total})
}
