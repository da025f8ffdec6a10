package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/prompt-eval-hub/internal/cache"
	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/middleware"
	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/internal/server/dto"
	"github.com/azhengyongqin/prompt-eval-hub/internal/session"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// SnapshotStore 镜像快照读取，*cache.RedisCache 实现了它
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, projectID string, kind model.JobKind) (*cache.MirroredSlot, error)
	DeleteSnapshots(ctx context.Context, projectID string) error
}

// ViewRegistry 项目视图表，*session.Registry 实现了它
type ViewRegistry interface {
	View(projectID string) *session.View
	Get(projectID string) (*session.View, bool)
	Drop(projectID string) bool
}

// WatchHandler 启动 / 跟踪作业相关 API Handler
type WatchHandler struct {
	api       sdk.API
	registry  ViewRegistry
	snapshots SnapshotStore
}

// NewWatchHandler 创建 WatchHandler，snapshots 可以为 nil
func NewWatchHandler(api sdk.API, registry ViewRegistry, snapshots SnapshotStore) *WatchHandler {
	return &WatchHandler{
		api:       api,
		registry:  registry,
		snapshots: snapshots,
	}
}

// StartTask godoc
// @Summary 启动批量验证
// @Description 调用后端启动批量验证任务，并开始轮询其状态
// @Tags Jobs
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param project_id path string true "项目 ID"
// @Param request body dto.StartTaskRequest true "启动参数"
// @Success 202 {object} dto.WatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /projects/{project_id}/tasks/start [post]
func (h *WatchHandler) StartTask(c *gin.Context) {
	projectID := c.Param("project_id")

	var req dto.StartTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.api.StartTask(c.Request.Context(), sdk.StartTaskRequest{
		ProjectID:    projectID,
		FileID:       middleware.SanitizeString(req.FileID),
		QueryCol:     req.QueryCol,
		TargetCol:    req.TargetCol,
		Prompt:       req.Prompt,
		APIKey:       req.APIKey,
		ModelName:    req.ModelName,
		APIURL:       req.APIURL,
		Concurrency:  req.Concurrency,
		ExtractField: req.ExtractField,
	})
	if err != nil {
		writeBackendError(c, err)
		return
	}

	h.watch(c, model.NewJobHandle(model.JobKindBatchTask, projectID, resp.TaskID))
}

// StartOptimize godoc
// @Summary 启动提示词优化
// @Tags Jobs
// @Accept json
// @Produce json
// @Param project_id path string true "项目 ID"
// @Param request body dto.StartOptimizeRequest true "启动参数"
// @Success 202 {object} dto.WatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /projects/{project_id}/optimize [post]
func (h *WatchHandler) StartOptimize(c *gin.Context) {
	projectID := c.Param("project_id")

	var req dto.StartOptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if _, err := h.api.StartOptimize(c.Request.Context(), sdk.StartOptimizeRequest{
		ProjectID: projectID,
		TaskID:    req.TaskID,
		Strategy:  req.Strategy,
	}); err != nil {
		writeBackendError(c, err)
		return
	}

	h.watch(c, model.NewJobHandle(model.JobKindOptimization, projectID, ""))
}

// StartAutoIterate godoc
// @Summary 启动自动迭代
// @Tags Jobs
// @Accept json
// @Produce json
// @Param project_id path string true "项目 ID"
// @Param request body dto.StartAutoIterateRequest true "启动参数"
// @Success 202 {object} dto.WatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /projects/{project_id}/auto-iterate [post]
func (h *WatchHandler) StartAutoIterate(c *gin.Context) {
	projectID := c.Param("project_id")

	var req dto.StartAutoIterateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if _, err := h.api.StartAutoIterate(c.Request.Context(), sdk.StartAutoIterateRequest{
		ProjectID:      projectID,
		FileID:         req.FileID,
		QueryCol:       req.QueryCol,
		TargetCol:      req.TargetCol,
		Prompt:         req.Prompt,
		MaxRounds:      req.MaxRounds,
		TargetAccuracy: req.TargetAccuracy,
		Strategy:       req.Strategy,
	}); err != nil {
		writeBackendError(c, err)
		return
	}

	h.watch(c, model.NewJobHandle(model.JobKindAutoIterate, projectID, ""))
}

// Watch godoc
// @Summary 跟踪已有作业
// @Description 例如页面刷新后恢复对正在运行的任务的轮询
// @Tags Watch
// @Accept json
// @Produce json
// @Param project_id path string true "项目 ID"
// @Param request body dto.WatchRequest true "作业"
// @Success 202 {object} dto.WatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /projects/{project_id}/watch [post]
func (h *WatchHandler) Watch(c *gin.Context) {
	var req dto.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	kind, err := model.ParseJobKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	h.watch(c, model.NewJobHandle(kind, c.Param("project_id"), req.JobID))
}

func (h *WatchHandler) watch(c *gin.Context, handle model.JobHandle) {
	err := h.registry.View(handle.ProjectID).Watch(handle)
	if errors.Is(err, session.ErrViewClosed) {
		// 拿到视图后它被并发删除或清理了，表中已经没有它，换新视图重试一次
		err = h.registry.View(handle.ProjectID).Watch(handle)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	log := logger.WithRequestID(middleware.GetRequestID(c))
	log.Info().Str("project_id", handle.ProjectID).Str("kind", string(handle.Kind)).Str("job_id", handle.JobID).Msg("已开始跟踪作业")

	c.JSON(http.StatusAccepted, dto.WatchResponse{Handle: handle})
}

// ListSlots godoc
// @Summary 查询视图中的全部作业
// @Tags Watch
// @Produce json
// @Param project_id path string true "项目 ID"
// @Success 200 {object} dto.SlotListResponse
// @Router /projects/{project_id}/watch [get]
func (h *WatchHandler) ListSlots(c *gin.Context) {
	projectID := c.Param("project_id")
	resp := dto.SlotListResponse{ProjectID: projectID, Slots: []session.Slot{}}
	if view, ok := h.registry.Get(projectID); ok {
		resp.Slots = view.Slots()
	}
	c.JSON(http.StatusOK, resp)
}

// GetSlot godoc
// @Summary 查询单类作业的最新快照
// @Description 内存视图不存在时回退到 Redis 镜像
// @Tags Watch
// @Produce json
// @Param project_id path string true "项目 ID"
// @Param kind path string true "作业类型" Enums(batch, optimize, auto-iterate)
// @Success 200 {object} dto.SlotResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /projects/{project_id}/watch/{kind} [get]
func (h *WatchHandler) GetSlot(c *gin.Context) {
	projectID := c.Param("project_id")
	kind := middleware.GetKind(c)

	if view, ok := h.registry.Get(projectID); ok {
		if slot, ok := view.Snapshot(kind); ok {
			c.JSON(http.StatusOK, dto.SlotResponse{Slot: slot, Source: "memory"})
			return
		}
	}

	if h.snapshots == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "没有正在跟踪的作业"})
		return
	}

	mirrored, err := h.snapshots.LoadSnapshot(c.Request.Context(), projectID, kind)
	if err != nil {
		writeError(c, err)
		return
	}

	snap := mirrored.Snapshot
	c.JSON(http.StatusOK, dto.SlotResponse{
		Slot: session.Slot{
			Handle:    mirrored.Handle,
			Snapshot:  &snap,
			Settled:   snap.Status.IsTerminal(),
			UpdatedAt: mirrored.MirroredAt,
		},
		Source: "mirror",
	})
}

// StopSlot godoc
// @Summary 停止轮询某类作业
// @Description 只停止本地轮询，不会停止后端作业
// @Tags Watch
// @Produce json
// @Param project_id path string true "项目 ID"
// @Param kind path string true "作业类型"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /projects/{project_id}/watch/{kind} [delete]
func (h *WatchHandler) StopSlot(c *gin.Context) {
	view, ok := h.registry.Get(c.Param("project_id"))
	if !ok || !view.StopKind(middleware.GetKind(c)) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "没有正在跟踪的作业"})
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Status: "ok", Message: "已停止轮询"})
}

// CloseView godoc
// @Summary 关闭项目视图
// @Description 停止该项目的全部轮询
// @Tags Watch
// @Produce json
// @Param project_id path string true "项目 ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /projects/{project_id}/watch [delete]
func (h *WatchHandler) CloseView(c *gin.Context) {
	dropped := h.registry.Drop(c.Param("project_id"))
	c.JSON(http.StatusOK, dto.SuccessResponse{Status: "ok", Data: gin.H{"dropped": dropped}})
}

// LoadMore godoc
// @Summary 加载更多批量验证结果
// @Tags Watch
// @Produce json
// @Param project_id path string true "项目 ID"
// @Success 200 {object} dto.SlotResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /projects/{project_id}/watch/batch/more [post]
func (h *WatchHandler) LoadMore(c *gin.Context) {
	view, ok := h.registry.Get(c.Param("project_id"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "没有正在跟踪的作业"})
		return
	}

	slot, err := view.LoadMore(c.Request.Context())
	if err != nil {
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SlotResponse{Slot: slot, Source: "memory"})
}
