package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/middleware"
	"github.com/azhengyongqin/prompt-eval-hub/internal/server/dto"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// ControlHandler 作业控制与项目透传 API Handler。
// 控制操作只转发一次，不做自动重试；状态变化由轮询器观察到。
type ControlHandler struct {
	api       sdk.API
	registry  ViewRegistry
	snapshots SnapshotStore
}

// NewControlHandler 创建 ControlHandler
func NewControlHandler(api sdk.API, registry ViewRegistry, snapshots SnapshotStore) *ControlHandler {
	return &ControlHandler{api: api, registry: registry, snapshots: snapshots}
}

// ControlTask godoc
// @Summary 暂停 / 恢复 / 停止批量验证
// @Tags Control
// @Produce json
// @Param task_id path string true "任务 ID"
// @Param action path string true "操作" Enums(pause, resume, stop)
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /tasks/{task_id}/{action} [post]
func (h *ControlHandler) ControlTask(c *gin.Context) {
	taskID := c.Param("task_id")
	action := sdk.TaskAction(c.Param("action"))

	if err := h.api.ControlTask(c.Request.Context(), taskID, action); err != nil {
		writeBackendError(c, err)
		return
	}

	log := logger.WithRequestID(middleware.GetRequestID(c))
	log.Info().Str("job_id", taskID).Str("action", string(action)).Msg("已转发任务控制")

	c.JSON(http.StatusOK, dto.SuccessResponse{Status: "ok", Message: "已发送 " + string(action)})
}

// StopOptimize godoc
// @Summary 停止提示词优化
// @Tags Control
// @Produce json
// @Param project_id path string true "项目 ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /projects/{project_id}/optimize/stop [post]
func (h *ControlHandler) StopOptimize(c *gin.Context) {
	if err := h.api.StopOptimize(c.Request.Context(), c.Param("project_id")); err != nil {
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Status: "ok", Message: "已发送 stop"})
}

// StopAutoIterate godoc
// @Summary 停止自动迭代
// @Tags Control
// @Produce json
// @Param project_id path string true "项目 ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /projects/{project_id}/auto-iterate/stop [post]
func (h *ControlHandler) StopAutoIterate(c *gin.Context) {
	if err := h.api.StopAutoIterate(c.Request.Context(), c.Param("project_id")); err != nil {
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Status: "ok", Message: "已发送 stop"})
}

// GetProject godoc
// @Summary 查询项目
// @Description 项目不存在（404）时同时拆除该项目的视图与镜像
// @Tags Projects
// @Produce json
// @Param project_id path string true "项目 ID"
// @Success 200 {object} sdk.Project
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /projects/{project_id} [get]
func (h *ControlHandler) GetProject(c *gin.Context) {
	projectID := c.Param("project_id")

	project, err := h.api.GetProject(c.Request.Context(), projectID)
	if err != nil {
		if sdk.IsNotFound(err) {
			h.dropProject(c, projectID)
		}
		writeBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ControlHandler) dropProject(c *gin.Context, projectID string) {
	dropped := h.registry.Drop(projectID)
	if h.snapshots != nil {
		if err := h.snapshots.DeleteSnapshots(c.Request.Context(), projectID); err != nil {
			logger.L.Warn().Err(err).Str("project_id", projectID).Msg("删除镜像快照失败")
		}
	}
	logger.L.Info().Str("project_id", projectID).Bool("dropped", dropped).Msg("项目已删除，拆除视图")
}
