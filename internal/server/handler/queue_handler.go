package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/azhengyongqin/prompt-eval-hub/internal/server/dto"
)

// QueueInspector *asynq.Inspector 实现了它
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// QueueHandler Queue 相关 API Handler
type QueueHandler struct {
	inspector QueueInspector
	queue     string
}

// NewQueueHandler 创建 QueueHandler
func NewQueueHandler(inspector QueueInspector, queue string) *QueueHandler {
	return &QueueHandler{inspector: inspector, queue: queue}
}

// GetSettledQueueStats godoc
// @Summary 查询 settled 队列状态
// @Description 作业结束通知（history:refresh）所在队列的统计
// @Tags Queues
// @Produce json
// @Success 200 {object} dto.QueueStatsResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /queues/settled [get]
func (h *QueueHandler) GetSettledQueueStats(c *gin.Context) {
	if h.inspector == nil {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "asynq inspector 未配置"})
		return
	}

	info, err := h.inspector.GetQueueInfo(h.queue)
	if err != nil {
		// 队列还没有任何任务时 asynq 返回 queue not found
		if errors.Is(err, asynq.ErrQueueNotFound) || strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusOK, dto.QueueStatsResponse{Queue: h.queue})
			return
		}
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.QueueStatsResponse{
		Queue:     info.Queue,
		Size:      info.Size,
		Pending:   info.Pending,
		Active:    info.Active,
		Scheduled: info.Scheduled,
		Retry:     info.Retry,
		Archived:  info.Archived,
		Completed: info.Completed,
		Processed: info.Processed,
		Failed:    info.Failed,
		Paused:    info.Paused,
	})
}
