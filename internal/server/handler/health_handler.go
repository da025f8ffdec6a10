package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/prompt-eval-hub/internal/healthcheck"
)

// ViewLister *session.Registry 实现了它
type ViewLister interface {
	List() []string
}

// HealthHandler 健康检查 Handler
type HealthHandler struct {
	checker *healthcheck.HealthChecker
	views   ViewLister
}

// NewHealthHandler checker 为 nil 时两个探针都只返回 ok
func NewHealthHandler(checker *healthcheck.HealthChecker, views ViewLister) *HealthHandler {
	return &HealthHandler{checker: checker, views: views}
}

// Liveness godoc
// @Summary Liveness 检查
// @Description 进程存活即返回 ok，附带当前打开的项目视图数
// @Tags Health
// @Produce json
// @Success 200 {object} healthcheck.CheckResult
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	if h.checker == nil {
		c.String(http.StatusOK, "ok")
		return
	}
	result := h.checker.LivenessCheck()
	if h.views != nil {
		result.Checks["views"] = strconv.Itoa(len(h.views.List()))
	}
	c.JSON(http.StatusOK, result)
}

// Readiness godoc
// @Summary Readiness 检查
// @Description 并发检查 PostgreSQL、Redis、评测后端，任一失败返回 503
// @Tags Health
// @Produce json
// @Success 200 {object} healthcheck.CheckResult
// @Failure 503 {object} healthcheck.CheckResult
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.checker == nil {
		c.String(http.StatusOK, "ok")
		return
	}
	result := h.checker.ReadinessCheck(c.Request.Context())
	status := http.StatusOK
	if result.Status == "error" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
