package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/azhengyongqin/prompt-eval-hub/internal/healthcheck"
	"github.com/azhengyongqin/prompt-eval-hub/internal/middleware"
	"github.com/azhengyongqin/prompt-eval-hub/internal/repository"
	"github.com/azhengyongqin/prompt-eval-hub/internal/server/handler"
	"github.com/azhengyongqin/prompt-eval-hub/internal/session"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

type Deps struct {
	// API 评测后端客户端
	API sdk.API

	// Registry 按项目管理的轮询视图
	Registry *session.Registry

	// 可选：Redis 镜像快照与任务历史缓存
	Snapshots  handler.SnapshotStore
	History    handler.HistoryStore
	HistoryTTL time.Duration

	// 可选：作业记录（Postgres）
	Runs repository.JobRunRepository

	// 可选：settled 队列统计
	Inspector    handler.QueueInspector
	SettledQueue string

	// HealthChecker 健康检查器
	HealthChecker *healthcheck.HealthChecker

	// 每个客户端 IP 的限流，0 表示不限流
	RateLimit float64
	RateBurst int
}

// NewRouter 提供 Gin HTTP API
// @title Prompt-Eval-Hub API
// @version 1.0.0
// @description 评测作业状态跟踪服务 API
// @BasePath /api/v1
// @schemes http https
func NewRouter(deps Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	// 全局中间件
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.PayloadSizeLimit(middleware.MaxPayloadSize))
	r.Use(middleware.CORSMiddleware())

	// 创建各个 handler 实例
	healthHandler := handler.NewHealthHandler(deps.HealthChecker, deps.Registry)
	watchHandler := handler.NewWatchHandler(deps.API, deps.Registry, deps.Snapshots)
	controlHandler := handler.NewControlHandler(deps.API, deps.Registry, deps.Snapshots)
	historyHandler := handler.NewHistoryHandler(deps.API, deps.History, deps.Runs, deps.HistoryTTL)
	queueHandler := handler.NewQueueHandler(deps.Inspector, deps.SettledQueue)

	// 健康检查路由
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Prometheus metrics 端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(deps.RateLimit, deps.RateBurst))
	{
		project := api.Group("/projects/:project_id", middleware.ValidateProjectIDParam())

		// 启动并跟踪
		project.POST("/tasks/start", watchHandler.StartTask)
		project.POST("/optimize", watchHandler.StartOptimize)
		project.POST("/auto-iterate", watchHandler.StartAutoIterate)

		// 视图
		project.POST("/watch", watchHandler.Watch)
		project.GET("/watch", watchHandler.ListSlots)
		project.DELETE("/watch", watchHandler.CloseView)
		project.GET("/watch/:kind", middleware.ValidateKindParam(), watchHandler.GetSlot)
		project.DELETE("/watch/:kind", middleware.ValidateKindParam(), watchHandler.StopSlot)
		project.POST("/watch/batch/more", watchHandler.LoadMore)

		// 控制与透传
		project.POST("/optimize/stop", controlHandler.StopOptimize)
		project.POST("/auto-iterate/stop", controlHandler.StopAutoIterate)
		project.GET("", controlHandler.GetProject)
		project.GET("/history", historyHandler.GetHistory)

		api.POST("/tasks/:task_id/:action", middleware.ValidateTaskIDParam(), middleware.ValidateActionParam(), controlHandler.ControlTask)

		api.GET("/runs", historyHandler.ListRuns)
		api.GET("/queues/settled", queueHandler.GetSettledQueueStats)
	}

	return r
}
