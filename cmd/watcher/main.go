package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	_ "github.com/azhengyongqin/prompt-eval-hub/docs" // Swagger docs
	"github.com/azhengyongqin/prompt-eval-hub/internal/cache"
	"github.com/azhengyongqin/prompt-eval-hub/internal/config"
	"github.com/azhengyongqin/prompt-eval-hub/internal/healthcheck"
	"github.com/azhengyongqin/prompt-eval-hub/internal/lifecycle"
	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/internal/poller"
	asynqx "github.com/azhengyongqin/prompt-eval-hub/internal/queue"
	"github.com/azhengyongqin/prompt-eval-hub/internal/repository"
	httpserver "github.com/azhengyongqin/prompt-eval-hub/internal/server"
	"github.com/azhengyongqin/prompt-eval-hub/internal/session"
	"github.com/azhengyongqin/prompt-eval-hub/internal/storage/postgres"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// @title Prompt-Eval-Hub API
// @version 1.0.0
// @description 评测作业状态跟踪服务：批量验证 / 提示词优化 / 自动迭代的轮询、镜像与结束通知
// @BasePath /api/v1
// @schemes http https
// @host localhost:28080

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "加载配置失败:", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Production); err != nil {
		fmt.Fprintln(os.Stderr, "初始化日志失败:", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)
	defer logger.Sync()

	// 验证配置
	if err := cfg.Validate(); err != nil {
		logger.L.Fatal().Err(err).Msg("配置验证失败")
	}

	if err := run(cfg); err != nil {
		logger.L.Fatal().Err(err).Msg("服务异常退出")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := lifecycle.NewGracefulShutdownManager(15 * time.Second)

	logger.L.Info().
		Str("http", cfg.HTTP.Addr).
		Str("backend", cfg.Backend.BaseURL).
		Dur("poll_interval", cfg.Poll.Interval).
		Msg("服务启动")

	// 评测后端客户端
	api := sdk.NewClient(cfg.Backend.BaseURL,
		sdk.WithTimeout(cfg.Backend.Timeout),
		sdk.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.RateBurst),
	)

	// Redis：快照镜像与任务历史缓存
	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("连接 Redis 失败: %w", err)
	}
	shutdown.AddHook("redis", func(context.Context) error { return redisCache.Close() })

	// PostgreSQL：GORM 建表，pgx 读写
	db, err := postgres.NewDB(ctx, cfg.Postgres.DSN, postgres.DBConfig{
		MaxOpenConns:    int(cfg.DBPool.MaxConns),
		MaxIdleConns:    int(cfg.DBPool.MinConns),
		ConnMaxLifetime: cfg.DBPool.MaxConnLifetime,
		ConnMaxIdleTime: cfg.DBPool.MaxConnIdleTime,
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	// 建表完成即可释放，之后只用 pgx 连接池
	if err := db.Close(); err != nil {
		logger.L.Warn().Err(err).Msg("关闭 GORM 连接失败")
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, postgres.PoolConfig{
		MaxConns:          cfg.DBPool.MaxConns,
		MinConns:          cfg.DBPool.MinConns,
		MaxConnLifetime:   cfg.DBPool.MaxConnLifetime,
		MaxConnIdleTime:   cfg.DBPool.MaxConnIdleTime,
		HealthCheckPeriod: cfg.DBPool.HealthCheckPeriod,
	})
	if err != nil {
		return fmt.Errorf("创建连接池失败: %w", err)
	}
	shutdown.AddCloser("postgres", pool.Close)
	runs := repository.NewJobRunRepo(pool)

	// Asynq：settled 通知入队与消费
	redisOpt, err := asynqx.NewRedisConnOpt(asynqx.RedisURI(cfg.Asynq.RedisAddr, cfg.Redis.Password, cfg.Redis.DB))
	if err != nil {
		return fmt.Errorf("解析 Redis URI 失败: %w", err)
	}
	asynqClient := asynq.NewClient(redisOpt)
	shutdown.AddHook("asynq-client", func(context.Context) error { return asynqClient.Close() })
	inspector := asynq.NewInspector(redisOpt)
	shutdown.AddHook("asynq-inspector", func(context.Context) error { return inspector.Close() })

	dispatcher := asynqx.NewDispatcher(asynqClient, cfg.Asynq.Queue)
	refresher := asynqx.NewHistoryRefresher(api, redisCache, runs, cfg.Mirror.TTL)
	asynqSrv := asynqx.NewServer(redisOpt, cfg.Asynq.Queue, cfg.Asynq.Concurrency)

	// 轮询视图
	fetcher := poller.NewBackendFetcher(api, cfg.Poll.PageSize)
	mirror := cache.NewMirror(redisCache, cfg.Mirror.TTL, cfg.Mirror.Buffer)
	registry := session.NewRegistry(fetcher, fetcher, session.Options{
		Poller: poller.Options{
			Interval:   cfg.Poll.Interval,
			RetryGrace: cfg.Poll.RetryGrace,
		},
		PageSize: cfg.Poll.PageSize,
		Mirror:   mirror,
		OnSettle: []session.SettledHook{dispatcher.Settled},
	})
	shutdown.AddCloser("registry", registry.Close)

	healthChecker := healthcheck.NewHealthChecker("1.0.0", map[string]healthcheck.Pinger{
		"postgres": pool,
		"redis":    redisCache,
		"backend":  api,
	})

	httpSrv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpserver.NewRouter(httpserver.Deps{
			API:           api,
			Registry:      registry,
			Snapshots:     redisCache,
			History:       redisCache,
			HistoryTTL:    cfg.Mirror.TTL,
			Runs:          runs,
			Inspector:     inspector,
			SettledQueue:  cfg.Asynq.Queue,
			HealthChecker: healthChecker,
			RateLimit:     cfg.Backend.RateLimit,
			RateBurst:     cfg.Backend.RateBurst,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	// 先停止接收请求，再停止轮询器
	shutdown.AddHook("http", httpSrv.Shutdown)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP 服务监听")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务错误: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.L.Info().Str("queue", cfg.Asynq.Queue).Int("concurrency", cfg.Asynq.Concurrency).Msg("settled 队列消费启动")
		return asynqx.Serve(gctx, asynqSrv, asynqx.NewServeMux(refresher))
	})

	g.Go(func() error {
		return mirror.Run(gctx)
	})

	g.Go(func() error {
		return registry.RunEvictor(gctx, time.Minute, cfg.Poll.ViewIdleTTL)
	})

	if cfg.Monitoring.Enabled {
		metricsSrv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Monitoring.Port),
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		shutdown.AddHook("metrics", metricsSrv.Shutdown)
		g.Go(func() error {
			logger.L.Info().Str("addr", metricsSrv.Addr).Msg("metrics 服务监听")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics 服务错误: %w", err)
			}
			return nil
		})
	}

	// 收到信号或任一组件失败后统一关闭
	g.Go(func() error {
		<-gctx.Done()
		logger.L.Info().Msg("收到退出信号，开始关闭")
		return shutdown.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.L.Info().Msg("服务已优雅关闭")
	return nil
}
