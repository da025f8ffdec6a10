package asynqx

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
)

// NewServer 创建消费 settled 队列的 asynq server
func NewServer(opt asynq.RedisConnOpt, queue string, concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 4
	}
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      zerologAdapter{l: logger.WithComponent("asynq")},
		LogLevel:    asynq.WarnLevel,
	})
}

// NewServeMux 注册全部任务处理器
func NewServeMux(refresher *HistoryRefresher) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeHistoryRefresh, refresher)
	return mux
}

// Serve 启动 server，ctx 取消后优雅关闭
func Serve(ctx context.Context, srv *asynq.Server, mux *asynq.ServeMux) error {
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	<-ctx.Done()
	srv.Shutdown()
	return nil
}

// zerologAdapter 把 asynq 内部日志转到 zerolog
type zerologAdapter struct {
	l zerolog.Logger
}

func (a zerologAdapter) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a zerologAdapter) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
