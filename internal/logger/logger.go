package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// L 全局 logger，Init 之前为 Nop，库代码和测试可以直接使用
var L = zerolog.Nop()

// 轮询日志和 HTTP 请求日志共用一套字段顺序
var consoleFieldsOrder = []string{
	"request_id",
	"project_id",
	"kind",
	"job_id",
	"status",
	"component",
	"method",
	"path",
	"duration(ms)",
	"client_ip",
	"errors",
}

// Init 初始化全局日志器：生产环境输出 JSON，开发环境输出控制台格式。
// 日志写到 stderr，stdout 留给 evalctl 的进度输出。
func Init(production bool) error {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stderr
	if !production {
		out = zerolog.ConsoleWriter{
			Out:         os.Stderr,
			TimeFormat:  "15:04:05.000",
			FieldsOrder: consoleFieldsOrder,
		}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if production {
		ctx = ctx.Str("service", "prompt-eval-hub").Caller()
	}
	L = ctx.Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return nil
}

// Sync zerolog 无缓冲，保留给 main 里的 defer
func Sync() {}

// SetLevel 设置全局日志级别，无法识别时回落到 info
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func WithRequestID(requestID string) zerolog.Logger {
	return L.With().Str("request_id", requestID).Logger()
}

func WithProjectID(projectID string) zerolog.Logger {
	return L.With().Str("project_id", projectID).Logger()
}

// WithJob 轮询器日志统一带上作业类型和 job_id
func WithJob(kind, jobID string) zerolog.Logger {
	return L.With().Str("kind", kind).Str("job_id", jobID).Logger()
}

// WithComponent 第三方组件（asynq 等）的日志
func WithComponent(name string) zerolog.Logger {
	return L.With().Str("component", name).Logger()
}
