package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/azhengyongqin/prompt-eval-hub/internal/logger"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// cli 命令行的全局参数与依赖
type cli struct {
	baseURL    string
	envFile    string
	interval   time.Duration
	timeout    time.Duration
	pageSize   int
	stopOnExit bool
	verbose    bool

	out    io.Writer
	newAPI func(c *cli) sdk.API
}

func defaultAPI(c *cli) sdk.API {
	return sdk.NewClient(c.baseURL, sdk.WithTimeout(c.timeout))
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "evalctl",
		Short: "启动并跟踪提示词评测作业",
		Long: `evalctl 调用评测后端启动批量验证、提示词优化或自动迭代，
并在终端中持续轮询作业状态，直到作业结束。

Ctrl-C 只会停止本地轮询；加上 --stop-on-exit 时会同时停止后端作业。`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(c.envFile); err != nil {
				return err
			}
			if err := logger.Init(false); err != nil {
				return fmt.Errorf("初始化日志失败: %w", err)
			}
			if c.verbose {
				logger.SetLevel("debug")
			} else {
				logger.SetLevel("warn")
			}
			if !cmd.Flags().Changed("base-url") {
				if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
					c.baseURL = v
				}
			}
			return nil
		},
	}
	root.SetOut(c.out)

	pf := root.PersistentFlags()
	pf.StringVar(&c.baseURL, "base-url", "http://localhost:8000", "评测后端地址（也可用 BACKEND_BASE_URL）")
	pf.StringVar(&c.envFile, "env-file", ".env", "启动前加载的环境变量文件，不存在时忽略")
	pf.DurationVar(&c.interval, "interval", time.Second, "轮询间隔")
	pf.DurationVar(&c.timeout, "timeout", 10*time.Second, "单次请求超时")
	pf.IntVar(&c.pageSize, "page-size", 50, "批量验证结果的分页大小")
	pf.BoolVar(&c.stopOnExit, "stop-on-exit", false, "Ctrl-C 退出时同时停止后端作业")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(
		newBatchCmd(c),
		newOptimizeCmd(c),
		newAutoIterateCmd(c),
		newWatchCmd(c),
		newControlCmd(c),
		newStopCmd(c),
	)
	return root
}

// loadEnvFile 加载 .env；文件不存在不算错误
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("加载 %s 失败: %w", path, err)
	}
	return nil
}

func main() {
	c := &cli{out: os.Stdout, newAPI: defaultAPI}
	if err := newRootCmd(c).Execute(); err != nil {
		os.Exit(1)
	}
}
