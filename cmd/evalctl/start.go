package main

import (
	"github.com/spf13/cobra"

	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

func newBatchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "批量验证",
	}

	var (
		req    sdk.StartTaskRequest
		detach bool
	)
	start := &cobra.Command{
		Use:   "start",
		Short: "启动批量验证并跟踪进度",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.newAPI(c)
			resp, err := api.StartTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			cmd.Printf("已启动批量验证 task_id=%s\n", resp.TaskID)
			if detach {
				return nil
			}
			return c.followCmd(cmd, api, model.NewJobHandle(model.JobKindBatchTask, req.ProjectID, resp.TaskID))
		},
	}
	f := start.Flags()
	f.StringVarP(&req.ProjectID, "project", "p", "", "项目 ID")
	f.StringVar(&req.FileID, "file", "", "数据文件 ID")
	f.StringVar(&req.QueryCol, "query-col", "", "问题列")
	f.StringVar(&req.TargetCol, "target-col", "", "标准答案列")
	f.StringVar(&req.Prompt, "prompt", "", "提示词")
	f.StringVar(&req.APIKey, "api-key", "", "模型 API Key")
	f.StringVar(&req.ModelName, "model", "", "模型名称")
	f.StringVar(&req.APIURL, "api-url", "", "模型 API 地址")
	f.IntVar(&req.Concurrency, "concurrency", 0, "并发数")
	f.StringVar(&req.ExtractField, "extract-field", "", "从模型输出中抽取的字段")
	f.BoolVarP(&detach, "detach", "d", false, "只启动，不跟踪")

	cmd.AddCommand(start)
	return cmd
}

func newOptimizeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "提示词优化",
	}

	var (
		req    sdk.StartOptimizeRequest
		detach bool
	)
	start := &cobra.Command{
		Use:   "start",
		Short: "基于一次批量验证的错误启动提示词优化",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.newAPI(c)
			if _, err := api.StartOptimize(cmd.Context(), req); err != nil {
				return err
			}
			cmd.Printf("已启动提示词优化 project_id=%s\n", req.ProjectID)
			if detach {
				return nil
			}
			return c.followCmd(cmd, api, model.NewJobHandle(model.JobKindOptimization, req.ProjectID, ""))
		},
	}
	f := start.Flags()
	f.StringVarP(&req.ProjectID, "project", "p", "", "项目 ID")
	f.StringVar(&req.TaskID, "task", "", "作为优化依据的批量验证任务 ID")
	f.StringVar(&req.Strategy, "strategy", "", "优化策略")
	f.BoolVarP(&detach, "detach", "d", false, "只启动，不跟踪")

	cmd.AddCommand(start)
	return cmd
}

func newAutoIterateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto-iterate",
		Short: "自动迭代",
	}

	var (
		req    sdk.StartAutoIterateRequest
		detach bool
	)
	start := &cobra.Command{
		Use:   "start",
		Short: "启动自动迭代（验证、优化循环直到达到目标准确率）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.newAPI(c)
			if _, err := api.StartAutoIterate(cmd.Context(), req); err != nil {
				return err
			}
			cmd.Printf("已启动自动迭代 project_id=%s\n", req.ProjectID)
			if detach {
				return nil
			}
			return c.followCmd(cmd, api, model.NewJobHandle(model.JobKindAutoIterate, req.ProjectID, ""))
		},
	}
	f := start.Flags()
	f.StringVarP(&req.ProjectID, "project", "p", "", "项目 ID")
	f.StringVar(&req.FileID, "file", "", "数据文件 ID")
	f.StringVar(&req.QueryCol, "query-col", "", "问题列")
	f.StringVar(&req.TargetCol, "target-col", "", "标准答案列")
	f.StringVar(&req.Prompt, "prompt", "", "初始提示词")
	f.IntVar(&req.MaxRounds, "max-rounds", 5, "最大轮数")
	f.Float64Var(&req.TargetAccuracy, "target-accuracy", 95, "目标准确率（百分比）")
	f.StringVar(&req.Strategy, "strategy", "", "优化策略")
	f.BoolVarP(&detach, "detach", "d", false, "只启动，不跟踪")

	cmd.AddCommand(start)
	return cmd
}
