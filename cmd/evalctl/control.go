package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// handleFromArgs 批量验证的 id 是 task_id，其余类型是 project_id
func handleFromArgs(kindArg, id string) (model.JobHandle, error) {
	kind, err := model.ParseJobKind(kindArg)
	if err != nil {
		return model.JobHandle{}, err
	}
	if kind == model.JobKindBatchTask {
		return model.NewJobHandle(kind, "", id), nil
	}
	return model.NewJobHandle(kind, id, ""), nil
}

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <kind> <id>",
		Short: "跟踪已有作业（batch 给 task_id，optimize / auto-iterate 给 project_id）",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := handleFromArgs(args[0], args[1])
			if err != nil {
				return err
			}
			return c.followCmd(cmd, c.newAPI(c), h)
		},
	}
}

func newControlCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "control <task_id> <pause|resume|stop>",
		Short:     "暂停 / 恢复 / 停止批量验证",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(sdk.TaskActionPause), string(sdk.TaskActionResume), string(sdk.TaskActionStop)},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := sdk.TaskAction(args[1])
			if !action.Valid() {
				return fmt.Errorf("action 必须是 pause、resume 或 stop: %s", args[1])
			}
			if err := c.newAPI(c).ControlTask(cmd.Context(), args[0], action); err != nil {
				return err
			}
			cmd.Printf("已发送 %s task_id=%s\n", action, args[0])
			return nil
		},
	}
}

func newStopCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <kind> <id>",
		Short: "停止后端作业",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := handleFromArgs(args[0], args[1])
			if err != nil {
				return err
			}
			if err := stopBackend(cmd.Context(), c.newAPI(c), h); err != nil {
				return err
			}
			cmd.Printf("已停止 %s %s\n", h.Kind, h.JobID)
			return nil
		},
	}
}
