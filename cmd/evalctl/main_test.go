package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/azhengyongqin/prompt-eval-hub/internal/mocks"
	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

func newTestCLI(t *testing.T) (*cli, *mocks.MockAPI, *bytes.Buffer) {
	t.Helper()
	api := mocks.NewMockAPI(gomock.NewController(t))
	out := &bytes.Buffer{}
	c := &cli{
		out:    out,
		newAPI: func(*cli) sdk.API { return api },
	}
	return c, api, out
}

func execute(c *cli, args ...string) error {
	root := newRootCmd(c)
	root.SetArgs(append(args, "--env-file=", "--interval=5ms"))
	root.SetErr(c.out)
	return root.ExecuteContext(context.Background())
}

func TestWatchBatchUntilCompleted(t *testing.T) {
	c, api, out := newTestCLI(t)

	api.EXPECT().GetTask(gomock.Any(), "t1", 1, gomock.Any()).
		Return(&sdk.TaskStatus{ID: "t1", Status: "running", CurrentIndex: 1, TotalCount: 2}, nil).Times(1)
	api.EXPECT().GetTask(gomock.Any(), "t1", 1, gomock.Any()).
		Return(&sdk.TaskStatus{
			ID: "t1", Status: "completed", CurrentIndex: 2, TotalCount: 2,
			Results: []sdk.TaskResult{{Index: 0, IsCorrect: true}, {Index: 1, IsCorrect: false}},
		}, nil).AnyTimes()

	require.NoError(t, execute(c, "watch", "batch", "t1"))
	assert.Contains(t, out.String(), "[batch t1] running 1/2")
	assert.Contains(t, out.String(), "[batch t1] completed 2/2 错误 1")
}

func TestWatchFailedJobReturnsError(t *testing.T) {
	c, api, _ := newTestCLI(t)
	api.EXPECT().GetAutoIterateStatus(gomock.Any(), "p1").
		Return(&sdk.AutoIterateStatus{Status: "failed", Message: "模型调用失败"}, nil).AnyTimes()

	err := execute(c, "watch", "auto-iterate", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "模型调用失败")
}

func TestWatchIdleReturns(t *testing.T) {
	c, api, out := newTestCLI(t)
	api.EXPECT().GetOptimizeStatus(gomock.Any(), "p1").
		Return(&sdk.OptimizeStatus{Status: "idle"}, nil).AnyTimes()

	done := make(chan error, 1)
	go func() { done <- execute(c, "watch", "optimize", "p1") }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch 在 idle 后没有返回")
	}
	assert.Contains(t, out.String(), "[optimize p1] idle")
	assert.Contains(t, out.String(), "没有进行中的作业")
}

func TestWatchUnknownKind(t *testing.T) {
	c, _, _ := newTestCLI(t)
	assert.Error(t, execute(c, "watch", "sideways", "p1"))
}

func TestStartOptimizePrintsBestPrompt(t *testing.T) {
	c, api, out := newTestCLI(t)
	api.EXPECT().StartOptimize(gomock.Any(), sdk.StartOptimizeRequest{ProjectID: "p1", TaskID: "t1"}).
		Return(&sdk.ActionResponse{}, nil)
	api.EXPECT().GetOptimizeStatus(gomock.Any(), "p1").
		Return(&sdk.OptimizeStatus{Status: "completed", NewPrompt: "更好的提示词"}, nil).AnyTimes()

	require.NoError(t, execute(c, "optimize", "start", "-p", "p1", "--task", "t1"))
	assert.Contains(t, out.String(), "已启动提示词优化 project_id=p1")
	assert.Contains(t, out.String(), "最佳提示词:\n更好的提示词")
}

func TestStartBatchDetached(t *testing.T) {
	c, api, out := newTestCLI(t)
	api.EXPECT().StartTask(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req sdk.StartTaskRequest) (*sdk.StartTaskResponse, error) {
			assert.Equal(t, "p1", req.ProjectID)
			assert.Equal(t, "f1", req.FileID)
			assert.Equal(t, 4, req.Concurrency)
			return &sdk.StartTaskResponse{TaskID: "t9"}, nil
		})

	require.NoError(t, execute(c, "batch", "start", "-p", "p1", "--file", "f1", "--concurrency", "4", "-d"))
	assert.Contains(t, out.String(), "task_id=t9")
}

func TestFollowCancelKeepsBackendRunning(t *testing.T) {
	c, api, out := newTestCLI(t)
	c.interval = 5 * time.Millisecond
	c.timeout = time.Second
	api.EXPECT().GetOptimizeStatus(gomock.Any(), "p1").
		Return(&sdk.OptimizeStatus{Status: "running"}, nil).AnyTimes()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, settled, err := c.follow(ctx, api, model.NewJobHandle(model.JobKindOptimization, "p1", ""), out)
	require.NoError(t, err)
	assert.False(t, settled)
	assert.Contains(t, out.String(), "后端作业仍在运行")
}

func TestFollowCancelStopOnExit(t *testing.T) {
	c, api, out := newTestCLI(t)
	c.interval = 5 * time.Millisecond
	c.timeout = time.Second
	c.stopOnExit = true
	api.EXPECT().GetOptimizeStatus(gomock.Any(), "p1").
		Return(&sdk.OptimizeStatus{Status: "running"}, nil).AnyTimes()
	api.EXPECT().StopOptimize(gomock.Any(), "p1").Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, settled, err := c.follow(ctx, api, model.NewJobHandle(model.JobKindOptimization, "p1", ""), out)
	require.NoError(t, err)
	assert.False(t, settled)
	assert.Contains(t, out.String(), "已停止后端作业")
}

func TestControlCommand(t *testing.T) {
	c, api, out := newTestCLI(t)
	assert.Error(t, execute(c, "control", "t1", "explode"))

	api.EXPECT().ControlTask(gomock.Any(), "t1", sdk.TaskActionPause).Return(nil)
	require.NoError(t, execute(c, "control", "t1", "pause"))
	assert.Contains(t, out.String(), "已发送 pause task_id=t1")
}

func TestStopCommand(t *testing.T) {
	c, api, _ := newTestCLI(t)
	api.EXPECT().StopAutoIterate(gomock.Any(), "p1").Return(nil)
	api.EXPECT().ControlTask(gomock.Any(), "t1", sdk.TaskActionStop).Return(nil)

	require.NoError(t, execute(c, "stop", "auto-iterate", "p1"))
	require.NoError(t, execute(c, "stop", "batch", "t1"))
}

func TestHandleFromArgs(t *testing.T) {
	h, err := handleFromArgs("batch", "t1")
	require.NoError(t, err)
	assert.Equal(t, model.JobHandle{JobID: "t1", Kind: model.JobKindBatchTask}, h)

	h, err = handleFromArgs("optimization", "p1")
	require.NoError(t, err)
	assert.Equal(t, model.JobHandle{JobID: "p1", Kind: model.JobKindOptimization, ProjectID: "p1"}, h)
}

func TestFormatSnapshot(t *testing.T) {
	got := formatSnapshot(model.NewJobHandle(model.JobKindAutoIterate, "p1", ""), model.JobSnapshot{
		Status: model.JobStatusRunning,
		Rounds: &model.Rounds{Current: 2, Max: 5, Accuracy: 80, TargetAccuracy: 95},
	})
	assert.Equal(t, "[auto-iterate p1] running 第 2/5 轮 准确率 80.0% / 95.0%", got)

	got = formatSnapshot(model.NewJobHandle(model.JobKindOptimization, "p1", ""), model.JobSnapshot{
		Status:  model.JobStatusError,
		Message: "连接中断",
	})
	assert.Equal(t, "[optimize p1] error 连接中断", got)
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, loadEnvFile(""))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("EVALCTL_TEST_VALUE=hello\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("EVALCTL_TEST_VALUE") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("EVALCTL_TEST_VALUE"))
}
