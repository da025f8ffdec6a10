package asynqx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	seen  map[string]bool
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	var id, queue string
	for _, o := range opts {
		switch o.Type() {
		case asynq.TaskIDOpt:
			id = o.Value().(string)
		case asynq.QueueOpt:
			queue = o.Value().(string)
		}
	}
	if f.seen[id] {
		return nil, asynq.ErrTaskIDConflict
	}
	f.seen[id] = true
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: id, Queue: queue}, nil
}

func settledSnapshot() (model.JobHandle, model.JobSnapshot) {
	h := model.JobHandle{JobID: "t1", Kind: model.JobKindBatchTask, ProjectID: "p1"}
	snap := model.JobSnapshot{
		Status:    model.JobStatusCompleted,
		Progress:  model.Progress{CurrentIndex: 120, TotalCount: 120},
		Errors:    []model.RowError{{Index: 3}, {Index: 9}},
		FetchedAt: time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
	}
	return h, snap
}

func TestDispatcher_Settled(t *testing.T) {
	f := &fakeEnqueuer{}
	d := NewDispatcher(f, "")
	assert.Equal(t, "settled", d.Queue())

	h, snap := settledSnapshot()
	d.Settled(h, snap)

	require.Len(t, f.tasks, 1)
	assert.Equal(t, TypeHistoryRefresh, f.tasks[0].Type())

	p, err := ParseHistoryRefreshPayload(f.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ProjectID)
	assert.Equal(t, "completed", p.Status)
	assert.Equal(t, 2, p.ErrorCount)
	assert.Equal(t, snap.FetchedAt, p.SettledAt)
}

func TestDispatcher_DuplicateIsIgnored(t *testing.T) {
	f := &fakeEnqueuer{}
	d := NewDispatcher(f, "settled")
	h, snap := settledSnapshot()

	p := NewHistoryRefreshPayload(h, snap)
	require.NoError(t, d.Dispatch(context.Background(), p))
	require.NoError(t, d.Dispatch(context.Background(), p))
	assert.Len(t, f.tasks, 1)
}

func TestDispatcher_EnqueueError(t *testing.T) {
	f := &fakeEnqueuer{err: errors.New("redis: connection refused")}
	d := NewDispatcher(f, "settled")
	h, snap := settledSnapshot()

	err := d.Dispatch(context.Background(), NewHistoryRefreshPayload(h, snap))
	assert.ErrorContains(t, err, "connection refused")

	// Settled 吞掉错误，不能 panic
	assert.NotPanics(t, func() { d.Settled(h, snap) })
}

func TestNewHistoryRefreshPayload_ProjectFallback(t *testing.T) {
	h := model.JobHandle{JobID: "p9", Kind: model.JobKindOptimization}
	p := NewHistoryRefreshPayload(h, model.JobSnapshot{Status: model.JobStatusFailed, Message: "boom"})

	assert.Equal(t, "p9", p.ProjectID)
	assert.Equal(t, "boom", p.Message)
	assert.False(t, p.SettledAt.IsZero())
	assert.Equal(t, "history:refresh:optimize:"+RunID(h, p.SettledAt), p.DedupID())
}

func TestRunID(t *testing.T) {
	at := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	batch := model.NewJobHandle(model.JobKindBatchTask, "p1", "t1")
	assert.Equal(t, "t1", RunID(batch, at))
	assert.Equal(t, "t1", RunID(batch, at.Add(time.Hour)))

	opt := model.NewJobHandle(model.JobKindOptimization, "p1", "")
	assert.NotEqual(t, RunID(opt, at), RunID(opt, at.Add(time.Minute)))
	assert.Contains(t, RunID(opt, at), "p1@")
}

func TestDispatcher_RepeatedProjectRunsAreEnqueued(t *testing.T) {
	f := &fakeEnqueuer{}
	d := NewDispatcher(f, "settled")
	at := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	for _, kind := range []model.JobKind{model.JobKindOptimization, model.JobKindAutoIterate} {
		h := model.NewJobHandle(kind, "p1", "")
		d.Settled(h, model.JobSnapshot{Status: model.JobStatusCompleted, FetchedAt: at})
		d.Settled(h, model.JobSnapshot{Status: model.JobStatusStopped, FetchedAt: at.Add(time.Minute)})
	}
	require.Len(t, f.tasks, 4)

	first, err := ParseHistoryRefreshPayload(f.tasks[0])
	require.NoError(t, err)
	second, err := ParseHistoryRefreshPayload(f.tasks[1])
	require.NoError(t, err)
	assert.Equal(t, first.JobID, second.JobID)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.NotEqual(t, first.DedupID(), second.DedupID())
}

func TestHistoryRefreshPayload_DedupWithoutRunID(t *testing.T) {
	p := HistoryRefreshPayload{Kind: "batch", JobID: "t1"}
	assert.Equal(t, "history:refresh:batch:t1", p.DedupID())
}

func TestParseHistoryRefreshPayload_Invalid(t *testing.T) {
	_, err := ParseHistoryRefreshPayload(asynq.NewTask(TypeHistoryRefresh, []byte("{")))
	assert.Error(t, err)

	_, err = ParseHistoryRefreshPayload(asynq.NewTask(TypeHistoryRefresh, []byte(`{"job_id":"t1"}`)))
	assert.Error(t, err)
}

func TestEnqueueOptions(t *testing.T) {
	opts := EnqueueOptions(EnqueueParams{
		Queue:          "settled",
		TaskID:         "x",
		MaxRetry:       3,
		TimeoutSeconds: 10,
		Retention:      time.Minute,
	})
	types := make([]asynq.OptionType, 0, len(opts))
	for _, o := range opts {
		types = append(types, o.Type())
	}
	assert.ElementsMatch(t, []asynq.OptionType{
		asynq.QueueOpt, asynq.TaskIDOpt, asynq.MaxRetryOpt, asynq.TimeoutOpt, asynq.RetentionOpt,
	}, types)

	assert.Empty(t, EnqueueOptions(EnqueueParams{}))
}

func TestRedisURI(t *testing.T) {
	assert.Equal(t, "redis://localhost:6379/0", RedisURI("localhost:6379", "", 0))
	assert.Equal(t, "redis://:secret@redis:6379/2", RedisURI("redis:6379", "secret", 2))
	assert.Equal(t, "rediss://h:1/3", RedisURI("rediss://h:1/3", "ignored", 0))

	opt, err := NewRedisConnOpt(RedisURI("localhost:6379", "", 4))
	require.NoError(t, err)
	rc, ok := opt.(asynq.RedisClientOpt)
	require.True(t, ok)
	assert.Equal(t, 4, rc.DB)
}
