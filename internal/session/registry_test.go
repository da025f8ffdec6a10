package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
)

func TestRegistry_ViewIsShared(t *testing.T) {
	r := NewRegistry(newJobFetcher(), nil, testOptions())
	defer r.Close()

	a := r.View("p1")
	b := r.View("p1")
	assert.Same(t, a, b)

	_, ok := r.Get("p2")
	assert.False(t, ok)

	r.View("p2")
	assert.Equal(t, []string{"p1", "p2"}, r.List())
}

func TestRegistry_DropClosesView(t *testing.T) {
	f := newJobFetcher()
	r := NewRegistry(f, nil, testOptions())
	defer r.Close()

	v := r.View("p1")
	require.NoError(t, v.Watch(batch("t1")))
	assert.Eventually(t, func() bool { return f.count("t1") >= 1 }, time.Second, 5*time.Millisecond)

	assert.True(t, r.Drop("p1"))
	assert.False(t, r.Drop("p1"))
	assert.ErrorIs(t, v.Watch(batch("t2")), ErrViewClosed)
	assert.Empty(t, r.List())

	// 重新打开得到新的视图
	assert.NotSame(t, v, r.View("p1"))
}

func TestRegistry_EvictIdle(t *testing.T) {
	f := newJobFetcher()
	f.set("t2", model.JobStatusCompleted)
	r := NewRegistry(f, nil, testOptions())
	defer r.Close()

	running := r.View("p1")
	require.NoError(t, running.Watch(batch("t1")))

	done := r.View("p2")
	require.NoError(t, done.Watch(model.JobHandle{JobID: "t2", Kind: model.JobKindBatchTask, ProjectID: "p2"}))
	assert.Eventually(t, func() bool {
		s, ok := done.Snapshot(model.JobKindBatchTask)
		return ok && s.Settled && !s.Active
	}, time.Second, 5*time.Millisecond)

	r.View("p3")

	// 刚更新过的视图在 ttl 内保留
	assert.Empty(t, r.EvictIdle(time.Hour))

	assert.Equal(t, []string{"p2", "p3"}, r.EvictIdle(0))
	assert.Equal(t, []string{"p1"}, r.List())
	assert.ErrorIs(t, done.Watch(batch("t3")), ErrViewClosed)

	// 仍在轮询的视图不受影响
	n := f.count("t1")
	assert.Eventually(t, func() bool { return f.count("t1") > n }, time.Second, 5*time.Millisecond)
}

func TestRegistry_EvictIdleAfterStop(t *testing.T) {
	r := NewRegistry(newJobFetcher(), nil, testOptions())
	defer r.Close()

	v := r.View("p1")
	require.NoError(t, v.Watch(batch("t1")))
	assert.Empty(t, r.EvictIdle(0))

	require.True(t, v.StopKind(model.JobKindBatchTask))
	assert.Equal(t, []string{"p1"}, r.EvictIdle(0))
	assert.NotSame(t, v, r.View("p1"))
}

func TestRegistry_RunEvictor(t *testing.T) {
	r := NewRegistry(newJobFetcher(), nil, testOptions())
	defer r.Close()

	require.NoError(t, r.RunEvictor(context.Background(), time.Millisecond, 0))

	r.View("p1")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.RunEvictor(ctx, 5*time.Millisecond, time.Nanosecond) }()

	assert.Eventually(t, func() bool { return len(r.List()) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
