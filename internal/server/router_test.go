package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/azhengyongqin/prompt-eval-hub/internal/cache"
	"github.com/azhengyongqin/prompt-eval-hub/internal/healthcheck"
	"github.com/azhengyongqin/prompt-eval-hub/internal/mocks"
	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/internal/poller"
	"github.com/azhengyongqin/prompt-eval-hub/internal/repository"
	"github.com/azhengyongqin/prompt-eval-hub/internal/server/dto"
	"github.com/azhengyongqin/prompt-eval-hub/internal/session"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// statusFetcher 所有作业直接返回同一个状态
type statusFetcher struct {
	status model.JobStatus
}

func (f statusFetcher) Fetch(context.Context, poller.FetchRequest) (model.JobSnapshot, error) {
	return model.JobSnapshot{Status: f.status, Progress: model.Progress{CurrentIndex: 3, TotalCount: 3}}, nil
}

type rowLoader struct{}

func (rowLoader) LoadPage(_ context.Context, _ string, page, pageSize int) ([]model.RowResult, error) {
	rows := make([]model.RowResult, 0, pageSize)
	for i := (page - 1) * pageSize; i < page*pageSize; i++ {
		rows = append(rows, model.RowResult{Index: i, IsCorrect: i%2 == 0})
	}
	return rows, nil
}

type memStore struct {
	mu      sync.Mutex
	slots   map[string]*cache.MirroredSlot
	history map[string][]sdk.TaskSummary
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{slots: map[string]*cache.MirroredSlot{}, history: map[string][]sdk.TaskSummary{}}
}

func (m *memStore) LoadSnapshot(_ context.Context, projectID string, kind model.JobKind) (*cache.MirroredSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[projectID+":"+string(kind)]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return s, nil
}

func (m *memStore) DeleteSnapshots(_ context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, projectID)
	return nil
}

func (m *memStore) LoadHistory(_ context.Context, projectID string) ([]sdk.TaskSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks, ok := m.history[projectID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return tasks, nil
}

func (m *memStore) SaveHistory(_ context.Context, projectID string, tasks []sdk.TaskSummary, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[projectID] = tasks
	return nil
}

type memRuns struct {
	runs []repository.JobRun
}

func (m *memRuns) UpsertRun(_ context.Context, run repository.JobRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memRuns) GetRun(context.Context, string, string) (*repository.JobRun, error) {
	return nil, repository.ErrNotFound
}

func (m *memRuns) ListRuns(_ context.Context, f repository.ListJobRunsFilter) ([]repository.JobRun, error) {
	var out []repository.JobRun
	for _, r := range m.runs {
		if f.Kind == "" || r.Kind == f.Kind {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRuns) CountRuns(ctx context.Context, f repository.ListJobRunsFilter) (int, error) {
	out, _ := m.ListRuns(ctx, f)
	return len(out), nil
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

type env struct {
	api      *mocks.MockAPI
	registry *session.Registry
	store    *memStore
	runs     *memRuns
	router   http.Handler
}

func newEnv(t *testing.T, status model.JobStatus) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	e := &env{
		api:   mocks.NewMockAPI(ctrl),
		store: newMemStore(),
		runs:  &memRuns{},
	}
	e.registry = session.NewRegistry(statusFetcher{status: status}, rowLoader{}, session.Options{
		Poller:   poller.Options{Interval: 10 * time.Millisecond, RetryGrace: 10 * time.Millisecond},
		PageSize: 4,
	})
	t.Cleanup(e.registry.Close)

	e.router = NewRouter(Deps{
		API:           e.api,
		Registry:      e.registry,
		Snapshots:     e.store,
		History:       e.store,
		Runs:          e.runs,
		Inspector:     fakeInspector{info: &asynq.QueueInfo{Queue: "settled", Pending: 2, Processed: 7}},
		SettledQueue:  "settled",
		HealthChecker: healthcheck.NewHealthChecker("test", nil),
	})
	return e
}

func (e *env) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// slotOf 在 Eventually 的条件函数里使用，不能调用 t.FailNow
func slotOf(w *httptest.ResponseRecorder) (dto.SlotResponse, bool) {
	var slot dto.SlotResponse
	if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &slot) != nil {
		return slot, false
	}
	return slot, true
}

func TestStartTaskAndWatch(t *testing.T) {
	e := newEnv(t, model.JobStatusCompleted)
	e.api.EXPECT().StartTask(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req sdk.StartTaskRequest) (*sdk.StartTaskResponse, error) {
			assert.Equal(t, "p1", req.ProjectID)
			assert.Equal(t, "f1", req.FileID)
			return &sdk.StartTaskResponse{TaskID: "t1"}, nil
		})

	w := e.do("POST", "/api/v1/projects/p1/tasks/start",
		`{"file_id":"f1","query_col":"q","target_col":"a","prompt":"p","api_key":"k"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	resp := decode[dto.WatchResponse](t, w)
	assert.Equal(t, model.JobHandle{JobID: "t1", Kind: model.JobKindBatchTask, ProjectID: "p1"}, resp.Handle)

	assert.Eventually(t, func() bool {
		slot, ok := slotOf(e.do("GET", "/api/v1/projects/p1/watch/batch", ""))
		return ok && slot.Settled && slot.Snapshot != nil && slot.Snapshot.Status == model.JobStatusCompleted
	}, time.Second, 10*time.Millisecond)

	list := decode[dto.SlotListResponse](t, e.do("GET", "/api/v1/projects/p1/watch", ""))
	assert.Len(t, list.Slots, 1)
}

func TestStartTaskValidationError(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)
	e.api.EXPECT().StartTask(gomock.Any(), gomock.Any()).Return(nil, &sdk.ValidationError{Fields: []string{"FileID"}})

	w := e.do("POST", "/api/v1/projects/p1/tasks/start", `{"prompt":"p"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[dto.ErrorResponse](t, w)
	assert.Contains(t, resp.Details, "FileID")
	_, ok := e.registry.Get("p1")
	assert.False(t, ok, "校验失败时不应创建视图")
}

func TestStartOptimizeBackendDetail(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)
	e.api.EXPECT().StartOptimize(gomock.Any(), gomock.Any()).
		Return(nil, &sdk.APIError{StatusCode: http.StatusConflict, Detail: "已有优化任务在运行"})

	w := e.do("POST", "/api/v1/projects/p1/optimize", `{"task_id":"t1","strategy":"multi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "已有优化任务在运行", decode[dto.ErrorResponse](t, w).Error)
}

func TestStartAutoIterate(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)
	e.api.EXPECT().StartAutoIterate(gomock.Any(), gomock.Any()).Return(&sdk.ActionResponse{}, nil)

	w := e.do("POST", "/api/v1/projects/p1/auto-iterate",
		`{"file_id":"f","query_col":"q","target_col":"a","prompt":"p","max_rounds":3,"target_accuracy":90}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "p1", decode[dto.WatchResponse](t, w).Handle.JobID)

	w = e.do("DELETE", "/api/v1/projects/p1/watch/auto-iterate", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do("DELETE", "/api/v1/projects/p1/watch/optimize", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWatchExistingJob(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)

	w := e.do("POST", "/api/v1/projects/p1/watch", `{"kind":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do("POST", "/api/v1/projects/p1/watch", `{"kind":"batch"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "批量验证必须给 job_id")

	w = e.do("POST", "/api/v1/projects/p1/watch", `{"kind":"optimization"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, model.JobKindOptimization, decode[dto.WatchResponse](t, w).Handle.Kind)

	w = e.do("DELETE", "/api/v1/projects/p1/watch", "")
	assert.Equal(t, http.StatusOK, w.Code)
	_, ok := e.registry.Get("p1")
	assert.False(t, ok)
}

func TestGetSlotFallsBackToMirror(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)
	e.store.slots["p2:batch"] = &cache.MirroredSlot{
		Handle:     model.JobHandle{JobID: "t9", Kind: model.JobKindBatchTask, ProjectID: "p2"},
		Snapshot:   model.JobSnapshot{Status: model.JobStatusStopped},
		MirroredAt: time.Now(),
	}

	w := e.do("GET", "/api/v1/projects/p2/watch/batch", "")
	require.Equal(t, http.StatusOK, w.Code)
	slot := decode[dto.SlotResponse](t, w)
	assert.Equal(t, "mirror", slot.Source)
	assert.True(t, slot.Settled)
	assert.Equal(t, "t9", slot.Handle.JobID)

	w = e.do("GET", "/api/v1/projects/p2/watch/optimize", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do("GET", "/api/v1/projects/p2/watch/nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoadMore(t *testing.T) {
	e := newEnv(t, model.JobStatusCompleted)

	w := e.do("POST", "/api/v1/projects/p1/watch/batch/more", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do("POST", "/api/v1/projects/p1/watch", `{"kind":"batch","job_id":"t1"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	assert.Eventually(t, func() bool {
		slot, ok := slotOf(e.do("GET", "/api/v1/projects/p1/watch/batch", ""))
		return ok && slot.Settled
	}, time.Second, 10*time.Millisecond)

	w = e.do("POST", "/api/v1/projects/p1/watch/batch/more", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	slot := decode[dto.SlotResponse](t, w)
	require.NotNil(t, slot.Snapshot)
	assert.Len(t, slot.Snapshot.Results, 4)
	assert.Len(t, slot.Snapshot.Errors, 2)
}

func TestControlTask(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)

	w := e.do("POST", "/api/v1/tasks/t1/explode", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.api.EXPECT().ControlTask(gomock.Any(), "t1", sdk.TaskActionPause).Return(nil)
	w = e.do("POST", "/api/v1/tasks/t1/pause", "")
	assert.Equal(t, http.StatusOK, w.Code)

	e.api.EXPECT().ControlTask(gomock.Any(), "t1", sdk.TaskActionStop).Return(errors.New("send request: connection refused"))
	w = e.do("POST", "/api/v1/tasks/t1/stop", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestStopPassthrough(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)
	e.api.EXPECT().StopOptimize(gomock.Any(), "p1").Return(nil)
	e.api.EXPECT().StopAutoIterate(gomock.Any(), "p1").Return(&sdk.APIError{StatusCode: 500, Detail: "internal"})

	assert.Equal(t, http.StatusOK, e.do("POST", "/api/v1/projects/p1/optimize/stop", "").Code)
	assert.Equal(t, http.StatusBadGateway, e.do("POST", "/api/v1/projects/p1/auto-iterate/stop", "").Code)
}

func TestGetProjectGoneDropsView(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)
	require.Equal(t, http.StatusAccepted, e.do("POST", "/api/v1/projects/p1/watch", `{"kind":"optimize"}`).Code)

	e.api.EXPECT().GetProject(gomock.Any(), "p1").Return(nil, &sdk.APIError{StatusCode: 404, Detail: "Project not found"})
	w := e.do("GET", "/api/v1/projects/p1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, ok := e.registry.Get("p1")
	assert.False(t, ok)
	assert.Equal(t, []string{"p1"}, e.store.deleted)

	e.api.EXPECT().GetProject(gomock.Any(), "p3").Return(&sdk.Project{ID: "p3", Name: "demo"}, nil)
	w = e.do("GET", "/api/v1/projects/p3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "demo", decode[sdk.Project](t, w).Name)
}

func TestGetHistory(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)
	e.api.EXPECT().ListProjectTasks(gomock.Any(), "p1").Return([]sdk.TaskSummary{{ID: "t1", Status: "completed"}}, nil)

	w := e.do("GET", "/api/v1/projects/p1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "backend", decode[dto.HistoryResponse](t, w).Source)

	// 第二次命中缓存，不再调用后端
	w = e.do("GET", "/api/v1/projects/p1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.HistoryResponse](t, w)
	assert.Equal(t, "cache", resp.Source)
	assert.Len(t, resp.Tasks, 1)
}

func TestListRuns(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)
	e.runs.runs = []repository.JobRun{
		{ProjectID: "p1", JobID: "t1", Kind: "batch", Status: "completed"},
		{ProjectID: "p1", JobID: "p1", Kind: "optimize", Status: "failed"},
	}

	w := e.do("GET", "/api/v1/runs?kind=batch", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.RunListResponse](t, w)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "t1", resp.Items[0].JobID)
}

func TestQueueStatsAndHealth(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)

	w := e.do("GET", "/api/v1/queues/settled", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[dto.QueueStatsResponse](t, w)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 7, stats.Processed)

	w = e.do("GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"views":"0"`)
	assert.Equal(t, http.StatusOK, e.do("GET", "/readyz", "").Code)
	assert.NotEmpty(t, e.do("GET", "/healthz", "").Header().Get("X-Request-ID"))
}

func TestInvalidProjectID(t *testing.T) {
	e := newEnv(t, model.JobStatusRunning)
	w := e.do("GET", "/api/v1/projects/bad$id/watch", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
