package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// BackendFetcher 基于 sdk.API 的 Fetcher 实现，按作业类型选择状态接口
type BackendFetcher struct {
	api      sdk.API
	pageSize int
}

// NewBackendFetcher 创建 BackendFetcher，pageSize<=0 时使用 DefaultPageSize
func NewBackendFetcher(api sdk.API, pageSize int) *BackendFetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &BackendFetcher{api: api, pageSize: pageSize}
}

// PageSizeBase 分页基础大小
func (f *BackendFetcher) PageSizeBase() int { return f.pageSize }

// Fetch 实现 Fetcher
func (f *BackendFetcher) Fetch(ctx context.Context, req FetchRequest) (model.JobSnapshot, error) {
	h := req.Handle
	switch h.Kind {
	case model.JobKindBatchTask:
		st, err := f.api.GetTask(ctx, h.JobID, 1, PageSize(req.Loaded, f.pageSize))
		if err != nil {
			return model.JobSnapshot{}, err
		}
		return TaskSnapshot(st), nil

	case model.JobKindOptimization:
		st, err := f.api.GetOptimizeStatus(ctx, h.ProjectID)
		if err != nil {
			return model.JobSnapshot{}, err
		}
		return OptimizeSnapshot(st), nil

	case model.JobKindAutoIterate:
		st, err := f.api.GetAutoIterateStatus(ctx, h.ProjectID)
		if err != nil {
			return model.JobSnapshot{}, err
		}
		return AutoIterateSnapshot(st), nil

	default:
		return model.JobSnapshot{}, fmt.Errorf("%w: kind=%s", ErrInvalidHandle, h.Kind)
	}
}

// LoadPage 拉取批量验证结果的第 page 页（从 1 开始）
func (f *BackendFetcher) LoadPage(ctx context.Context, taskID string, page, pageSize int) ([]model.RowResult, error) {
	st, err := f.api.GetTask(ctx, taskID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return convertResults(st.Results), nil
}

// TaskSnapshot 把 GET /tasks/{id} 的响应转成快照；
// 后端没有单独返回 errors 时从结果中筛出判错行。
func TaskSnapshot(st *sdk.TaskStatus) model.JobSnapshot {
	snap := model.JobSnapshot{
		Status: model.ParseJobStatus(st.Status),
		Progress: model.Progress{
			CurrentIndex: st.CurrentIndex,
			TotalCount:   st.TotalCount,
		},
		Results:   convertResults(st.Results),
		Message:   st.Message,
		FetchedAt: time.Now(),
	}

	if st.Errors != nil {
		snap.Errors = make([]model.RowError, 0, len(st.Errors))
		for _, r := range st.Errors {
			snap.Errors = append(snap.Errors, model.ErrorFromResult(convertResult(r)))
		}
	} else {
		snap.Errors = appendErrors(nil, snap.Results)
	}
	return snap
}

// OptimizeSnapshot 优化状态转快照
func OptimizeSnapshot(st *sdk.OptimizeStatus) model.JobSnapshot {
	return model.JobSnapshot{
		Status:     model.ParseJobStatus(st.Status),
		Message:    st.Message,
		BestPrompt: st.NewPrompt,
		FetchedAt:  time.Now(),
	}
}

// AutoIterateSnapshot 自动迭代状态转快照
func AutoIterateSnapshot(st *sdk.AutoIterateStatus) model.JobSnapshot {
	return model.JobSnapshot{
		Status:  model.ParseJobStatus(st.Status),
		Message: st.Message,
		Rounds: &model.Rounds{
			Current:        st.CurrentRound,
			Max:            st.MaxRounds,
			Accuracy:       st.CurrentAccuracy,
			TargetAccuracy: st.TargetAccuracy,
		},
		BestPrompt: st.BestPrompt,
		FetchedAt:  time.Now(),
	}
}

func convertResults(in []sdk.TaskResult) []model.RowResult {
	if in == nil {
		return nil
	}
	out := make([]model.RowResult, 0, len(in))
	for _, r := range in {
		out = append(out, convertResult(r))
	}
	return out
}

func convertResult(r sdk.TaskResult) model.RowResult {
	return model.RowResult{
		Index:     r.Index,
		Query:     r.Query,
		Target:    r.Target,
		Output:    r.Output,
		IsCorrect: r.IsCorrect,
		Reason:    r.Reason,
	}
}
