package poller

import "github.com/azhengyongqin/prompt-eval-hub/internal/model"

// DefaultPageSize BatchTask 结果分页的基础大小
const DefaultPageSize = 50

// Reconcile 把新快照合并到本地快照上（只对 BatchTask 生效）。
// 新快照的结果比本地少时保留本地多出的尾部，否则整体替换；
// 运行中的进度不回退。
func Reconcile(kind model.JobKind, prev *model.JobSnapshot, next model.JobSnapshot) model.JobSnapshot {
	out := next.Clone()
	if kind != model.JobKindBatchTask || prev == nil {
		return out
	}

	out.Results = mergeTail(prev.Results, out.Results)
	out.Errors = mergeTail(prev.Errors, out.Errors)

	if out.Status.IsActive() &&
		out.Progress.TotalCount == prev.Progress.TotalCount &&
		out.Progress.CurrentIndex < prev.Progress.CurrentIndex {
		out.Progress.CurrentIndex = prev.Progress.CurrentIndex
	}
	return out
}

// PageSize 轮询时的分页大小：按已加载的页数放大，至少一页
func PageSize(loaded, base int) int {
	if base <= 0 {
		base = DefaultPageSize
	}
	pages := (loaded + base - 1) / base
	if pages < 1 {
		pages = 1
	}
	return pages * base
}

func mergeTail[T any](local, incoming []T) []T {
	if len(incoming) >= len(local) {
		return incoming
	}
	out := make([]T, 0, len(local))
	out = append(out, incoming...)
	return append(out, local[len(incoming):]...)
}

// spliceRows 用 offset 开始的一页覆盖本地结果，不会让列表变短
func spliceRows(cur []model.RowResult, offset int, rows []model.RowResult) []model.RowResult {
	if offset < 0 {
		offset = 0
	}
	if offset > len(cur) {
		offset = len(cur)
	}
	incoming := append(cur[:offset:offset], rows...)
	return mergeTail(cur, incoming)
}

// appendErrors 追加判错行，按 Index 去重
func appendErrors(cur []model.RowError, rows []model.RowResult) []model.RowError {
	last := -1
	if len(cur) > 0 {
		last = cur[len(cur)-1].Index
	}
	for _, r := range rows {
		if r.IsCorrect || r.Index <= last {
			continue
		}
		cur = append(cur, model.ErrorFromResult(r))
		last = r.Index
	}
	return cur
}
