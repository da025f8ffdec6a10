package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/azhengyongqin/prompt-eval-hub/internal/model"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// MirroredSlot 镜像到 Redis 的槽状态
type MirroredSlot struct {
	Handle     model.JobHandle   `json:"handle"`
	Snapshot   model.JobSnapshot `json:"snapshot"`
	MirroredAt time.Time         `json:"mirrored_at"`
}

// SnapshotKey evalhub:snapshot:{project_id}:{kind}
func SnapshotKey(projectID string, kind model.JobKind) string {
	return CacheKey("snapshot", projectID, string(kind))
}

// HistoryKey evalhub:history:{project_id}
func HistoryKey(projectID string) string {
	return CacheKey("history", projectID)
}

// SaveSnapshot 写入镜像快照。
// 批量验证的 handle 可能没有 project_id，此时按 job_id 建键。
func (c *RedisCache) SaveSnapshot(ctx context.Context, slot MirroredSlot, ttl time.Duration) error {
	owner := slot.Handle.ProjectID
	if owner == "" {
		owner = slot.Handle.JobID
	}
	return setJSON(ctx, c.client, SnapshotKey(owner, slot.Handle.Kind), slot, ttl)
}

// LoadSnapshot 读取镜像快照，不存在返回 ErrCacheMiss
func (c *RedisCache) LoadSnapshot(ctx context.Context, projectID string, kind model.JobKind) (*MirroredSlot, error) {
	slot, err := getJSON[MirroredSlot](ctx, c.client, SnapshotKey(projectID, kind))
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// DeleteSnapshots 项目已删除：清掉全部镜像快照和任务历史
func (c *RedisCache) DeleteSnapshots(ctx context.Context, projectID string) error {
	keys := make([]string, 0, len(model.AllJobKinds)+1)
	for _, kind := range model.AllJobKinds {
		keys = append(keys, SnapshotKey(projectID, kind))
	}
	keys = append(keys, HistoryKey(projectID))
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete project %s: %w", projectID, err)
	}
	return nil
}

// SaveHistory 缓存项目的任务历史列表
func (c *RedisCache) SaveHistory(ctx context.Context, projectID string, tasks []sdk.TaskSummary, ttl time.Duration) error {
	return setJSON(ctx, c.client, HistoryKey(projectID), tasks, ttl)
}

// LoadHistory 读取缓存的任务历史
func (c *RedisCache) LoadHistory(ctx context.Context, projectID string) ([]sdk.TaskSummary, error) {
	return getJSON[[]sdk.TaskSummary](ctx, c.client, HistoryKey(projectID))
}
