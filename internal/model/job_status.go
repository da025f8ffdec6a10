package model

// JobStatus 后端上报的作业状态（三类作业共用）。
// 约定：
// - idle: 没有可轮询的作业
// - running: 执行中
// - paused: 已暂停（仍需继续轮询，等待 resume/stop）
// - completed: 正常结束
// - stopped: 被用户停止
// - error / failed: 失败（error 也用于本地合成的"连接中断"快照）
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusRunning   JobStatus = "running"
	JobStatusPaused    JobStatus = "paused"
	JobStatusCompleted JobStatus = "completed"
	JobStatusStopped   JobStatus = "stopped"
	JobStatusError     JobStatus = "error"
	JobStatusFailed    JobStatus = "failed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusIdle, JobStatusRunning, JobStatusPaused, JobStatusCompleted,
		JobStatusStopped, JobStatusError, JobStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal 终态之后不会再有状态迁移（除非用户重新发起）。
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusStopped, JobStatusError, JobStatusFailed:
		return true
	default:
		return false
	}
}

// IsActive 表示作业仍在后端推进，需要继续轮询。
func (s JobStatus) IsActive() bool {
	return s == JobStatusRunning || s == JobStatusPaused
}

// ParseJobStatus 把后端字符串转成 JobStatus，未知值原样保留（由调用方决定如何处理）。
func ParseJobStatus(raw string) JobStatus {
	return JobStatus(raw)
}
