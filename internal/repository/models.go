package repository

import (
	"time"

	"gorm.io/gorm"
)

// JobRunModel GORM 模型 - 对应 job_run 表
type JobRunModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id"`
	ProjectID    string    `gorm:"column:project_id;type:text;not null;index:idx_job_run_project_settled_at"`
	JobID        string    `gorm:"column:job_id;type:text;not null;index:idx_job_run_job"`
	RunID        string    `gorm:"column:run_id;type:text;not null;uniqueIndex:uk_job_run_kind_run"`
	Kind         string    `gorm:"column:kind;type:text;not null;uniqueIndex:uk_job_run_kind_run"`
	Status       string    `gorm:"column:status;type:text;not null;index:idx_job_run_status"`
	Message      *string   `gorm:"column:message;type:text"`
	CurrentIndex int       `gorm:"column:current_index;default:0"`
	TotalCount   int       `gorm:"column:total_count;default:0"`
	ErrorCount   int       `gorm:"column:error_count;default:0"`
	BestPrompt   *string   `gorm:"column:best_prompt;type:text"`
	SettledAt    time.Time `gorm:"column:settled_at;not null;index:idx_job_run_project_settled_at,sort:desc"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName 指定表名
func (JobRunModel) TableName() string { return "job_run" }

// ToJobRun 转换为 JobRun 实体
func (m *JobRunModel) ToJobRun() JobRun {
	r := JobRun{
		ProjectID:    m.ProjectID,
		JobID:        m.JobID,
		RunID:        m.RunID,
		Kind:         m.Kind,
		Status:       m.Status,
		CurrentIndex: m.CurrentIndex,
		TotalCount:   m.TotalCount,
		ErrorCount:   m.ErrorCount,
		SettledAt:    m.SettledAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Message != nil {
		r.Message = *m.Message
	}
	if m.BestPrompt != nil {
		r.BestPrompt = *m.BestPrompt
	}
	return r
}

// JobRunToModel 从 JobRun 实体创建模型
func JobRunToModel(r JobRun) JobRunModel {
	m := JobRunModel{
		ProjectID:    r.ProjectID,
		JobID:        r.JobID,
		RunID:        r.RunID,
		Kind:         r.Kind,
		Status:       r.Status,
		CurrentIndex: r.CurrentIndex,
		TotalCount:   r.TotalCount,
		ErrorCount:   r.ErrorCount,
		SettledAt:    r.SettledAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Message != "" {
		m.Message = &r.Message
	}
	if r.BestPrompt != "" {
		m.BestPrompt = &r.BestPrompt
	}
	return m
}

// AutoMigrate 同步表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&JobRunModel{})
}
