package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobRunModelRoundTrip(t *testing.T) {
	settled := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		run  JobRun
	}{
		{
			name: "batch with message",
			run: JobRun{
				ProjectID: "p1", JobID: "t1", RunID: "t1", Kind: "batch", Status: "completed",
				Message: "done", CurrentIndex: 120, TotalCount: 120, ErrorCount: 7, SettledAt: settled,
			},
		},
		{
			name: "auto iterate with best prompt",
			run: JobRun{
				ProjectID: "p1", JobID: "p1", RunID: "p1@1790000000000000000", Kind: "auto-iterate", Status: "stopped",
				BestPrompt: "You are a helpful grader.", SettledAt: settled,
			},
		},
		{
			name: "empty optional fields",
			run:  JobRun{ProjectID: "p2", JobID: "p2", Kind: "optimize", Status: "failed", SettledAt: settled},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := JobRunToModel(tt.run)
			if tt.run.Message == "" {
				assert.Nil(t, m.Message)
			}
			if tt.run.BestPrompt == "" {
				assert.Nil(t, m.BestPrompt)
			}
			assert.Equal(t, tt.run, m.ToJobRun())
		})
	}
}

func TestJobRunModelTableName(t *testing.T) {
	assert.Equal(t, "job_run", JobRunModel{}.TableName())
}

func TestListJobRunsFilterNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         ListJobRunsFilter
		wantLimit  int
		wantOffset int
	}{
		{"zero", ListJobRunsFilter{}, 50, 0},
		{"too large", ListJobRunsFilter{Limit: 1000}, 50, 0},
		{"negative offset", ListJobRunsFilter{Limit: 10, Offset: -3}, 10, 0},
		{"kept", ListJobRunsFilter{Limit: 200, Offset: 40}, 200, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}
