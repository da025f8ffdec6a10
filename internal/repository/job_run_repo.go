package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type JobRunRepo struct {
	pool *pgxpool.Pool
}

func NewJobRunRepo(pool *pgxpool.Pool) *JobRunRepo {
	return &JobRunRepo{pool: pool}
}

var _ JobRunRepository = (*JobRunRepo)(nil)

const jobRunColumns = `project_id, job_id, run_id, kind, status, coalesce(message,''), current_index, total_count, error_count, coalesce(best_prompt,''), settled_at, created_at, updated_at`

func (r *JobRunRepo) UpsertRun(ctx context.Context, run JobRun) error {
	if run.JobID == "" || run.Kind == "" {
		return errors.New("job_id 和 kind 不能为空")
	}
	if run.RunID == "" {
		run.RunID = run.JobID
	}
	_, err := r.pool.Exec(ctx, `
insert into job_run(project_id, job_id, run_id, kind, status, message, current_index, total_count, error_count, best_prompt, settled_at)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
on conflict (kind, run_id) do update
set project_id = excluded.project_id,
    job_id = excluded.job_id,
    status = excluded.status,
    message = excluded.message,
    current_index = excluded.current_index,
    total_count = excluded.total_count,
    error_count = excluded.error_count,
    best_prompt = excluded.best_prompt,
    settled_at = excluded.settled_at,
    updated_at = now()
`, run.ProjectID, run.JobID, run.RunID, run.Kind, run.Status, run.Message, run.CurrentIndex, run.TotalCount, run.ErrorCount, run.BestPrompt, run.SettledAt)
	return err
}

func (r *JobRunRepo) GetRun(ctx context.Context, kind, runID string) (*JobRun, error) {
	row := r.pool.QueryRow(ctx, `
select `+jobRunColumns+`
from job_run
where kind=$1 and run_id=$2
`, kind, runID)

	run, err := scanJobRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}

func (r *JobRunRepo) ListRuns(ctx context.Context, f ListJobRunsFilter) ([]JobRun, error) {
	f = f.Normalize()

	rows, err := r.pool.Query(ctx, `
select `+jobRunColumns+`
from job_run
where ($1='' or project_id=$1)
  and ($2='' or kind=$2)
  and ($3='' or status=$3)
order by settled_at desc
limit $4 offset $5
`, f.ProjectID, f.Kind, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobRun
	for rows.Next() {
		run, err := scanJobRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

func (r *JobRunRepo) CountRuns(ctx context.Context, f ListJobRunsFilter) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
select count(*)
from job_run
where ($1='' or project_id=$1)
  and ($2='' or kind=$2)
  and ($3='' or status=$3)
`, f.ProjectID, f.Kind, f.Status).Scan(&count)
	return count, err
}

func scanJobRun(row pgx.Row) (*JobRun, error) {
	var run JobRun
	if err := row.Scan(&run.ProjectID, &run.JobID, &run.RunID, &run.Kind, &run.Status, &run.Message,
		&run.CurrentIndex, &run.TotalCount, &run.ErrorCount, &run.BestPrompt,
		&run.SettledAt, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	return &run, nil
}
