package jobs

import (
	"context"

	"workforce/internal/platform/querier"
)

// ledger records job runs in job_runs and enumerates tenants to schedule.
type ledger interface {
	Tenants(ctx context.Context) ([]string, error)
	Start(ctx context.Context, tenantID, jobType string) (string, error)
	Finish(ctx context.Context, runID, status string, details []byte) error
}

type pgLedger struct {
	DB querier.Querier
}

func (l *pgLedger) Start(ctx context.Context, tenantID, jobType string) (string, error) {
	var runID string
	err := l.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenantID, jobType, StatusRunning).Scan(&runID)
	return runID, err
}

func (l *pgLedger) Finish(ctx context.Context, runID, status string, details []byte) error {
	_, err := l.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, runID)
	return err
}

func (l *pgLedger) Tenants(ctx context.Context) ([]string, error) {
	rows, err := l.DB.Query(ctx, `SELECT id FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
