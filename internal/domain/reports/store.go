package reports

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"workforce/internal/platform/querier"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Employees(ctx context.Context, tenantID string) (map[string]EmployeeRef, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.first_name || ' ' || e.last_name, COALESCE(e.department_id::text, ''), COALESCE(d.name, '')
    FROM employees e
    LEFT JOIN departments d ON d.id = e.department_id
    WHERE e.tenant_id = $1 AND e.status = 'active'
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]EmployeeRef{}
	for rows.Next() {
		var ref EmployeeRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.DepartmentID, &ref.DepartmentName); err != nil {
			return nil, err
		}
		out[ref.ID] = ref
	}
	return out, rows.Err()
}

func (s *Store) DepartmentName(ctx context.Context, tenantID, departmentID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, "SELECT name FROM departments WHERE tenant_id = $1 AND id = $2", tenantID, departmentID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return name, err
}

func (s *Store) InsertArchive(ctx context.Context, tenantID, kind, filePath string) (Archive, error) {
	out := Archive{Kind: kind, FilePath: filePath}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO report_archives (tenant_id, kind, file_path)
    VALUES ($1,$2,$3)
    RETURNING id, created_at
  `, tenantID, kind, filePath).Scan(&out.ID, &out.CreatedAt)
	return out, err
}

func (s *Store) ArchiveByID(ctx context.Context, tenantID, archiveID string) (Archive, error) {
	var out Archive
	err := s.DB.QueryRow(ctx, `
    SELECT id, kind, file_path, created_at
    FROM report_archives
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, archiveID).Scan(&out.ID, &out.Kind, &out.FilePath, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Archive{}, ErrNotFound
	}
	return out, err
}

func (s *Store) ListJobRuns(ctx context.Context, tenantID string, filter JobRunFilter, limit, offset int) ([]JobRun, error) {
	query, args := buildJobRunsBaseQuery(tenantID, filter)
	query += " ORDER BY started_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []JobRun
	for rows.Next() {
		var run JobRun
		var detailsRaw []byte
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &detailsRaw, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		run.Details = decodeDetails(detailsRaw)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) CountJobRuns(ctx context.Context, tenantID string, filter JobRunFilter) (int, error) {
	query, args := buildJobRunsBaseQuery(tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM ("+query+") job_runs", args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) JobRunByID(ctx context.Context, tenantID, runID string) (JobRun, error) {
	var run JobRun
	var detailsRaw []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, runID).Scan(&run.ID, &run.JobType, &run.Status, &detailsRaw, &run.StartedAt, &run.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobRun{}, ErrNotFound
	}
	if err != nil {
		return JobRun{}, err
	}
	run.Details = decodeDetails(detailsRaw)
	return run, nil
}

func buildJobRunsBaseQuery(tenantID string, filter JobRunFilter) (string, []any) {
	query := `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE tenant_id = $1
  `
	args := []any{tenantID}

	if value := strings.TrimSpace(filter.JobType); value != "" {
		query += " AND job_type = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		query += " AND status = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if filter.StartedFrom != nil && !filter.StartedFrom.IsZero() {
		query += " AND started_at >= $" + strconv.Itoa(len(args)+1)
		args = append(args, *filter.StartedFrom)
	}
	if filter.StartedTo != nil && !filter.StartedTo.IsZero() {
		query += " AND started_at <= $" + strconv.Itoa(len(args)+1)
		args = append(args, *filter.StartedTo)
	}
	return query, args
}

// decodeDetails passes valid JSON through and wraps anything else as a string.
func decodeDetails(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(raw)})
	return wrapped
}

