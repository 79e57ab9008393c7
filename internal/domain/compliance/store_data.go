package compliance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const recordColumns = `id, employee_id, category, name, issue_date, COALESCE(duration, ''), expiry_date, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var category, status, duration string
	if err := row.Scan(&rec.ID, &rec.EmployeeID, &category, &rec.Name, &rec.IssueDate, &duration, &rec.ExpiryDate, &status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.Category = Category(category)
	rec.Status = Status(status)
	if duration != "" {
		parsed, err := ParseDuration(duration)
		if err != nil {
			return Record{}, err
		}
		rec.Duration = parsed
	}
	return rec, nil
}

func (s *Store) ListByEmployee(ctx context.Context, tenantID, employeeID string) ([]Record, error) {
	return s.list(ctx, `
    SELECT `+recordColumns+`
    FROM compliance_records
    WHERE tenant_id = $1 AND employee_id = $2
    ORDER BY category = 'MANDATORY' DESC, expiry_date ASC, name ASC
  `, tenantID, employeeID)
}

func (s *Store) ListAll(ctx context.Context, tenantID string) ([]Record, error) {
	return s.list(ctx, `
    SELECT `+recordColumns+`
    FROM compliance_records
    WHERE tenant_id = $1
    ORDER BY expiry_date ASC
  `, tenantID)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, tenantID, recordID string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM compliance_records
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, recordID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, &NotFoundError{Entity: "compliance record", ID: recordID}
	}
	return rec, err
}

func (s *Store) Insert(ctx context.Context, tenantID string, rec Record) (Record, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO compliance_records (tenant_id, employee_id, category, name, issue_date, duration, expiry_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id, created_at, updated_at
  `, tenantID, rec.EmployeeID, string(rec.Category), rec.Name, rec.IssueDate, rec.Duration.String(), rec.ExpiryDate, string(rec.Status)).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Update overwrites the mutable columns. Concurrent writers race last-write-wins.
func (s *Store) Update(ctx context.Context, tenantID string, rec Record) (Record, error) {
	var updatedAt time.Time
	err := s.DB.QueryRow(ctx, `
    UPDATE compliance_records
    SET issue_date = $1,
        duration = $2,
        expiry_date = $3,
        status = $4,
        updated_at = now()
    WHERE tenant_id = $5 AND id = $6
    RETURNING updated_at
  `, rec.IssueDate, rec.Duration.String(), rec.ExpiryDate, string(rec.Status), tenantID, rec.ID).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, &NotFoundError{Entity: "compliance record", ID: rec.ID}
	}
	if err != nil {
		return Record{}, err
	}
	rec.UpdatedAt = updatedAt
	return rec, nil
}

func (s *Store) UpdateStatus(ctx context.Context, tenantID, recordID string, status Status) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE compliance_records
    SET status = $1, updated_at = now()
    WHERE tenant_id = $2 AND id = $3 AND status <> $1
  `, string(status), tenantID, recordID)
	return err
}

func (s *Store) Delete(ctx context.Context, tenantID, recordID string) error {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM compliance_records WHERE tenant_id = $1 AND id = $2", tenantID, recordID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &NotFoundError{Entity: "compliance record", ID: recordID}
	}
	return nil
}

func (s *Store) HasRecordNamed(ctx context.Context, tenantID, employeeID, name string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM compliance_records
    WHERE tenant_id = $1 AND employee_id = $2 AND name = $3
  `, tenantID, employeeID, name).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) EmployeeExists(ctx context.Context, tenantID, employeeID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1 AND id = $2", tenantID, employeeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
