package shifts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const shiftColumns = `id, name, start_time, end_time, department_id::text, created_at`

func scanShift(row pgx.Row) (Shift, error) {
	var s Shift
	if err := row.Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.DepartmentID, &s.CreatedAt); err != nil {
		return Shift{}, err
	}
	return s, nil
}

// ListShifts returns the tenant's shifts. A non-empty departmentID narrows the
// list to that department.
func (s *Store) ListShifts(ctx context.Context, tenantID, departmentID string) ([]Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE tenant_id = $1`
	args := []any{tenantID}
	if departmentID != "" {
		query += " AND department_id = $2"
		args = append(args, departmentID)
	}
	query += " ORDER BY start_time, name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, shift)
	}
	return out, rows.Err()
}

func (s *Store) GetShift(ctx context.Context, tenantID, shiftID string) (Shift, error) {
	shift, err := scanShift(s.DB.QueryRow(ctx, `
    SELECT `+shiftColumns+`
    FROM shifts
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, shiftID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Shift{}, &NotFoundError{Entity: "shift", ID: shiftID}
	}
	return shift, err
}

func (s *Store) CreateShift(ctx context.Context, tenantID string, in ShiftInput) (Shift, error) {
	return scanShift(s.DB.QueryRow(ctx, `
    INSERT INTO shifts (tenant_id, name, start_time, end_time, department_id)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING `+shiftColumns+`
  `, tenantID, in.Name, in.StartTime, in.EndTime, in.DepartmentID))
}

func (s *Store) UpdateShift(ctx context.Context, tenantID, shiftID string, in ShiftInput) (Shift, error) {
	shift, err := scanShift(s.DB.QueryRow(ctx, `
    UPDATE shifts
    SET name = $1, start_time = $2, end_time = $3, department_id = $4
    WHERE tenant_id = $5 AND id = $6
    RETURNING `+shiftColumns+`
  `, in.Name, in.StartTime, in.EndTime, in.DepartmentID, tenantID, shiftID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Shift{}, &NotFoundError{Entity: "shift", ID: shiftID}
	}
	return shift, err
}

// DeleteShift removes the shift; employees anchored on it lose their anchor
// through the foreign key.
func (s *Store) DeleteShift(ctx context.Context, tenantID, shiftID string) error {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM shifts WHERE tenant_id = $1 AND id = $2", tenantID, shiftID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &NotFoundError{Entity: "shift", ID: shiftID}
	}
	return nil
}

const assignmentColumns = `id, first_name || ' ' || last_name, COALESCE(department_id::text, ''), COALESCE(shift_id::text, '')`

func (s *Store) Assignment(ctx context.Context, tenantID, employeeID string) (Assignment, error) {
	var a Assignment
	err := s.DB.QueryRow(ctx, `
    SELECT `+assignmentColumns+`
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&a.EmployeeID, &a.EmployeeName, &a.DepartmentID, &a.AnchorShiftID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Assignment{}, &NotFoundError{Entity: "employee", ID: employeeID}
	}
	return a, err
}

func (s *Store) DepartmentAssignments(ctx context.Context, tenantID, departmentID string) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+assignmentColumns+`
    FROM employees
    WHERE tenant_id = $1 AND department_id = $2 AND status = 'active'
    ORDER BY last_name, first_name
  `, tenantID, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.EmployeeID, &a.EmployeeName, &a.DepartmentID, &a.AnchorShiftID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SetAnchor(ctx context.Context, tenantID, employeeID, shiftID string) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET shift_id = $1, updated_at = now()
    WHERE tenant_id = $2 AND id = $3
  `, nullIfEmpty(shiftID), tenantID, employeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &NotFoundError{Entity: "employee", ID: employeeID}
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
