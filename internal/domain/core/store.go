package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	cryptoutil "workforce/internal/platform/crypto"
	"workforce/internal/platform/querier"
)

type Store struct {
	DB     querier.Querier
	Crypto *cryptoutil.Service
}

func NewStore(db querier.Querier, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

const employeeColumns = `id,
           COALESCE(user_id::text, ''),
           COALESCE(employee_number, ''),
           first_name, last_name, email,
           COALESCE(phone, ''),
           COALESCE(position, ''),
           national_id_enc,
           COALESCE(department_id::text, ''),
           COALESCE(shift_id::text, ''),
           hire_date, status, created_at, updated_at`

func (s *Store) scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var nationalEnc []byte
	if err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.Phone, &emp.Position, &nationalEnc, &emp.DepartmentID, &emp.ShiftID,
		&emp.HireDate, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
	); err != nil {
		return Employee{}, err
	}
	nationalID, err := s.Crypto.OpenString(nationalEnc)
	if err != nil {
		slog.Warn("national id decrypt failed", "employeeId", emp.ID, "err", err)
	}
	emp.NationalID = nationalID
	return emp, nil
}

func (s *Store) GetEmployee(ctx context.Context, tenantID, employeeID string) (Employee, error) {
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, &NotFoundError{Entity: "employee", ID: employeeID}
	}
	return emp, err
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (Employee, error) {
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1 AND user_id = $2
  `, tenantID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, &NotFoundError{Entity: "employee for user", ID: userID}
	}
	return emp, err
}

func buildEmployeeQuery(prefix, tenantID string, filter EmployeeFilter) (string, []any) {
	query := prefix + " FROM employees WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.DepartmentID != "" {
		query += fmt.Sprintf(" AND department_id::text = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}
	return query, args
}

func (s *Store) CountEmployees(ctx context.Context, tenantID string, filter EmployeeFilter) (int, error) {
	query, args := buildEmployeeQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListEmployees(ctx context.Context, tenantID string, filter EmployeeFilter, limit, offset int) ([]Employee, error) {
	query, args := buildEmployeeQuery("SELECT "+employeeColumns, tenantID, filter)
	query += fmt.Sprintf(" ORDER BY last_name, first_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, tenantID string, in EmployeeInput) (Employee, error) {
	nationalEnc, err := s.Crypto.SealString(in.NationalID)
	if err != nil {
		return Employee{}, err
	}
	return s.scanEmployee(s.DB.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, employee_number, first_name, last_name, email, phone, position, national_id_enc, department_id, hire_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING `+employeeColumns,
		tenantID, nullIfEmpty(in.EmployeeNumber), in.FirstName, in.LastName, in.Email, nullIfEmpty(in.Phone), nullIfEmpty(in.Position),
		nationalEnc, nullIfEmpty(in.DepartmentID), in.HireDate, in.Status))
}

// UpdateEmployee overwrites the editable columns. The rotation anchor is
// managed by the shift service and left untouched.
func (s *Store) UpdateEmployee(ctx context.Context, tenantID, employeeID string, in EmployeeInput) (Employee, error) {
	nationalEnc, err := s.Crypto.SealString(in.NationalID)
	if err != nil {
		return Employee{}, err
	}
	emp, err := s.scanEmployee(s.DB.QueryRow(ctx, `
    UPDATE employees
    SET employee_number = $1,
        first_name = $2,
        last_name = $3,
        email = $4,
        phone = $5,
        position = $6,
        national_id_enc = $7,
        department_id = $8,
        hire_date = $9,
        status = $10,
        updated_at = now()
    WHERE tenant_id = $11 AND id = $12
    RETURNING `+employeeColumns,
		nullIfEmpty(in.EmployeeNumber), in.FirstName, in.LastName, in.Email, nullIfEmpty(in.Phone), nullIfEmpty(in.Position),
		nationalEnc, nullIfEmpty(in.DepartmentID), in.HireDate, in.Status, tenantID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, &NotFoundError{Entity: "employee", ID: employeeID}
	}
	return emp, err
}

func (s *Store) DepartmentExists(ctx context.Context, tenantID, departmentID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE tenant_id = $1 AND id = $2", tenantID, departmentID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListDepartments(ctx context.Context, tenantID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, COUNT(e.id), d.created_at
    FROM departments d
    LEFT JOIN employees e ON e.department_id = d.id AND e.status = 'active'
    WHERE d.tenant_id = $1
    GROUP BY d.id, d.name, d.created_at
    ORDER BY d.name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.Name, &dep.EmployeeCount, &dep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, tenantID, name string) (Department, error) {
	dep := Department{Name: name}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (tenant_id, name)
    VALUES ($1, $2)
    RETURNING id, created_at
  `, tenantID, name).Scan(&dep.ID, &dep.CreatedAt)
	return dep, err
}

func (s *Store) RenameDepartment(ctx context.Context, tenantID, departmentID, name string) (Department, error) {
	dep := Department{ID: departmentID, Name: name}
	err := s.DB.QueryRow(ctx, `
    UPDATE departments SET name = $1
    WHERE tenant_id = $2 AND id = $3
    RETURNING created_at
  `, name, tenantID, departmentID).Scan(&dep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, &NotFoundError{Entity: "department", ID: departmentID}
	}
	return dep, err
}

func (s *Store) DepartmentHasEmployees(ctx context.Context, tenantID, departmentID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1 AND department_id = $2", tenantID, departmentID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) DeleteDepartment(ctx context.Context, tenantID, departmentID string) error {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE tenant_id = $1 AND id = $2", tenantID, departmentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &NotFoundError{Entity: "department", ID: departmentID}
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
