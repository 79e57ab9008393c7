package core

import (
	"context"
	"time"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/compliance"
)

type StoreAPI interface {
	ListEmployees(ctx context.Context, tenantID string, filter EmployeeFilter, limit, offset int) ([]Employee, error)
	CountEmployees(ctx context.Context, tenantID string, filter EmployeeFilter) (int, error)
	GetEmployee(ctx context.Context, tenantID, employeeID string) (Employee, error)
	GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (Employee, error)
	CreateEmployee(ctx context.Context, tenantID string, in EmployeeInput) (Employee, error)
	UpdateEmployee(ctx context.Context, tenantID, employeeID string, in EmployeeInput) (Employee, error)
	DepartmentExists(ctx context.Context, tenantID, departmentID string) (bool, error)

	ListDepartments(ctx context.Context, tenantID string) ([]Department, error)
	CreateDepartment(ctx context.Context, tenantID, name string) (Department, error)
	RenameDepartment(ctx context.Context, tenantID, departmentID, name string) (Department, error)
	DepartmentHasEmployees(ctx context.Context, tenantID, departmentID string) (bool, error)
	DeleteDepartment(ctx context.Context, tenantID, departmentID string) error
}

// Onboarder is satisfied by *compliance.Service.
type Onboarder interface {
	EnsureMandatory(ctx context.Context, actor audit.Actor, employeeID string, issueDate time.Time) ([]compliance.Record, error)
}

// Auditor is satisfied by *audit.Service.
type Auditor interface {
	Record(ctx context.Context, actor audit.Actor, entry audit.Entry) error
}
