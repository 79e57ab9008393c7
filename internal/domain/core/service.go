package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"workforce/internal/domain/audit"
)

const (
	ActionEmployeeCreate   = "employee.create"
	ActionEmployeeUpdate   = "employee.update"
	ActionDepartmentCreate = "department.create"
	ActionDepartmentUpdate = "department.update"
	ActionDepartmentDelete = "department.delete"
)

type Service struct {
	store     StoreAPI
	onboarder Onboarder
	auditor   Auditor
}

func NewService(store StoreAPI, onboarder Onboarder, auditor Auditor) *Service {
	return &Service{store: store, onboarder: onboarder, auditor: auditor}
}

func (s *Service) ListEmployees(ctx context.Context, tenantID string, filter EmployeeFilter, limit, offset int) ([]Employee, int, error) {
	total, err := s.store.CountEmployees(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	employees, err := s.store.ListEmployees(ctx, tenantID, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (s *Service) GetEmployee(ctx context.Context, tenantID, employeeID string) (Employee, error) {
	return s.store.GetEmployee(ctx, tenantID, employeeID)
}

func (s *Service) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (Employee, error) {
	return s.store.GetEmployeeByUserID(ctx, tenantID, userID)
}

// CreateEmployee stores the employee and opens the mandatory safety training
// and medical exam tracks, issued on the hire date when one is given.
func (s *Service) CreateEmployee(ctx context.Context, actor audit.Actor, in EmployeeInput) (Employee, error) {
	in = normalizeEmployee(in)
	if err := s.validate(ctx, actor.TenantID, in); err != nil {
		return Employee{}, err
	}
	emp, err := s.store.CreateEmployee(ctx, actor.TenantID, in)
	if err != nil {
		return Employee{}, err
	}
	s.record(ctx, actor, ActionEmployeeCreate, "employee", emp.ID, emp.ID, "created employee "+emp.FullName(), nil, redact(emp))

	if s.onboarder != nil {
		var issued time.Time
		if in.HireDate != nil {
			issued = *in.HireDate
		}
		if _, err := s.onboarder.EnsureMandatory(ctx, actor, emp.ID, issued); err != nil {
			slog.Warn("mandatory compliance onboarding failed", "employeeId", emp.ID, "err", err)
		}
	}
	return emp, nil
}

func (s *Service) UpdateEmployee(ctx context.Context, actor audit.Actor, employeeID string, in EmployeeInput) (Employee, error) {
	current, err := s.store.GetEmployee(ctx, actor.TenantID, employeeID)
	if err != nil {
		return Employee{}, err
	}
	in = normalizeEmployee(in)
	if err := s.validate(ctx, actor.TenantID, in); err != nil {
		return Employee{}, err
	}
	updated, err := s.store.UpdateEmployee(ctx, actor.TenantID, employeeID, in)
	if err != nil {
		return Employee{}, err
	}
	s.record(ctx, actor, ActionEmployeeUpdate, "employee", employeeID, employeeID, "updated employee "+updated.FullName(), redact(current), redact(updated))
	return updated, nil
}

func (s *Service) ListDepartments(ctx context.Context, tenantID string) ([]Department, error) {
	return s.store.ListDepartments(ctx, tenantID)
}

func (s *Service) CreateDepartment(ctx context.Context, actor audit.Actor, name string) (Department, error) {
	name, err := validateDepartmentName(name)
	if err != nil {
		return Department{}, err
	}
	dep, err := s.store.CreateDepartment(ctx, actor.TenantID, name)
	if err != nil {
		return Department{}, err
	}
	s.record(ctx, actor, ActionDepartmentCreate, "department", dep.ID, "", "created department "+dep.Name, nil, dep)
	return dep, nil
}

func (s *Service) RenameDepartment(ctx context.Context, actor audit.Actor, departmentID, name string) (Department, error) {
	name, err := validateDepartmentName(name)
	if err != nil {
		return Department{}, err
	}
	dep, err := s.store.RenameDepartment(ctx, actor.TenantID, departmentID, name)
	if err != nil {
		return Department{}, err
	}
	s.record(ctx, actor, ActionDepartmentUpdate, "department", dep.ID, "", "renamed department to "+dep.Name, nil, dep)
	return dep, nil
}

func (s *Service) DeleteDepartment(ctx context.Context, actor audit.Actor, departmentID string) error {
	busy, err := s.store.DepartmentHasEmployees(ctx, actor.TenantID, departmentID)
	if err != nil {
		return err
	}
	if busy {
		return &ConflictError{Reason: "department still has employees"}
	}
	if err := s.store.DeleteDepartment(ctx, actor.TenantID, departmentID); err != nil {
		return err
	}
	s.record(ctx, actor, ActionDepartmentDelete, "department", departmentID, "", "deleted department", nil, nil)
	return nil
}

func (s *Service) validate(ctx context.Context, tenantID string, in EmployeeInput) error {
	if err := validateEmployee(in); err != nil {
		return err
	}
	if in.DepartmentID == "" {
		return nil
	}
	ok, err := s.store.DepartmentExists(ctx, tenantID, in.DepartmentID)
	if err != nil {
		return fmt.Errorf("check department: %w", err)
	}
	if !ok {
		return &NotFoundError{Entity: "department", ID: in.DepartmentID}
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor audit.Actor, action, entityType, entityID, targetEmployeeID, details string, before, after any) {
	if s.auditor == nil {
		return
	}
	entry := audit.Entry{
		Action:           action,
		EntityType:       entityType,
		EntityID:         entityID,
		TargetEmployeeID: targetEmployeeID,
		Details:          details,
		Before:           before,
		After:            after,
	}
	if err := s.auditor.Record(ctx, actor, entry); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

// redact keeps the national id out of audit snapshots.
func redact(emp Employee) Employee {
	if emp.NationalID != "" {
		emp.NationalID = "***"
	}
	return emp
}
