package shifts

import (
	"context"
	"time"

	"workforce/internal/domain/audit"
)

type StoreAPI interface {
	ListShifts(ctx context.Context, tenantID, departmentID string) ([]Shift, error)
	GetShift(ctx context.Context, tenantID, shiftID string) (Shift, error)
	CreateShift(ctx context.Context, tenantID string, in ShiftInput) (Shift, error)
	UpdateShift(ctx context.Context, tenantID, shiftID string, in ShiftInput) (Shift, error)
	DeleteShift(ctx context.Context, tenantID, shiftID string) error
	Assignment(ctx context.Context, tenantID, employeeID string) (Assignment, error)
	DepartmentAssignments(ctx context.Context, tenantID, departmentID string) ([]Assignment, error)
	SetAnchor(ctx context.Context, tenantID, employeeID, shiftID string) error
}

// Auditor is satisfied by *audit.Service.
type Auditor interface {
	Record(ctx context.Context, actor audit.Actor, entry audit.Entry) error
}

type Clock func() time.Time

// AnchorNotifier is satisfied by *notifications.Service.
type AnchorNotifier interface {
	NotifyAnchorChange(ctx context.Context, tenantID, employeeID, shiftName string) error
}
