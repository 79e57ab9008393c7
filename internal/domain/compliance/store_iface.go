package compliance

import (
	"context"
	"time"

	"workforce/internal/domain/audit"
)

type StoreAPI interface {
	ListByEmployee(ctx context.Context, tenantID, employeeID string) ([]Record, error)
	ListAll(ctx context.Context, tenantID string) ([]Record, error)
	Get(ctx context.Context, tenantID, recordID string) (Record, error)
	Insert(ctx context.Context, tenantID string, rec Record) (Record, error)
	Update(ctx context.Context, tenantID string, rec Record) (Record, error)
	UpdateStatus(ctx context.Context, tenantID, recordID string, status Status) error
	Delete(ctx context.Context, tenantID, recordID string) error
	HasRecordNamed(ctx context.Context, tenantID, employeeID, name string) (bool, error)
	EmployeeExists(ctx context.Context, tenantID, employeeID string) (bool, error)
}

// Auditor is satisfied by *audit.Service.
type Auditor interface {
	Record(ctx context.Context, actor audit.Actor, entry audit.Entry) error
}

type Clock func() time.Time
