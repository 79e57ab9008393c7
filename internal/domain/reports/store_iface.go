package reports

import (
	"context"
	"time"

	"workforce/internal/domain/compliance"
	"workforce/internal/domain/shifts"
)

type StoreAPI interface {
	Employees(ctx context.Context, tenantID string) (map[string]EmployeeRef, error)
	DepartmentName(ctx context.Context, tenantID, departmentID string) (string, error)
	InsertArchive(ctx context.Context, tenantID, kind, filePath string) (Archive, error)
	ArchiveByID(ctx context.Context, tenantID, archiveID string) (Archive, error)
	ListJobRuns(ctx context.Context, tenantID string, filter JobRunFilter, limit, offset int) ([]JobRun, error)
	CountJobRuns(ctx context.Context, tenantID string, filter JobRunFilter) (int, error)
	JobRunByID(ctx context.Context, tenantID, runID string) (JobRun, error)
}

// RecordSource is satisfied by *compliance.Service.
type RecordSource interface {
	ListAll(ctx context.Context, tenantID string) ([]compliance.Record, error)
}

// RosterSource is satisfied by *shifts.Service.
type RosterSource interface {
	DepartmentRoster(ctx context.Context, tenantID, departmentID string, date time.Time) ([]shifts.RosterEntry, error)
}
