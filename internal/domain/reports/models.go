package reports

import (
	"encoding/json"
	"time"

	"workforce/internal/domain/compliance"
)

type EmployeeRef struct {
	ID             string
	Name           string
	DepartmentID   string
	DepartmentName string
}

type ExpiringItem struct {
	compliance.Record
	EmployeeName string `json:"employeeName"`
	DaysLeft     int    `json:"daysLeft"`
}

type Dashboard struct {
	Counts         compliance.StatusCounts            `json:"counts"`
	ComplianceRate string                             `json:"complianceRate"`
	ByType         map[string]compliance.TypeCounts   `json:"byType"`
	Expiring       []ExpiringItem                     `json:"expiring"`
	ByDepartment   map[string]compliance.StatusCounts `json:"byDepartment"`
	Employees      int                                `json:"employees"`
	GeneratedAt    time.Time                          `json:"generatedAt"`
}

type JobRun struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt"`
}

type JobRunFilter struct {
	JobType     string
	Status      string
	StartedFrom *time.Time
	StartedTo   *time.Time
}

// Archive is a generated report file kept on disk.
type Archive struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	FilePath  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	KindCompliancePDF = "compliance_pdf"
	KindRosterPDF     = "roster_pdf"
)
