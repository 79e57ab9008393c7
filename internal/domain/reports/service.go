package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"workforce/internal/domain/compliance"
)

// DefaultExpiringDays is the dashboard look-ahead when the caller gives none.
const DefaultExpiringDays = compliance.WarningThresholdDays

type Service struct {
	store   StoreAPI
	records RecordSource
	rosters RosterSource
	Dir     string
	now     func() time.Time
}

func NewService(store StoreAPI, records RecordSource, rosters RosterSource, dir string) *Service {
	return &Service{store: store, records: records, rosters: rosters, Dir: dir, now: time.Now}
}

func (s *Service) WithClock(clock func() time.Time) *Service {
	s.now = clock
	return s
}

type snapshot struct {
	records   []compliance.Record
	employees map[string]EmployeeRef
}

// load fetches records and the employee directory concurrently. Records of
// employees that are no longer active are dropped.
func (s *Service) load(ctx context.Context, tenantID string) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.records.ListAll(gctx, tenantID)
		snap.records = records
		return err
	})
	g.Go(func() error {
		employees, err := s.store.Employees(gctx, tenantID)
		snap.employees = employees
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	active := snap.records[:0]
	for _, rec := range snap.records {
		if _, ok := snap.employees[rec.EmployeeID]; ok {
			active = append(active, rec)
		}
	}
	snap.records = active
	return snap, nil
}

func (s *Service) Dashboard(ctx context.Context, tenantID string, expiringDays int) (Dashboard, error) {
	if expiringDays <= 0 {
		expiringDays = DefaultExpiringDays
	}
	snap, err := s.load(ctx, tenantID)
	if err != nil {
		return Dashboard{}, err
	}
	return buildDashboard(snap, s.now(), expiringDays), nil
}

func buildDashboard(snap snapshot, now time.Time, expiringDays int) Dashboard {
	counts := compliance.AggregateByStatus(snap.records, now)
	out := Dashboard{
		Counts:         counts,
		ComplianceRate: counts.ComplianceRate().StringFixed(2),
		ByType:         compliance.AggregateByType(snap.records, now),
		ByDepartment:   map[string]compliance.StatusCounts{},
		Employees:      len(snap.employees),
		GeneratedAt:    now,
	}
	for _, rec := range compliance.ExpiringWithin(snap.records, now, expiringDays) {
		out.Expiring = append(out.Expiring, ExpiringItem{
			Record:       rec,
			EmployeeName: snap.employees[rec.EmployeeID].Name,
			DaysLeft:     compliance.DaysRemaining(rec.ExpiryDate, now),
		})
	}
	byDept := map[string][]compliance.Record{}
	for _, rec := range snap.records {
		key := departmentLabel(snap.employees[rec.EmployeeID])
		byDept[key] = append(byDept[key], rec)
	}
	for key, recs := range byDept {
		out.ByDepartment[key] = compliance.AggregateByStatus(recs, now)
	}
	return out
}

func departmentLabel(ref EmployeeRef) string {
	if ref.DepartmentName == "" {
		return "-"
	}
	return ref.DepartmentName
}

var csvHeader = []string{"employee", "department", "category", "name", "issueDate", "duration", "expiryDate", "status", "daysLeft", "remaining"}

// WriteComplianceCSV exports every record of active employees, optionally
// narrowed to one derived status, ordered by employee and expiry.
func (s *Service) WriteComplianceCSV(ctx context.Context, tenantID string, status compliance.Status, w io.Writer) error {
	snap, err := s.load(ctx, tenantID)
	if err != nil {
		return err
	}
	now := s.now()
	records := snap.records
	if status != "" {
		records = compliance.FilterByStatus(records, now, status)
	}
	rows := s.sortedRows(records, snap.employees)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		view := compliance.NewView(row.rec, now)
		if err := cw.Write([]string{
			row.ref.Name,
			row.ref.DepartmentName,
			string(view.Category),
			view.Name,
			view.IssueDate.Format("2006-01-02"),
			view.Duration.String(),
			view.ExpiryDate.Format("2006-01-02"),
			string(view.Status),
			strconv.Itoa(view.DaysLeft),
			view.RemainingText,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type recordRow struct {
	rec compliance.Record
	ref EmployeeRef
}

func (s *Service) sortedRows(records []compliance.Record, employees map[string]EmployeeRef) []recordRow {
	rows := make([]recordRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, recordRow{rec: rec, ref: employees[rec.EmployeeID]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ref.Name != rows[j].ref.Name {
			return rows[i].ref.Name < rows[j].ref.Name
		}
		return rows[i].rec.ExpiryDate.Before(rows[j].rec.ExpiryDate)
	})
	return rows
}

// CompliancePDF renders the tenant-wide compliance report to disk and records it.
func (s *Service) CompliancePDF(ctx context.Context, tenantID string) (Archive, error) {
	snap, err := s.load(ctx, tenantID)
	if err != nil {
		return Archive{}, err
	}
	now := s.now()
	dash := buildDashboard(snap, now, DefaultExpiringDays)
	attention := append(compliance.FilterByStatus(snap.records, now, compliance.StatusExpired),
		compliance.FilterByStatus(snap.records, now, compliance.StatusWarning)...)
	pdf := buildCompliancePDF(dash, s.sortedRows(attention, snap.employees), now)
	return s.archive(ctx, tenantID, KindCompliancePDF, func(path string) error {
		return pdf.OutputFileAndClose(path)
	})
}

// RosterPDF renders the week's resolved shifts of one department.
func (s *Service) RosterPDF(ctx context.Context, tenantID, departmentID string, date time.Time) (Archive, error) {
	if date.IsZero() {
		date = s.now()
	}
	name := "General"
	if departmentID != "" {
		n, err := s.store.DepartmentName(ctx, tenantID, departmentID)
		if err != nil {
			return Archive{}, err
		}
		name = n
	}
	entries, err := s.rosters.DepartmentRoster(ctx, tenantID, departmentID, date)
	if err != nil {
		return Archive{}, err
	}
	pdf := buildRosterPDF(name, entries, date)
	return s.archive(ctx, tenantID, KindRosterPDF, func(path string) error {
		return pdf.OutputFileAndClose(path)
	})
}

func (s *Service) archive(ctx context.Context, tenantID, kind string, write func(path string) error) (Archive, error) {
	dir := filepath.Join(s.Dir, tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Archive{}, err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.pdf", kind, uuid.NewString()))
	if err := write(path); err != nil {
		return Archive{}, err
	}
	return s.store.InsertArchive(ctx, tenantID, kind, path)
}

// OpenArchive returns the stored file of a previously generated report.
func (s *Service) OpenArchive(ctx context.Context, tenantID, archiveID string) (Archive, *os.File, error) {
	archive, err := s.store.ArchiveByID(ctx, tenantID, archiveID)
	if err != nil {
		return Archive{}, nil, err
	}
	f, err := os.Open(archive.FilePath)
	if err != nil {
		return Archive{}, nil, err
	}
	return archive, f, nil
}

func (s *Service) JobRuns(ctx context.Context, tenantID string, filter JobRunFilter, limit, offset int) ([]JobRun, int, error) {
	total, err := s.store.CountJobRuns(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	runs, err := s.store.ListJobRuns(ctx, tenantID, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (s *Service) JobRun(ctx context.Context, tenantID, runID string) (JobRun, error) {
	return s.store.JobRunByID(ctx, tenantID, runID)
}

