package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/core"
	"workforce/internal/domain/shifts"
	"workforce/internal/platform/querier"
)

// DemoDirectory is satisfied by *core.Service.
type DemoDirectory interface {
	CreateDepartment(ctx context.Context, actor audit.Actor, name string) (core.Department, error)
	CreateEmployee(ctx context.Context, actor audit.Actor, in core.EmployeeInput) (core.Employee, error)
}

// DemoRotation is satisfied by *shifts.Service.
type DemoRotation interface {
	Create(ctx context.Context, actor audit.Actor, in shifts.ShiftInput) (shifts.Shift, error)
	AssignAnchor(ctx context.Context, actor audit.Actor, employeeID, shiftID string) (shifts.Assignment, error)
}

var demoDepartments = []string{"Produkcja", "Magazyn", "Utrzymanie ruchu"}

var demoShifts = []shifts.ShiftInput{
	{Name: "Ranna", StartTime: "06:00", EndTime: "14:00"},
	{Name: "Popołudniowa", StartTime: "14:00", EndTime: "22:00"},
	{Name: "Nocna", StartTime: "22:00", EndTime: "06:00"},
}

// SeedDemo fills an empty tenant with departments, a three-shift rotation per
// department and count fake employees spread across them. Creating each
// employee opens the mandatory compliance tracks.
func SeedDemo(ctx context.Context, db querier.Querier, tenantID string, count int, directory DemoDirectory, rotation DemoRotation) error {
	if count <= 0 {
		return nil
	}
	var existing int
	if err := db.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1", tenantID).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	actor := audit.System(tenantID)
	gofakeit.Seed(time.Now().UnixNano())

	type deptRotation struct {
		department core.Department
		shifts     []shifts.Shift
	}
	var depts []deptRotation
	for _, name := range demoDepartments {
		dep, err := directory.CreateDepartment(ctx, actor, name)
		if err != nil {
			return fmt.Errorf("seed department %s: %w", name, err)
		}
		entry := deptRotation{department: dep}
		for _, in := range demoShifts {
			depID := dep.ID
			in.DepartmentID = &depID
			shift, err := rotation.Create(ctx, actor, in)
			if err != nil {
				return fmt.Errorf("seed shift %s: %w", in.Name, err)
			}
			entry.shifts = append(entry.shifts, shift)
		}
		depts = append(depts, entry)
	}

	for i := 0; i < count; i++ {
		target := depts[i%len(depts)]
		first, last := gofakeit.FirstName(), gofakeit.LastName()
		hired := gofakeit.DateRange(time.Now().AddDate(-3, 0, 0), time.Now()).UTC().Truncate(24 * time.Hour)
		emp, err := directory.CreateEmployee(ctx, actor, core.EmployeeInput{
			EmployeeNumber: fmt.Sprintf("E%05d", i+1),
			FirstName:      first,
			LastName:       last,
			Email:          fmt.Sprintf("%s.%s.%d@demo.local", emailPart(first), emailPart(last), i+1),
			Phone:          gofakeit.Phone(),
			DepartmentID:   target.department.ID,
			HireDate:       &hired,
		})
		if err != nil {
			return fmt.Errorf("seed employee %d: %w", i+1, err)
		}
		anchor := target.shifts[gofakeit.Number(0, len(target.shifts)-1)]
		if _, err := rotation.AssignAnchor(ctx, actor, emp.ID, anchor.ID); err != nil {
			return fmt.Errorf("seed anchor for %s: %w", emp.ID, err)
		}
	}
	slog.Info("demo data seeded", "tenantId", tenantID, "employees", count)
	return nil
}

func emailPart(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}
