package shifts

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"workforce/internal/domain/audit"
)

const (
	ActionShiftCreate = "shift.create"
	ActionShiftUpdate = "shift.update"
	ActionShiftDelete = "shift.delete"
	ActionShiftAnchor = "shift.anchor"
)

// MaxScheduleWeeks caps how far ahead a schedule may be projected.
const MaxScheduleWeeks = 53

type Service struct {
	store    StoreAPI
	auditor  Auditor
	notifier AnchorNotifier
	now      Clock
}

func NewService(store StoreAPI, auditor Auditor) *Service {
	return &Service{store: store, auditor: auditor, now: time.Now}
}

func (s *Service) WithClock(clock Clock) *Service {
	s.now = clock
	return s
}

func (s *Service) WithNotifier(notifier AnchorNotifier) *Service {
	s.notifier = notifier
	return s
}

func (s *Service) List(ctx context.Context, tenantID, departmentID string) ([]Shift, error) {
	shifts, err := s.store.ListShifts(ctx, tenantID, departmentID)
	if err != nil {
		return nil, err
	}
	return SortByStart(shifts), nil
}

func (s *Service) Get(ctx context.Context, tenantID, shiftID string) (Shift, error) {
	return s.store.GetShift(ctx, tenantID, shiftID)
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in ShiftInput) (Shift, error) {
	in = normalize(in)
	if err := ValidateInput(in); err != nil {
		return Shift{}, err
	}
	shift, err := s.store.CreateShift(ctx, actor.TenantID, in)
	if err != nil {
		return Shift{}, err
	}
	s.record(ctx, actor, ActionShiftCreate, shift.ID, "", "created shift "+shift.Name, nil, shift)
	return shift, nil
}

func (s *Service) Update(ctx context.Context, actor audit.Actor, shiftID string, in ShiftInput) (Shift, error) {
	in = normalize(in)
	if err := ValidateInput(in); err != nil {
		return Shift{}, err
	}
	before, err := s.store.GetShift(ctx, actor.TenantID, shiftID)
	if err != nil {
		return Shift{}, err
	}
	shift, err := s.store.UpdateShift(ctx, actor.TenantID, shiftID, in)
	if err != nil {
		return Shift{}, err
	}
	s.record(ctx, actor, ActionShiftUpdate, shift.ID, "", "updated shift "+shift.Name, before, shift)
	return shift, nil
}

func (s *Service) Delete(ctx context.Context, actor audit.Actor, shiftID string) error {
	before, err := s.store.GetShift(ctx, actor.TenantID, shiftID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteShift(ctx, actor.TenantID, shiftID); err != nil {
		return err
	}
	s.record(ctx, actor, ActionShiftDelete, shiftID, "", "deleted shift "+before.Name, before, nil)
	return nil
}

// AssignAnchor sets the employee's nominal shift. The shift must belong to the
// employee's department, or be a general shift when the employee has none.
// An empty shiftID clears the anchor.
func (s *Service) AssignAnchor(ctx context.Context, actor audit.Actor, employeeID, shiftID string) (Assignment, error) {
	assignment, err := s.store.Assignment(ctx, actor.TenantID, employeeID)
	if err != nil {
		return Assignment{}, err
	}
	var shift Shift
	if shiftID != "" {
		shift, err = s.store.GetShift(ctx, actor.TenantID, shiftID)
		if err != nil {
			return Assignment{}, err
		}
		if len(DepartmentShifts([]Shift{shift}, assignment.DepartmentID)) == 0 {
			return Assignment{}, &ValidationError{Field: "shiftId", Reason: "does not belong to the employee's department"}
		}
	}
	if err := s.store.SetAnchor(ctx, actor.TenantID, employeeID, shiftID); err != nil {
		return Assignment{}, err
	}
	previous := assignment.AnchorShiftID
	assignment.AnchorShiftID = shiftID
	s.record(ctx, actor, ActionShiftAnchor, employeeID, employeeID, "anchor shift "+orDash(previous)+" -> "+orDash(shiftID), nil, assignment)
	if s.notifier != nil && previous != shiftID {
		if err := s.notifier.NotifyAnchorChange(ctx, actor.TenantID, employeeID, shift.Name); err != nil {
			slog.Warn("shift anchor notification failed", "employeeId", employeeID, "err", err)
		}
	}
	return assignment, nil
}

// WeekShift resolves the shift the employee works in the ISO week containing date.
func (s *Service) WeekShift(ctx context.Context, tenantID, employeeID string, date time.Time) (WeekShift, error) {
	schedule, err := s.Schedule(ctx, tenantID, employeeID, date, 1)
	if err != nil {
		return WeekShift{}, err
	}
	return schedule[0], nil
}

// Schedule projects the employee's rotation over the given number of weeks.
func (s *Service) Schedule(ctx context.Context, tenantID, employeeID string, from time.Time, weeks int) ([]WeekShift, error) {
	if weeks < 1 || weeks > MaxScheduleWeeks {
		return nil, &ValidationError{Field: "weeks", Reason: "must be between 1 and 53"}
	}
	if from.IsZero() {
		from = s.now()
	}
	assignment, err := s.store.Assignment(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	shifts, err := s.departmentShifts(ctx, tenantID, assignment.DepartmentID)
	if err != nil {
		return nil, err
	}
	return Schedule(shifts, assignment.AnchorShiftID, from, weeks), nil
}

// DepartmentRoster resolves the week's shift for every active employee of the department.
func (s *Service) DepartmentRoster(ctx context.Context, tenantID, departmentID string, date time.Time) ([]RosterEntry, error) {
	if date.IsZero() {
		date = s.now()
	}
	assignments, err := s.store.DepartmentAssignments(ctx, tenantID, departmentID)
	if err != nil {
		return nil, err
	}
	shifts, err := s.departmentShifts(ctx, tenantID, departmentID)
	if err != nil {
		return nil, err
	}
	return Roster(assignments, shifts, date), nil
}

func (s *Service) departmentShifts(ctx context.Context, tenantID, departmentID string) ([]Shift, error) {
	all, err := s.store.ListShifts(ctx, tenantID, departmentID)
	if err != nil {
		return nil, err
	}
	return DepartmentShifts(all, departmentID), nil
}

func (s *Service) record(ctx context.Context, actor audit.Actor, action, entityID, targetEmployeeID, details string, before, after any) {
	if s.auditor == nil {
		return
	}
	entry := audit.Entry{
		Action:           action,
		EntityType:       "shift",
		EntityID:         entityID,
		TargetEmployeeID: targetEmployeeID,
		Details:          details,
		Before:           before,
		After:            after,
	}
	if action == ActionShiftAnchor {
		entry.EntityType = "employee"
	}
	if err := s.auditor.Record(ctx, actor, entry); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

func normalize(in ShiftInput) ShiftInput {
	in.Name = strings.TrimSpace(in.Name)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	if in.DepartmentID != nil && strings.TrimSpace(*in.DepartmentID) == "" {
		in.DepartmentID = nil
	}
	return in
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
