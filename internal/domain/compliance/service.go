package compliance

import (
	"context"
	"log/slog"
	"time"

	"workforce/internal/domain/audit"
)

const entityType = "compliance_record"

type Service struct {
	store   StoreAPI
	auditor Auditor
	now     Clock
}

func NewService(store StoreAPI, auditor Auditor) *Service {
	return &Service{store: store, auditor: auditor, now: time.Now}
}

// WithClock replaces the time source; used by tests and the CLI.
func (s *Service) WithClock(clock Clock) *Service {
	s.now = clock
	return s
}

func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) ListForEmployee(ctx context.Context, tenantID, employeeID string) ([]View, error) {
	records, err := s.store.ListByEmployee(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]View, 0, len(records))
	for _, rec := range records {
		out = append(out, NewView(rec, now))
	}
	return out, nil
}

// ListAll returns every record of the tenant with its status recomputed.
func (s *Service) ListAll(ctx context.Context, tenantID string) ([]Record, error) {
	records, err := s.store.ListAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range records {
		records[i] = Refresh(records[i], now)
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, tenantID, recordID string) (View, error) {
	rec, err := s.store.Get(ctx, tenantID, recordID)
	if err != nil {
		return View{}, err
	}
	return NewView(rec, s.now()), nil
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in CreateInput) (Record, error) {
	if err := s.requireEmployee(ctx, actor.TenantID, in.EmployeeID); err != nil {
		return Record{}, err
	}
	rec, err := Create(in, s.now())
	if err != nil {
		return Record{}, err
	}
	if rec.IsMandatory() {
		exists, err := s.store.HasRecordNamed(ctx, actor.TenantID, rec.EmployeeID, rec.Name)
		if err != nil {
			return Record{}, err
		}
		if exists {
			return Record{}, &ValidationError{Field: "name", Reason: "is already tracked for this employee"}
		}
	}
	rec, err = s.store.Insert(ctx, actor.TenantID, rec)
	if err != nil {
		return Record{}, err
	}
	s.record(ctx, actor, CreatedChange(rec), nil, rec)
	return rec, nil
}

func (s *Service) Edit(ctx context.Context, actor audit.Actor, recordID string, in EditInput) (Record, error) {
	current, err := s.store.Get(ctx, actor.TenantID, recordID)
	if err != nil {
		return Record{}, err
	}
	next, change, err := Edit(current, in, s.now())
	if err != nil {
		return Record{}, err
	}
	next, err = s.store.Update(ctx, actor.TenantID, next)
	if err != nil {
		return Record{}, err
	}
	s.record(ctx, actor, change, current, next)
	return next, nil
}

func (s *Service) Renew(ctx context.Context, actor audit.Actor, recordID string) (Record, error) {
	current, err := s.store.Get(ctx, actor.TenantID, recordID)
	if err != nil {
		return Record{}, err
	}
	next, change, err := Renew(current, s.now())
	if err != nil {
		return Record{}, err
	}
	next, err = s.store.Update(ctx, actor.TenantID, next)
	if err != nil {
		return Record{}, err
	}
	s.record(ctx, actor, change, current, next)
	return next, nil
}

func (s *Service) Delete(ctx context.Context, actor audit.Actor, recordID string) error {
	current, err := s.store.Get(ctx, actor.TenantID, recordID)
	if err != nil {
		return err
	}
	if err := CheckDelete(current); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, actor.TenantID, recordID); err != nil {
		return err
	}
	s.record(ctx, actor, DeletedChange(current), current, nil)
	return nil
}

// EnsureMandatory creates the safety training and medical exam tracks that
// the employee does not carry yet.
func (s *Service) EnsureMandatory(ctx context.Context, actor audit.Actor, employeeID string, issueDate time.Time) ([]Record, error) {
	if issueDate.IsZero() {
		issueDate = s.now()
	}
	var created []Record
	for _, in := range MandatoryInputs(employeeID, issueDate) {
		exists, err := s.store.HasRecordNamed(ctx, actor.TenantID, employeeID, in.Name)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		rec, err := s.Create(ctx, actor, in)
		if err != nil {
			return created, err
		}
		created = append(created, rec)
	}
	return created, nil
}

func (s *Service) requireEmployee(ctx context.Context, tenantID, employeeID string) error {
	if employeeID == "" {
		return &ValidationError{Field: "employeeId", Reason: "is required"}
	}
	exists, err := s.store.EmployeeExists(ctx, tenantID, employeeID)
	if err != nil {
		return err
	}
	if !exists {
		return &NotFoundError{Entity: "employee", ID: employeeID}
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor audit.Actor, change Change, before, after any) {
	if s.auditor == nil {
		return
	}
	entry := audit.Entry{
		Action:           change.Action,
		EntityType:       entityType,
		EntityID:         change.RecordID,
		TargetEmployeeID: change.EmployeeID,
		Details:          change.Details(),
		Before:           before,
		After:            after,
	}
	if err := s.auditor.Record(ctx, actor, entry); err != nil {
		slog.Warn("audit record failed", "action", change.Action, "recordId", change.RecordID, "err", err)
	}
}
