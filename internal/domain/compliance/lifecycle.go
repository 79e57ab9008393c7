package compliance

import (
	"fmt"
	"strings"
	"time"
)

const (
	ActionCreate = "compliance.create"
	ActionEdit   = "compliance.edit"
	ActionRenew  = "compliance.renew"
	ActionDelete = "compliance.delete"
)

// Change describes a lifecycle transition in enough detail to build an audit entry.
type Change struct {
	Action       string     `json:"action"`
	RecordID     string     `json:"recordId"`
	EmployeeID   string     `json:"employeeId"`
	Name         string     `json:"name"`
	Category     Category   `json:"category"`
	OldIssueDate *time.Time `json:"oldIssueDate,omitempty"`
	NewIssueDate *time.Time `json:"newIssueDate,omitempty"`
	OldDuration  string     `json:"oldDuration,omitempty"`
	NewDuration  string     `json:"newDuration,omitempty"`
	OldExpiry    *time.Time `json:"oldExpiry,omitempty"`
	NewExpiry    *time.Time `json:"newExpiry,omitempty"`
}

func (c Change) Details() string {
	switch c.Action {
	case ActionCreate:
		return fmt.Sprintf("added %q valid until %s", c.Name, formatDate(c.NewExpiry))
	case ActionRenew:
		return fmt.Sprintf("renewed %q: expiry %s -> %s", c.Name, formatDate(c.OldExpiry), formatDate(c.NewExpiry))
	case ActionDelete:
		return fmt.Sprintf("deleted %q (expired %s)", c.Name, formatDate(c.OldExpiry))
	}

	parts := []string{fmt.Sprintf("edited %q", c.Name)}
	if !sameDate(c.OldIssueDate, c.NewIssueDate) {
		parts = append(parts, fmt.Sprintf("issue date %s -> %s", formatDate(c.OldIssueDate), formatDate(c.NewIssueDate)))
	}
	if c.OldDuration != c.NewDuration {
		parts = append(parts, fmt.Sprintf("duration %s -> %s", c.OldDuration, c.NewDuration))
	}
	parts = append(parts, fmt.Sprintf("expiry %s -> %s", formatDate(c.OldExpiry), formatDate(c.NewExpiry)))
	return strings.Join(parts, ", ")
}

func Create(in CreateInput, now time.Time) (Record, error) {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return Record{}, &ValidationError{Field: "employeeId", Reason: "is required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return Record{}, &ValidationError{Field: "name", Reason: "is required"}
	}
	if in.IssueDate.IsZero() {
		return Record{}, &ValidationError{Field: "issueDate", Reason: "is required"}
	}
	category := in.Category
	if category == "" {
		category = CategoryOther
	}
	if _, ok := ParseCategory(string(category)); !ok {
		return Record{}, &ValidationError{Field: "category", Reason: "is not a known category"}
	}
	switch {
	case category == CategoryMandatory && !IsProtectedName(in.Name):
		return Record{}, &ValidationError{Field: "name", Reason: "must name a mandatory track"}
	case category != CategoryMandatory && IsProtectedName(in.Name):
		return Record{}, &ValidationError{Field: "category", Reason: "must be MANDATORY for this record"}
	}
	duration := in.Duration
	if duration.IsZero() {
		duration = DefaultDuration()
	}

	issue := Midnight(in.IssueDate)
	expiry, err := CalculateExpiry(issue, duration)
	if err != nil {
		return Record{}, err
	}
	return Record{
		EmployeeID: in.EmployeeID,
		Category:   category,
		Name:       strings.TrimSpace(in.Name),
		IssueDate:  issue,
		Duration:   duration,
		ExpiryDate: expiry,
		Status:     Classify(expiry, now),
	}, nil
}

// CreatedChange builds the audit payload for a freshly persisted record.
func CreatedChange(rec Record) Change {
	change := baseChange(ActionCreate, rec)
	change.NewIssueDate = timePtr(rec.IssueDate)
	change.NewDuration = rec.Duration.String()
	change.NewExpiry = timePtr(rec.ExpiryDate)
	return change
}

func Edit(rec Record, in EditInput, now time.Time) (Record, Change, error) {
	change := baseChange(ActionEdit, rec)
	change.OldIssueDate = timePtr(rec.IssueDate)
	change.OldDuration = rec.Duration.String()
	change.OldExpiry = timePtr(rec.ExpiryDate)

	next := rec
	if in.IssueDate != nil {
		if in.IssueDate.IsZero() {
			return rec, Change{}, &InvalidDateError{Field: "issueDate"}
		}
		next.IssueDate = Midnight(*in.IssueDate)
	}
	if in.Duration != nil {
		if in.Duration.IsZero() {
			return rec, Change{}, &InvalidDurationError{}
		}
		next.Duration = *in.Duration
	}
	if next.Duration.IsZero() {
		next.Duration = DefaultDuration()
	}

	expiry, err := CalculateExpiry(next.IssueDate, next.Duration)
	if err != nil {
		return rec, Change{}, err
	}
	next.ExpiryDate = expiry
	next.Status = Classify(expiry, now)

	change.NewIssueDate = timePtr(next.IssueDate)
	change.NewDuration = next.Duration.String()
	change.NewExpiry = timePtr(next.ExpiryDate)
	return next, change, nil
}

// Renew restarts the record from today, keeping its duration.
func Renew(rec Record, now time.Time) (Record, Change, error) {
	change := baseChange(ActionRenew, rec)
	change.OldIssueDate = timePtr(rec.IssueDate)
	change.OldDuration = rec.Duration.String()
	change.OldExpiry = timePtr(rec.ExpiryDate)

	next := rec
	if next.Duration.IsZero() {
		next.Duration = DefaultDuration()
	}
	next.IssueDate = Midnight(now)
	expiry, err := CalculateExpiry(next.IssueDate, next.Duration)
	if err != nil {
		return rec, Change{}, err
	}
	next.ExpiryDate = expiry
	next.Status = Classify(expiry, now)

	change.NewIssueDate = timePtr(next.IssueDate)
	change.NewDuration = next.Duration.String()
	change.NewExpiry = timePtr(next.ExpiryDate)
	return next, change, nil
}

// CheckDelete returns a ForbiddenError for records that must stay on file.
func CheckDelete(rec Record) error {
	if rec.IsMandatory() {
		return &ForbiddenError{RecordID: rec.ID, Name: rec.Name}
	}
	return nil
}

func DeletedChange(rec Record) Change {
	change := baseChange(ActionDelete, rec)
	change.OldIssueDate = timePtr(rec.IssueDate)
	change.OldDuration = rec.Duration.String()
	change.OldExpiry = timePtr(rec.ExpiryDate)
	return change
}

// Refresh recomputes the derived status; the persisted status is only a cache.
func Refresh(rec Record, now time.Time) Record {
	rec.Status = Classify(rec.ExpiryDate, now)
	return rec
}

// MandatoryInputs returns the two tracks created for every onboarded employee.
func MandatoryInputs(employeeID string, issueDate time.Time) []CreateInput {
	return []CreateInput{
		{EmployeeID: employeeID, Category: CategoryMandatory, Name: NameSafetyTraining, IssueDate: issueDate, Duration: DefaultDuration()},
		{EmployeeID: employeeID, Category: CategoryMandatory, Name: NameMedicalExam, IssueDate: issueDate, Duration: DefaultDuration()},
	}
}

func baseChange(action string, rec Record) Change {
	return Change{
		Action:     action,
		RecordID:   rec.ID,
		EmployeeID: rec.EmployeeID,
		Name:       rec.Name,
		Category:   rec.Category,
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
