package compliance

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryMandatory Category = "MANDATORY"
	CategoryUDT       Category = "UDT"
	CategorySEP       Category = "SEP"
	CategoryDriving   Category = "DRIVING"
	CategoryOther     Category = "OTHER"
)

var Categories = []Category{
	CategoryMandatory,
	CategoryUDT,
	CategorySEP,
	CategoryDriving,
	CategoryOther,
}

const (
	NameSafetyTraining = "Szkolenie BHP"
	NameMedicalExam    = "Badania Lekarskie"
)

func ParseCategory(raw string) (Category, bool) {
	normalized := Category(strings.ToUpper(strings.TrimSpace(raw)))
	for _, c := range Categories {
		if c == normalized {
			return c, true
		}
	}
	return "", false
}

// IsProtectedName reports whether name is one of the tracks every employee must carry.
func IsProtectedName(name string) bool {
	name = strings.TrimSpace(name)
	return name == NameSafetyTraining || name == NameMedicalExam
}

type Record struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Category   Category  `json:"category"`
	Name       string    `json:"name"`
	IssueDate  time.Time `json:"issueDate"`
	Duration   Duration  `json:"duration"`
	ExpiryDate time.Time `json:"expiryDate"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// IsMandatory reports whether the record may never be deleted.
func (r Record) IsMandatory() bool {
	return r.Category == CategoryMandatory || IsProtectedName(r.Name)
}

// View is a record decorated with the values derived at read time.
type View struct {
	Record
	DaysLeft      int    `json:"daysLeft"`
	RemainingText string `json:"remainingText"`
}

func NewView(rec Record, now time.Time) View {
	rec = Refresh(rec, now)
	return View{
		Record:        rec,
		DaysLeft:      DaysRemaining(rec.ExpiryDate, now),
		RemainingText: FormatRemaining(rec.ExpiryDate, now),
	}
}

type CreateInput struct {
	EmployeeID string
	Category   Category
	Name       string
	IssueDate  time.Time
	Duration   Duration
}

// EditInput carries the fields to replace; nil fields keep their current value.
type EditInput struct {
	IssueDate *time.Time
	Duration  *Duration
}

func (in EditInput) Empty() bool {
	return in.IssueDate == nil && in.Duration == nil
}
