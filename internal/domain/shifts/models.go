package shifts

import "time"

// Shift is a wall-clock shift definition. A nil DepartmentID marks a general
// shift that is not scoped to any department.
type Shift struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	DepartmentID *string   `json:"departmentId"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// InDepartment reports whether the shift belongs to the given department.
func (s Shift) InDepartment(departmentID string) bool {
	return s.DepartmentID != nil && *s.DepartmentID == departmentID
}

// Assignment ties an employee to a department and a nominal starting shift.
type Assignment struct {
	EmployeeID    string `json:"employeeId"`
	EmployeeName  string `json:"employeeName,omitempty"`
	DepartmentID  string `json:"departmentId"`
	AnchorShiftID string `json:"anchorShiftId"`
}

type RosterEntry struct {
	Assignment
	Year     int    `json:"year"`
	Week     int    `json:"week"`
	Shift    *Shift `json:"shift"`
	Assigned bool   `json:"assigned"`
}

type WeekShift struct {
	Year      int       `json:"year"`
	Week      int       `json:"week"`
	WeekStart time.Time `json:"weekStart"`
	Shift     *Shift    `json:"shift"`
}

type ShiftInput struct {
	Name         string  `json:"name"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	DepartmentID *string `json:"departmentId"`
}
