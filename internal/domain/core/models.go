package core

import "time"

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

type Employee struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	EmployeeNumber string     `json:"employeeNumber"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Position       string     `json:"position"`
	NationalID     string     `json:"nationalId,omitempty"`
	DepartmentID   string     `json:"departmentId"`
	ShiftID        string     `json:"shiftId"`
	HireDate       *time.Time `json:"hireDate,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type EmployeeInput struct {
	EmployeeNumber string     `json:"employeeNumber"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Position       string     `json:"position"`
	NationalID     string     `json:"nationalId"`
	DepartmentID   string     `json:"departmentId"`
	HireDate       *time.Time `json:"hireDate"`
	Status         string     `json:"status"`
}

type EmployeeFilter struct {
	DepartmentID string
	Status       string
	Search       string
}

type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	EmployeeCount int       `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
