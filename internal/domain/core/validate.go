package core

import (
	"net/mail"
	"strings"
)

func normalizeEmployee(in EmployeeInput) EmployeeInput {
	in.EmployeeNumber = strings.TrimSpace(in.EmployeeNumber)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Position = strings.TrimSpace(in.Position)
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.DepartmentID = strings.TrimSpace(in.DepartmentID)
	in.Status = strings.TrimSpace(in.Status)
	if in.Status == "" {
		in.Status = EmployeeStatusActive
	}
	return in
}

func validateEmployee(in EmployeeInput) error {
	if in.FirstName == "" {
		return &ValidationError{Field: "firstName", Reason: "is required"}
	}
	if in.LastName == "" {
		return &ValidationError{Field: "lastName", Reason: "is required"}
	}
	if in.Email == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return &ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	if in.Status != EmployeeStatusActive && in.Status != EmployeeStatusInactive {
		return &ValidationError{Field: "status", Reason: "must be active or inactive"}
	}
	if in.NationalID != "" && !validNationalID(in.NationalID) {
		return &ValidationError{Field: "nationalId", Reason: "must be 11 digits"}
	}
	return nil
}

// validNationalID checks the PESEL shape and its weighted checksum.
func validNationalID(raw string) bool {
	if len(raw) != 11 {
		return false
	}
	weights := [10]int{1, 3, 7, 9, 1, 3, 7, 9, 1, 3}
	sum := 0
	for i := 0; i < 11; i++ {
		c := raw[i]
		if c < '0' || c > '9' {
			return false
		}
		if i < 10 {
			sum += int(c-'0') * weights[i]
		}
	}
	return (10-sum%10)%10 == int(raw[10]-'0')
}

func validateDepartmentName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Reason: "is required"}
	}
	if len(name) > 120 {
		return "", &ValidationError{Field: "name", Reason: "is too long"}
	}
	return name, nil
}
