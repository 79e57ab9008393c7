package auth

const (
	RoleEmployee    = "Employee"
	RoleSupervisor  = "Supervisor"
	RoleHR          = "HR"
	RoleSystemAdmin = "SystemAdmin"
)

const (
	PermEmployeesRead     = "core.employees.read"
	PermEmployeesWrite    = "core.employees.write"
	PermOrgRead           = "core.org.read"
	PermOrgWrite          = "core.org.write"
	PermComplianceRead    = "compliance.read"
	PermComplianceWrite   = "compliance.write"
	PermShiftsRead        = "shifts.read"
	PermShiftsWrite       = "shifts.write"
	PermReportsRead       = "reports.read"
	PermAuditRead         = "audit.read"
	PermNotificationsRead = "notifications.read"
	PermJobsRun           = "jobs.run"
	PermSystemAdmin       = "admin.system"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermOrgRead,
	PermOrgWrite,
	PermComplianceRead,
	PermComplianceWrite,
	PermShiftsRead,
	PermShiftsWrite,
	PermReportsRead,
	PermAuditRead,
	PermNotificationsRead,
	PermJobsRun,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermOrgRead,
		PermShiftsRead,
		PermNotificationsRead,
	},
	RoleSupervisor: {
		PermEmployeesRead,
		PermOrgRead,
		PermComplianceRead,
		PermShiftsRead,
		PermShiftsWrite,
		PermReportsRead,
		PermNotificationsRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermOrgRead,
		PermOrgWrite,
		PermComplianceRead,
		PermComplianceWrite,
		PermShiftsRead,
		PermShiftsWrite,
		PermReportsRead,
		PermAuditRead,
		PermNotificationsRead,
		PermJobsRun,
	},
	RoleSystemAdmin: {
		PermSystemAdmin,
		PermAuditRead,
		PermJobsRun,
		PermNotificationsRead,
	},
}

// HasDefault reports whether role is granted permission by the seeded role map.
func HasDefault(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
