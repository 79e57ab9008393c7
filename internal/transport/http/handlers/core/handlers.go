package corehandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/compliance"
	"workforce/internal/domain/core"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type EmployeeService interface {
	ListEmployees(ctx context.Context, tenantID string, filter core.EmployeeFilter, limit, offset int) ([]core.Employee, int, error)
	GetEmployee(ctx context.Context, tenantID, employeeID string) (core.Employee, error)
	CreateEmployee(ctx context.Context, actor audit.Actor, in core.EmployeeInput) (core.Employee, error)
	UpdateEmployee(ctx context.Context, actor audit.Actor, employeeID string, in core.EmployeeInput) (core.Employee, error)
	ListDepartments(ctx context.Context, tenantID string) ([]core.Department, error)
	CreateDepartment(ctx context.Context, actor audit.Actor, name string) (core.Department, error)
	RenameDepartment(ctx context.Context, actor audit.Actor, departmentID, name string) (core.Department, error)
	DeleteDepartment(ctx context.Context, actor audit.Actor, departmentID string) error
}

type ComplianceService interface {
	ListForEmployee(ctx context.Context, tenantID, employeeID string) ([]compliance.View, error)
	Create(ctx context.Context, actor audit.Actor, in compliance.CreateInput) (compliance.Record, error)
	EnsureMandatory(ctx context.Context, actor audit.Actor, employeeID string, issueDate time.Time) ([]compliance.Record, error)
}

type Handler struct {
	Employees  EmployeeService
	Compliance ComplianceService
	Perms      middleware.PermissionStore
	Keys       middleware.IdempotencyKeys
}

func NewHandler(employees EmployeeService, compliance ComplianceService, perms middleware.PermissionStore, keys middleware.IdempotencyKeys) *Handler {
	return &Handler{Employees: employees, Compliance: compliance, Perms: perms, Keys: keys}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	idempotent := middleware.Idempotent(h.Keys)
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms), idempotent).Post("/", h.handleCreateEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleGetEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/", h.handleUpdateEmployee)
			r.With(middleware.RequirePermission(auth.PermComplianceRead, h.Perms)).Get("/compliance", h.handleListCompliance)
			r.With(middleware.RequirePermission(auth.PermComplianceWrite, h.Perms), idempotent).Post("/compliance", h.handleCreateCompliance)
			r.With(middleware.RequirePermission(auth.PermComplianceWrite, h.Perms)).Post("/onboarding", h.handleOnboarding)
		})
	})
	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/", h.handleListDepartments)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Post("/", h.handleCreateDepartment)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Put("/{departmentID}", h.handleRenameDepartment)
		r.With(middleware.RequirePermission(auth.PermOrgWrite, h.Perms)).Delete("/{departmentID}", h.handleDeleteDepartment)
	})
}

type employeeRequest struct {
	EmployeeNumber string `json:"employeeNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Position       string `json:"position"`
	NationalID     string `json:"nationalId"`
	DepartmentID   string `json:"departmentId"`
	HireDate       string `json:"hireDate"`
	Status         string `json:"status"`
}

func (p employeeRequest) input(v *shared.Validator) core.EmployeeInput {
	v.Required("firstName", p.FirstName, "is required")
	v.Required("lastName", p.LastName, "is required")
	v.Required("email", p.Email, "is required")
	v.Enum("status", p.Status, []string{core.EmployeeStatusActive, core.EmployeeStatusInactive}, "must be active or inactive")
	in := core.EmployeeInput{
		EmployeeNumber: p.EmployeeNumber,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Phone:          p.Phone,
		Position:       p.Position,
		NationalID:     p.NationalID,
		DepartmentID:   p.DepartmentID,
		Status:         strings.ToLower(strings.TrimSpace(p.Status)),
	}
	if strings.TrimSpace(p.HireDate) != "" {
		if hired, ok := v.Date("hireDate", p.HireDate); ok {
			in.HireDate = &hired
		}
	}
	return in
}

// present hides the national id from everyone but HR.
func present(emp core.Employee, user auth.UserContext) core.Employee {
	if user.RoleName != auth.RoleHR {
		emp.NationalID = ""
	}
	return emp
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	filter := core.EmployeeFilter{
		DepartmentID: r.URL.Query().Get("departmentId"),
		Status:       r.URL.Query().Get("status"),
		Search:       r.URL.Query().Get("q"),
	}
	employees, total, err := h.Employees.ListEmployees(r.Context(), user.TenantID, filter, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, err, "employee_list_failed", "failed to list employees", reqID)
		return
	}
	for i := range employees {
		employees[i] = present(employees[i], user)
	}

	shared.WriteTotal(w, total)
	api.Success(w, employees, reqID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	emp, err := h.Employees.GetEmployee(r.Context(), user.TenantID, chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.WriteError(w, err, "employee_get_failed", "failed to load employee", reqID)
		return
	}
	api.Success(w, present(emp, user), reqID)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	validator := shared.NewValidator()
	in := payload.input(validator)
	if validator.Reject(w, reqID) {
		return
	}

	emp, err := h.Employees.CreateEmployee(r.Context(), shared.Actor(r, user), in)
	if err != nil {
		shared.WriteError(w, err, "employee_create_failed", "failed to create employee", reqID)
		return
	}
	api.Created(w, present(emp, user), reqID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	validator := shared.NewValidator()
	in := payload.input(validator)
	if validator.Reject(w, reqID) {
		return
	}

	emp, err := h.Employees.UpdateEmployee(r.Context(), shared.Actor(r, user), chi.URLParam(r, "employeeID"), in)
	if err != nil {
		shared.WriteError(w, err, "employee_update_failed", "failed to update employee", reqID)
		return
	}
	api.Success(w, present(emp, user), reqID)
}

func (h *Handler) handleListCompliance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if _, err := h.Employees.GetEmployee(r.Context(), user.TenantID, employeeID); err != nil {
		shared.WriteError(w, err, "employee_get_failed", "failed to load employee", reqID)
		return
	}
	views, err := h.Compliance.ListForEmployee(r.Context(), user.TenantID, employeeID)
	if err != nil {
		shared.WriteError(w, err, "compliance_list_failed", "failed to list compliance records", reqID)
		return
	}
	if views == nil {
		views = []compliance.View{}
	}
	api.Success(w, views, reqID)
}

type complianceRequest struct {
	Category  string              `json:"category"`
	Name      string              `json:"name"`
	IssueDate string              `json:"issueDate"`
	Duration  compliance.Duration `json:"duration"`
}

func (h *Handler) handleCreateCompliance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload complianceRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if compliance.IsClientError(err) {
			shared.WriteError(w, err, "invalid_payload", "invalid request payload", reqID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	validator := shared.NewValidator()
	validator.Required("name", payload.Name, "is required")
	category := compliance.CategoryOther
	if strings.TrimSpace(payload.Category) != "" {
		parsed, ok := compliance.ParseCategory(payload.Category)
		if !ok {
			validator.Add("category", "is not a known category")
		}
		category = parsed
	}
	issueDate, err := compliance.ParseDate("issueDate", payload.IssueDate)
	if err != nil {
		validator.Add("issueDate", "must be a valid date in YYYY-MM-DD format")
	}
	if validator.Reject(w, reqID) {
		return
	}

	rec, err := h.Compliance.Create(r.Context(), shared.Actor(r, user), compliance.CreateInput{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Category:   category,
		Name:       payload.Name,
		IssueDate:  issueDate,
		Duration:   payload.Duration,
	})
	if err != nil {
		shared.WriteError(w, err, "compliance_create_failed", "failed to create compliance record", reqID)
		return
	}
	api.Created(w, rec, reqID)
}

// handleOnboarding opens any missing mandatory tracks, issued today unless a
// date is given. Running it twice creates nothing new.
func (h *Handler) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var issueDate time.Time
	if raw := r.URL.Query().Get("issueDate"); raw != "" {
		parsed, err := compliance.ParseDate("issueDate", raw)
		if err != nil {
			shared.WriteError(w, err, "invalid_payload", "invalid issue date", reqID)
			return
		}
		issueDate = parsed
	}

	employeeID := chi.URLParam(r, "employeeID")
	created, err := h.Compliance.EnsureMandatory(r.Context(), shared.Actor(r, user), employeeID, issueDate)
	if err != nil {
		shared.WriteError(w, err, "onboarding_failed", "failed to create mandatory records", reqID)
		return
	}
	if created == nil {
		created = []compliance.Record{}
	}
	api.Success(w, created, reqID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	departments, err := h.Employees.ListDepartments(r.Context(), user.TenantID)
	if err != nil {
		shared.WriteError(w, err, "department_list_failed", "failed to list departments", reqID)
		return
	}
	if departments == nil {
		departments = []core.Department{}
	}
	api.Success(w, departments, reqID)
}

type departmentRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	dept, err := h.Employees.CreateDepartment(r.Context(), shared.Actor(r, user), payload.Name)
	if err != nil {
		shared.WriteError(w, err, "department_create_failed", "failed to create department", reqID)
		return
	}
	api.Created(w, dept, reqID)
}

func (h *Handler) handleRenameDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	dept, err := h.Employees.RenameDepartment(r.Context(), shared.Actor(r, user), chi.URLParam(r, "departmentID"), payload.Name)
	if err != nil {
		shared.WriteError(w, err, "department_update_failed", "failed to update department", reqID)
		return
	}
	api.Success(w, dept, reqID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	if err := h.Employees.DeleteDepartment(r.Context(), shared.Actor(r, user), chi.URLParam(r, "departmentID")); err != nil {
		shared.WriteError(w, err, "department_delete_failed", "failed to delete department", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}
