package shiftshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/core"
	"workforce/internal/domain/shifts"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, tenantID, departmentID string) ([]shifts.Shift, error)
	Get(ctx context.Context, tenantID, shiftID string) (shifts.Shift, error)
	Create(ctx context.Context, actor audit.Actor, in shifts.ShiftInput) (shifts.Shift, error)
	Update(ctx context.Context, actor audit.Actor, shiftID string, in shifts.ShiftInput) (shifts.Shift, error)
	Delete(ctx context.Context, actor audit.Actor, shiftID string) error
	AssignAnchor(ctx context.Context, actor audit.Actor, employeeID, shiftID string) (shifts.Assignment, error)
	WeekShift(ctx context.Context, tenantID, employeeID string, date time.Time) (shifts.WeekShift, error)
	Schedule(ctx context.Context, tenantID, employeeID string, from time.Time, weeks int) ([]shifts.WeekShift, error)
	DepartmentRoster(ctx context.Context, tenantID, departmentID string, date time.Time) ([]shifts.RosterEntry, error)
}

type EmployeeLookup interface {
	GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (core.Employee, error)
}

type Handler struct {
	Service   Service
	Employees EmployeeLookup
	Perms     middleware.PermissionStore
}

func NewHandler(service Service, employees EmployeeLookup, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Employees: employees, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/shifts", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermShiftsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermShiftsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermShiftsRead, h.Perms)).Get("/week", h.handleWeek)
		r.With(middleware.RequirePermission(auth.PermShiftsRead, h.Perms)).Get("/schedule", h.handleSchedule)
		r.With(middleware.RequirePermission(auth.PermShiftsRead, h.Perms)).Get("/roster", h.handleRoster)
		r.With(middleware.RequirePermission(auth.PermShiftsWrite, h.Perms)).Put("/assignments/{employeeID}", h.handleAssignAnchor)
		r.Route("/{shiftID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermShiftsRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermShiftsWrite, h.Perms)).Put("/", h.handleUpdate)
			r.With(middleware.RequirePermission(auth.PermShiftsWrite, h.Perms)).Delete("/", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	list, err := h.Service.List(r.Context(), user.TenantID, r.URL.Query().Get("departmentId"))
	if err != nil {
		shared.WriteError(w, err, "shift_list_failed", "failed to list shifts", reqID)
		return
	}
	if list == nil {
		list = []shifts.Shift{}
	}
	api.Success(w, list, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	shift, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "shiftID"))
	if err != nil {
		shared.WriteError(w, err, "shift_get_failed", "failed to load shift", reqID)
		return
	}
	api.Success(w, shift, reqID)
}

func decodeShift(w http.ResponseWriter, r *http.Request, reqID string) (shifts.ShiftInput, bool) {
	var in shifts.ShiftInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return in, false
	}
	validator := shared.NewValidator()
	validator.Required("name", in.Name, "is required")
	validator.Required("startTime", in.StartTime, "is required")
	validator.Required("endTime", in.EndTime, "is required")
	if validator.Reject(w, reqID) {
		return in, false
	}
	if in.DepartmentID != nil && strings.TrimSpace(*in.DepartmentID) == "" {
		in.DepartmentID = nil
	}
	return in, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	in, ok := decodeShift(w, r, reqID)
	if !ok {
		return
	}
	shift, err := h.Service.Create(r.Context(), shared.Actor(r, user), in)
	if err != nil {
		shared.WriteError(w, err, "shift_create_failed", "failed to create shift", reqID)
		return
	}
	api.Created(w, shift, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	in, ok := decodeShift(w, r, reqID)
	if !ok {
		return
	}
	shift, err := h.Service.Update(r.Context(), shared.Actor(r, user), chi.URLParam(r, "shiftID"), in)
	if err != nil {
		shared.WriteError(w, err, "shift_update_failed", "failed to update shift", reqID)
		return
	}
	api.Success(w, shift, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	if err := h.Service.Delete(r.Context(), shared.Actor(r, user), chi.URLParam(r, "shiftID")); err != nil {
		shared.WriteError(w, err, "shift_delete_failed", "failed to delete shift", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleAssignAnchor(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		ShiftID string `json:"shiftId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	assignment, err := h.Service.AssignAnchor(r.Context(), shared.Actor(r, user), chi.URLParam(r, "employeeID"), strings.TrimSpace(payload.ShiftID))
	if err != nil {
		shared.WriteError(w, err, "shift_assign_failed", "failed to assign shift", reqID)
		return
	}
	api.Success(w, assignment, reqID)
}

// targetEmployee picks the employee a rotation query is about. Plain employees
// may only look at their own rotation.
func (h *Handler) targetEmployee(r *http.Request, user auth.UserContext, v *shared.Validator) (string, error) {
	requested := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if user.RoleName != auth.RoleEmployee && requested != "" {
		return requested, nil
	}
	if h.Employees == nil {
		v.Add("employeeId", "is required")
		return "", nil
	}
	self, err := h.Employees.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		return "", err
	}
	return self.ID, nil
}

func queryDate(v *shared.Validator, r *http.Request, field string) time.Time {
	raw := strings.TrimSpace(r.URL.Query().Get(field))
	if raw == "" {
		return time.Time{}
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return time.Time{}
	}
	return parsed
}

func (h *Handler) handleWeek(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	validator := shared.NewValidator()
	date := queryDate(validator, r, "date")
	employeeID, err := h.targetEmployee(r, user, validator)
	if err != nil {
		shared.WriteError(w, err, "shift_week_failed", "failed to resolve shift", reqID)
		return
	}
	if validator.Reject(w, reqID) {
		return
	}

	week, err := h.Service.WeekShift(r.Context(), user.TenantID, employeeID, date)
	if err != nil {
		shared.WriteError(w, err, "shift_week_failed", "failed to resolve shift", reqID)
		return
	}
	api.Success(w, week, reqID)
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	validator := shared.NewValidator()
	from := queryDate(validator, r, "from")
	weeks := validator.IntRange("weeks", r.URL.Query().Get("weeks"), 1, shifts.MaxScheduleWeeks, 4)
	employeeID, err := h.targetEmployee(r, user, validator)
	if err != nil {
		shared.WriteError(w, err, "shift_schedule_failed", "failed to build schedule", reqID)
		return
	}
	if validator.Reject(w, reqID) {
		return
	}

	schedule, err := h.Service.Schedule(r.Context(), user.TenantID, employeeID, from, weeks)
	if err != nil {
		shared.WriteError(w, err, "shift_schedule_failed", "failed to build schedule", reqID)
		return
	}
	api.Success(w, schedule, reqID)
}

func (h *Handler) handleRoster(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	validator := shared.NewValidator()
	date := queryDate(validator, r, "date")
	if validator.Reject(w, reqID) {
		return
	}

	roster, err := h.Service.DepartmentRoster(r.Context(), user.TenantID, r.URL.Query().Get("departmentId"), date)
	if err != nil {
		shared.WriteError(w, err, "shift_roster_failed", "failed to build roster", reqID)
		return
	}
	if roster == nil {
		roster = []shifts.RosterEntry{}
	}
	api.Success(w, roster, reqID)
}
