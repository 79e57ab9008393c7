package shiftshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/core"
	"workforce/internal/domain/shifts"
	"workforce/internal/transport/http/middleware"
)

type rolePerms struct{}

func (rolePerms) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	return auth.HasDefault(roleID, permission), nil
}

type fakeService struct {
	shifts  []shifts.Shift
	anchors map[string]string
	created []shifts.ShiftInput
}

func newFakeService() *fakeService {
	return &fakeService{
		shifts: []shifts.Shift{
			{ID: "s3", Name: "Noc", StartTime: "22:00", EndTime: "06:00"},
			{ID: "s1", Name: "Rano", StartTime: "06:00", EndTime: "14:00"},
			{ID: "s2", Name: "Popołudnie", StartTime: "14:00", EndTime: "22:00"},
		},
		anchors: map[string]string{"e1": "s1", "e2": "s2"},
	}
}

func (f *fakeService) List(context.Context, string, string) ([]shifts.Shift, error) {
	return f.shifts, nil
}

func (f *fakeService) Get(_ context.Context, _ string, shiftID string) (shifts.Shift, error) {
	for _, s := range f.shifts {
		if s.ID == shiftID {
			return s, nil
		}
	}
	return shifts.Shift{}, shifts.ErrNotFound
}

func (f *fakeService) Create(_ context.Context, _ audit.Actor, in shifts.ShiftInput) (shifts.Shift, error) {
	if err := shifts.ValidateInput(in); err != nil {
		return shifts.Shift{}, err
	}
	f.created = append(f.created, in)
	return shifts.Shift{ID: "s4", Name: in.Name, StartTime: in.StartTime, EndTime: in.EndTime, DepartmentID: in.DepartmentID}, nil
}

func (f *fakeService) Update(_ context.Context, _ audit.Actor, shiftID string, in shifts.ShiftInput) (shifts.Shift, error) {
	if _, err := f.Get(context.Background(), "", shiftID); err != nil {
		return shifts.Shift{}, err
	}
	return shifts.Shift{ID: shiftID, Name: in.Name, StartTime: in.StartTime, EndTime: in.EndTime}, nil
}

func (f *fakeService) Delete(_ context.Context, _ audit.Actor, shiftID string) error {
	_, err := f.Get(context.Background(), "", shiftID)
	return err
}

func (f *fakeService) AssignAnchor(_ context.Context, _ audit.Actor, employeeID, shiftID string) (shifts.Assignment, error) {
	f.anchors[employeeID] = shiftID
	return shifts.Assignment{EmployeeID: employeeID, AnchorShiftID: shiftID}, nil
}

func (f *fakeService) WeekShift(ctx context.Context, tenantID, employeeID string, date time.Time) (shifts.WeekShift, error) {
	schedule, err := f.Schedule(ctx, tenantID, employeeID, date, 1)
	if err != nil {
		return shifts.WeekShift{}, err
	}
	return schedule[0], nil
}

func (f *fakeService) Schedule(_ context.Context, _ string, employeeID string, from time.Time, weeks int) ([]shifts.WeekShift, error) {
	if weeks < 1 || weeks > shifts.MaxScheduleWeeks {
		return nil, &shifts.ValidationError{Field: "weeks", Reason: "must be between 1 and 53"}
	}
	anchor, ok := f.anchors[employeeID]
	if !ok {
		return nil, shifts.ErrNotFound
	}
	return shifts.Schedule(f.shifts, anchor, from, weeks), nil
}

func (f *fakeService) DepartmentRoster(_ context.Context, _ string, departmentID string, date time.Time) ([]shifts.RosterEntry, error) {
	assignments := []shifts.Assignment{
		{EmployeeID: "e1", DepartmentID: departmentID, AnchorShiftID: f.anchors["e1"]},
		{EmployeeID: "e9", DepartmentID: departmentID},
	}
	return shifts.Roster(assignments, f.shifts, date), nil
}

type fakeEmployees struct{}

func (fakeEmployees) GetEmployeeByUserID(_ context.Context, _ string, userID string) (core.Employee, error) {
	if userID == "u-emp" {
		return core.Employee{ID: "e1"}, nil
	}
	return core.Employee{}, core.ErrNotFound
}

func newRouter(svc *fakeService) http.Handler {
	router := chi.NewRouter()
	NewHandler(svc, fakeEmployees{}, rolePerms{}).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router http.Handler, role, userID, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{
		UserID: userID, TenantID: "t1", RoleID: role, RoleName: role,
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestWeekShiftRotatesWithISOWeek(t *testing.T) {
	router := newRouter(newFakeService())

	// 2024-01-08 falls in ISO week 2; anchor index 0 + 2 lands on the night shift.
	rec, envelope := do(t, router, auth.RoleSupervisor, "u-sup", http.MethodGet, "/shifts/week?employeeId=e1&date=2024-01-08", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, float64(2), data["week"])
	assert.Equal(t, "Noc", data["shift"].(map[string]any)["name"])
}

func TestEmployeeSeesOnlyOwnSchedule(t *testing.T) {
	router := newRouter(newFakeService())

	rec, envelope := do(t, router, auth.RoleEmployee, "u-emp", http.MethodGet, "/shifts/schedule?employeeId=e2&from=2024-01-08&weeks=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	weeks := envelope["data"].([]any)
	require.Len(t, weeks, 3)
	names := make([]string, 0, len(weeks))
	for _, w := range weeks {
		names = append(names, w.(map[string]any)["shift"].(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"Noc", "Rano", "Popołudnie"}, names)
}

func TestScheduleRejectsBadInput(t *testing.T) {
	router := newRouter(newFakeService())

	tests := []struct {
		name  string
		path  string
		field string
	}{
		{name: "weeks out of range", path: "/shifts/schedule?employeeId=e1&weeks=60", field: "weeks"},
		{name: "weeks not a number", path: "/shifts/schedule?employeeId=e1&weeks=many", field: "weeks"},
		{name: "bad date", path: "/shifts/schedule?employeeId=e1&from=08.01.2024", field: "from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, envelope := do(t, router, auth.RoleHR, "u-hr", http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			errBody := envelope["error"].(map[string]any)
			assert.Equal(t, "validation_error", errBody["code"])
			fields := errBody["details"].(map[string]any)["fields"].([]any)
			assert.Equal(t, tt.field, fields[0].(map[string]any)["field"])
		})
	}
}

func TestRosterMarksUnassigned(t *testing.T) {
	router := newRouter(newFakeService())

	rec, envelope := do(t, router, auth.RoleSupervisor, "u-sup", http.MethodGet, "/shifts/roster?departmentId=d1&date=2024-01-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := envelope["data"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, true, entries[0].(map[string]any)["assigned"])
	assert.Equal(t, "Rano", entries[0].(map[string]any)["shift"].(map[string]any)["name"])
	assert.Equal(t, false, entries[1].(map[string]any)["assigned"])
	assert.Nil(t, entries[1].(map[string]any)["shift"])
}

func TestCreateAndAssignShift(t *testing.T) {
	svc := newFakeService()
	router := newRouter(svc)

	rec, envelope := do(t, router, auth.RoleSupervisor, "u-sup", http.MethodPost, "/shifts", map[string]any{
		"name": "Weekend", "startTime": "08:00", "endTime": "20:00", "departmentId": "",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "s4", envelope["data"].(map[string]any)["id"])
	require.Len(t, svc.created, 1)
	assert.Nil(t, svc.created[0].DepartmentID)

	rec, _ = do(t, router, auth.RoleSupervisor, "u-sup", http.MethodPost, "/shifts", map[string]any{
		"name": "Broken", "startTime": "25:00", "endTime": "20:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, envelope = do(t, router, auth.RoleSupervisor, "u-sup", http.MethodPut, "/shifts/assignments/e2", map[string]any{"shiftId": "s3"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s3", envelope["data"].(map[string]any)["anchorShiftId"])
	assert.Equal(t, "s3", svc.anchors["e2"])
}

func TestEmployeeCannotWriteShifts(t *testing.T) {
	router := newRouter(newFakeService())

	rec, _ := do(t, router, auth.RoleEmployee, "u-emp", http.MethodDelete, "/shifts/s1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, router, auth.RoleHR, "u-hr", http.MethodGet, "/shifts/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
