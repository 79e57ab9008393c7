package jobshandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/compliance"
	"workforce/internal/platform/jobs"
	"workforce/internal/transport/http/middleware"
)

type rolePerms struct{}

func (rolePerms) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	return auth.HasDefault(roleID, permission), nil
}

type fakeRunner struct {
	full    bool
	fail    bool
	queued  []string
	pending []func(context.Context) (any, error)
}

func (f *fakeRunner) RunSweep(ctx context.Context, tenantID string) (jobs.SweepSummary, error) {
	if f.fail {
		return jobs.SweepSummary{}, errors.New("database unavailable")
	}
	return f.SweepTenant(ctx, tenantID)
}

func (f *fakeRunner) SweepTenant(context.Context, string) (jobs.SweepSummary, error) {
	return jobs.SweepSummary{Checked: 4, Counts: compliance.StatusCounts{Valid: 2, Warning: 1, Expired: 1, Total: 4}, Transitions: 2, Escalations: 2}, nil
}

func (f *fakeRunner) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) bool {
	if f.full {
		return false
	}
	f.queued = append(f.queued, jobType+"/"+tenantID)
	f.pending = append(f.pending, run)
	return true
}

func sweep(router http.Handler, role, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{
		UserID: "u1", TenantID: "t1", RoleID: role, RoleName: role,
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newRouter(runner *fakeRunner) http.Handler {
	router := chi.NewRouter()
	NewHandler(runner, rolePerms{}).RegisterRoutes(router)
	return router
}

func TestComplianceSweepInline(t *testing.T) {
	router := newRouter(&fakeRunner{})

	rec := sweep(router, auth.RoleHR, "/jobs/compliance-sweep")
	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data jobs.SweepSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 4, envelope.Data.Checked)
	assert.Equal(t, 2, envelope.Data.Escalations)
}

func TestComplianceSweepQueued(t *testing.T) {
	runner := &fakeRunner{}
	router := newRouter(runner)

	rec := sweep(router, auth.RoleSystemAdmin, "/jobs/compliance-sweep?async=true")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{jobs.JobComplianceSweep + "/t1"}, runner.queued)

	details, err := runner.pending[0](context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, details.(jobs.SweepSummary).Checked)

	runner.full = true
	rec = sweep(router, auth.RoleSystemAdmin, "/jobs/compliance-sweep?async=true")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestComplianceSweepErrors(t *testing.T) {
	rec := sweep(newRouter(&fakeRunner{fail: true}), auth.RoleHR, "/jobs/compliance-sweep")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = sweep(newRouter(&fakeRunner{}), auth.RoleSupervisor, "/jobs/compliance-sweep")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
