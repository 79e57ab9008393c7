package jobshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/auth"
	"workforce/internal/platform/jobs"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

// Runner is satisfied by *jobs.Service.
type Runner interface {
	RunSweep(ctx context.Context, tenantID string) (jobs.SweepSummary, error)
	SweepTenant(ctx context.Context, tenantID string) (jobs.SweepSummary, error)
	Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) bool
}

type Handler struct {
	Jobs  Runner
	Perms middleware.PermissionStore
}

func NewHandler(runner Runner, perms middleware.PermissionStore) *Handler {
	return &Handler{Jobs: runner, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermJobsRun, h.Perms)).Post("/compliance-sweep", h.handleComplianceSweep)
	})
}

// handleComplianceSweep runs the sweep inline, or queues it when async=true.
func (h *Handler) handleComplianceSweep(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	if r.URL.Query().Get("async") == "true" {
		tenantID := user.TenantID
		queued := h.Jobs.Enqueue(jobs.JobComplianceSweep, tenantID, func(ctx context.Context) (any, error) {
			return h.Jobs.SweepTenant(ctx, tenantID)
		})
		if !queued {
			api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full, retry later", reqID)
			return
		}
		api.Accepted(w, map[string]string{"status": "queued"}, reqID)
		return
	}

	summary, err := h.Jobs.RunSweep(r.Context(), user.TenantID)
	if err != nil {
		shared.WriteError(w, err, "sweep_failed", "compliance sweep failed", reqID)
		return
	}
	api.Success(w, summary, reqID)
}
