package compliancehandler

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
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	Now() time.Time
	ListAll(ctx context.Context, tenantID string) ([]compliance.Record, error)
	Get(ctx context.Context, tenantID, recordID string) (compliance.View, error)
	Edit(ctx context.Context, actor audit.Actor, recordID string, in compliance.EditInput) (compliance.Record, error)
	Renew(ctx context.Context, actor audit.Actor, recordID string) (compliance.Record, error)
	Delete(ctx context.Context, actor audit.Actor, recordID string) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/compliance/records", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermComplianceRead, h.Perms)).Get("/", h.handleList)
		r.Route("/{recordID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermComplianceRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermComplianceWrite, h.Perms)).Put("/", h.handleEdit)
			r.With(middleware.RequirePermission(auth.PermComplianceWrite, h.Perms)).Post("/renew", h.handleRenew)
			r.With(middleware.RequirePermission(auth.PermComplianceWrite, h.Perms)).Delete("/", h.handleDelete)
		})
	})
}

// handleList returns every record of the tenant with derived values, optionally
// narrowed by status or employee.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	status := compliance.Status(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	if status != "" && !status.Valid() {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "status", Reason: "must be VALID, WARNING or EXPIRED"}})
		return
	}
	employeeID := r.URL.Query().Get("employeeId")

	records, err := h.Service.ListAll(r.Context(), user.TenantID)
	if err != nil {
		shared.WriteError(w, err, "compliance_list_failed", "failed to list compliance records", reqID)
		return
	}

	now := h.Service.Now()
	views := make([]compliance.View, 0, len(records))
	for _, rec := range records {
		if employeeID != "" && rec.EmployeeID != employeeID {
			continue
		}
		view := compliance.NewView(rec, now)
		if status != "" && view.Status != status {
			continue
		}
		views = append(views, view)
	}

	page := shared.ParsePagination(r, 200, 1000)
	shared.WriteTotal(w, len(views))
	start, end := page.Bounds(len(views))
	api.Success(w, views[start:end], reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	view, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "recordID"))
	if err != nil {
		shared.WriteError(w, err, "compliance_get_failed", "failed to load compliance record", reqID)
		return
	}
	api.Success(w, view, reqID)
}

type editRequest struct {
	IssueDate *string              `json:"issueDate"`
	Duration  *compliance.Duration `json:"duration"`
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload editRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if compliance.IsClientError(err) {
			shared.WriteError(w, err, "invalid_payload", "invalid request payload", reqID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	in := compliance.EditInput{Duration: payload.Duration}
	if payload.IssueDate != nil {
		issued, err := compliance.ParseDate("issueDate", *payload.IssueDate)
		if err != nil {
			shared.WriteError(w, err, "invalid_payload", "invalid issue date", reqID)
			return
		}
		in.IssueDate = &issued
	}
	if in.Empty() {
		shared.WriteError(w, &compliance.ValidationError{Field: "issueDate", Reason: "is required when duration is absent"}, "invalid_payload", "nothing to update", reqID)
		return
	}

	rec, err := h.Service.Edit(r.Context(), shared.Actor(r, user), chi.URLParam(r, "recordID"), in)
	if err != nil {
		shared.WriteError(w, err, "compliance_update_failed", "failed to update compliance record", reqID)
		return
	}
	api.Success(w, compliance.NewView(rec, h.Service.Now()), reqID)
}

func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	rec, err := h.Service.Renew(r.Context(), shared.Actor(r, user), chi.URLParam(r, "recordID"))
	if err != nil {
		shared.WriteError(w, err, "compliance_renew_failed", "failed to renew compliance record", reqID)
		return
	}
	api.Success(w, compliance.NewView(rec, h.Service.Now()), reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	if err := h.Service.Delete(r.Context(), shared.Actor(r, user), chi.URLParam(r, "recordID")); err != nil {
		shared.WriteError(w, err, "compliance_delete_failed", "failed to delete compliance record", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}
