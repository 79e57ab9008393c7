package reportshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/compliance"
	"workforce/internal/domain/reports"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	Dashboard(ctx context.Context, tenantID string, expiringDays int) (reports.Dashboard, error)
	WriteComplianceCSV(ctx context.Context, tenantID string, status compliance.Status, w io.Writer) error
	CompliancePDF(ctx context.Context, tenantID string) (reports.Archive, error)
	RosterPDF(ctx context.Context, tenantID, departmentID string, date time.Time) (reports.Archive, error)
	OpenArchive(ctx context.Context, tenantID, archiveID string) (reports.Archive, *os.File, error)
	JobRuns(ctx context.Context, tenantID string, filter reports.JobRunFilter, limit, offset int) ([]reports.JobRun, int, error)
	JobRun(ctx context.Context, tenantID, runID string) (reports.JobRun, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/dashboard", h.handleDashboard)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/compliance.csv", h.handleComplianceCSV)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Post("/compliance.pdf", h.handleCompliancePDF)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Post("/roster.pdf", h.handleRosterPDF)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/archives/{archiveID}", h.handleDownload)
		r.With(middleware.RequirePermission(auth.PermJobsRun, h.Perms)).Get("/jobs", h.handleJobRuns)
		r.With(middleware.RequirePermission(auth.PermJobsRun, h.Perms)).Get("/jobs/{runID}", h.handleJobRun)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	validator := shared.NewValidator()
	days := validator.IntRange("days", r.URL.Query().Get("days"), 1, 365, 0)
	if validator.Reject(w, reqID) {
		return
	}

	dash, err := h.Service.Dashboard(r.Context(), user.TenantID, days)
	if err != nil {
		shared.WriteError(w, err, "dashboard_failed", "failed to build dashboard", reqID)
		return
	}
	api.Success(w, dash, reqID)
}

func (h *Handler) handleComplianceCSV(w http.ResponseWriter, r *http.Request) {
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

	var buf bytes.Buffer
	if err := h.Service.WriteComplianceCSV(r.Context(), user.TenantID, status, &buf); err != nil {
		shared.WriteError(w, err, "export_failed", "failed to export compliance records", reqID)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=compliance.csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("compliance csv write failed", "err", err)
	}
}

func (h *Handler) handleCompliancePDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	archive, err := h.Service.CompliancePDF(r.Context(), user.TenantID)
	if err != nil {
		shared.WriteError(w, err, "report_failed", "failed to generate report", reqID)
		return
	}
	api.Created(w, archive, reqID)
}

func (h *Handler) handleRosterPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		DepartmentID string `json:"departmentId"`
		Date         string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	var date time.Time
	if strings.TrimSpace(payload.Date) != "" {
		validator := shared.NewValidator()
		date, _ = validator.Date("date", payload.Date)
		if validator.Reject(w, reqID) {
			return
		}
	}

	archive, err := h.Service.RosterPDF(r.Context(), user.TenantID, strings.TrimSpace(payload.DepartmentID), date)
	if err != nil {
		shared.WriteError(w, err, "report_failed", "failed to generate report", reqID)
		return
	}
	api.Created(w, archive, reqID)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	archiveID := chi.URLParam(r, "archiveID")
	archive, file, err := h.Service.OpenArchive(r.Context(), user.TenantID, archiveID)
	if err != nil {
		shared.WriteError(w, err, "download_failed", "failed to open report", reqID)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(archive.FilePath)))
	http.ServeContent(w, r, filepath.Base(archive.FilePath), archive.CreatedAt, file)
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	query := r.URL.Query()
	filter := reports.JobRunFilter{
		JobType: strings.TrimSpace(query.Get("jobType")),
		Status:  strings.TrimSpace(query.Get("status")),
	}
	validator := shared.NewValidator()
	if raw := strings.TrimSpace(query.Get("startedFrom")); raw != "" {
		if from, ok := validator.Date("startedFrom", raw); ok {
			filter.StartedFrom = &from
		}
	}
	if raw := strings.TrimSpace(query.Get("startedTo")); raw != "" {
		if to, ok := validator.Date("startedTo", raw); ok {
			endOfDay := to.Add(24*time.Hour - time.Nanosecond)
			filter.StartedTo = &endOfDay
		}
	}
	if filter.StartedFrom != nil && filter.StartedTo != nil {
		validator.DateOrder("startedFrom", *filter.StartedFrom, "startedTo", *filter.StartedTo)
	}
	if validator.Reject(w, reqID) {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	runs, total, err := h.Service.JobRuns(r.Context(), user.TenantID, filter, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, err, "job_runs_failed", "failed to list job runs", reqID)
		return
	}
	if runs == nil {
		runs = []reports.JobRun{}
	}
	shared.WriteTotal(w, total)
	api.Success(w, runs, reqID)
}

func (h *Handler) handleJobRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	run, err := h.Service.JobRun(r.Context(), user.TenantID, chi.URLParam(r, "runID"))
	if err != nil {
		shared.WriteError(w, err, "job_run_failed", "failed to load job run", reqID)
		return
	}
	api.Success(w, run, reqID)
}
