package notificationshandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/notifications"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, tenantID, userID string, limit, offset int) ([]notifications.Notification, error)
	Count(ctx context.Context, tenantID, userID string, unreadOnly bool) (int, error)
	MarkRead(ctx context.Context, tenantID, userID, notificationID string) (bool, error)
	GetSettings(ctx context.Context, tenantID string) (notifications.Settings, error)
	UpdateSettings(ctx context.Context, tenantID string, settings notifications.Settings) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermNotificationsRead, h.Perms))
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleSystemAdmin)).Get("/settings", h.handleSettings)
		r.With(middleware.RequireRole(auth.RoleHR, auth.RoleSystemAdmin)).Put("/settings", h.handleUpdateSettings)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	total, err := h.Service.Count(r.Context(), user.TenantID, user.UserID, false)
	if err != nil {
		slog.Warn("notification count failed", "err", err)
	}
	unread, err := h.Service.Count(r.Context(), user.TenantID, user.UserID, true)
	if err != nil {
		slog.Warn("notification unread count failed", "err", err)
	}

	items, err := h.Service.List(r.Context(), user.TenantID, user.UserID, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, err, "notification_list_failed", "failed to list notifications", reqID)
		return
	}
	if items == nil {
		items = []notifications.Notification{}
	}

	shared.WriteTotal(w, total)
	w.Header().Set("X-Unread-Count", strconv.Itoa(unread))
	api.Success(w, items, reqID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	updated, err := h.Service.MarkRead(r.Context(), user.TenantID, user.UserID, chi.URLParam(r, "notificationID"))
	if err != nil {
		shared.WriteError(w, err, "notification_update_failed", "failed to update notification", reqID)
		return
	}
	if !updated {
		api.Fail(w, http.StatusNotFound, "not_found", "notification not found", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "read"}, reqID)
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	settings, err := h.Service.GetSettings(r.Context(), user.TenantID)
	if err != nil {
		shared.WriteError(w, err, "settings_failed", "failed to load settings", reqID)
		return
	}
	api.Success(w, settings, reqID)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload notifications.Settings
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	payload.EmailFrom = strings.TrimSpace(payload.EmailFrom)
	if payload.EmailFrom != "" {
		if _, err := mail.ParseAddress(payload.EmailFrom); err != nil {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "emailFrom", Reason: "must be a valid email address"}})
			return
		}
	}

	if err := h.Service.UpdateSettings(r.Context(), user.TenantID, payload); err != nil {
		shared.WriteError(w, err, "settings_failed", "failed to update settings", reqID)
		return
	}
	api.Success(w, payload, reqID)
}
