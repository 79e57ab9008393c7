package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/core"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	Refresh(ctx context.Context, token string) (auth.LoginResult, error)
	Logout(ctx context.Context, user auth.UserContext) error
}

type EmployeeLookup interface {
	GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (core.Employee, error)
}

type Handler struct {
	Service   Service
	Employees EmployeeLookup
}

func NewHandler(service Service, employees EmployeeLookup) *Handler {
	return &Handler{Service: service, Employees: employees}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/refresh", h.HandleRefresh)
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/me", h.HandleMe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func userPayload(user auth.UserContext) map[string]string {
	return map[string]string{
		"id":       user.UserID,
		"tenantId": user.TenantID,
		"roleId":   user.RoleID,
		"role":     user.RoleName,
	}
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	validator := shared.NewValidator()
	validator.Required("email", payload.Email, "is required")
	validator.Required("password", payload.Password, "is required")
	if validator.Reject(w, reqID) {
		return
	}

	result, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		shared.WriteError(w, err, "login_failed", "failed to log in", reqID)
		return
	}
	api.Success(w, map[string]any{
		"token": result.Token,
		"user":  userPayload(result.User),
	}, reqID)
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	token, ok := middleware.BearerToken(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	result, err := h.Service.Refresh(r.Context(), token)
	if err != nil {
		shared.WriteError(w, err, "token_error", "failed to rotate session", reqID)
		return
	}
	api.Success(w, map[string]any{"token": result.Token}, reqID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok {
		if err := h.Service.Logout(r.Context(), user); err != nil {
			slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

// HandleMe returns the caller and, when the account is linked, its employee card.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var employee *core.Employee
	if h.Employees != nil {
		emp, err := h.Employees.GetEmployeeByUserID(r.Context(), user.TenantID, user.UserID)
		switch {
		case err == nil:
			emp.NationalID = ""
			employee = &emp
		case !errors.Is(err, core.ErrNotFound):
			slog.Warn("employee lookup failed", "userId", user.UserID, "err", err)
		}
	}
	api.Success(w, map[string]any{
		"user":     userPayload(user),
		"employee": employee,
	}, reqID)
}
