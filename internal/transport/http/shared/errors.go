package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/compliance"
	"workforce/internal/domain/core"
	"workforce/internal/domain/reports"
	"workforce/internal/domain/shifts"
	"workforce/internal/transport/http/api"
)

// WriteError maps domain errors onto the response envelope. Anything it does
// not recognise is logged and reported as an internal failure with the
// caller's code.
func WriteError(w http.ResponseWriter, err error, code, message, requestID string) {
	if issue, ok := fieldIssue(err); ok {
		FailValidation(w, requestID, []ValidationIssue{issue})
		return
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, compliance.ErrInvalidDate):
		api.Fail(w, http.StatusBadRequest, "invalid_date", err.Error(), requestID)
	case errors.Is(err, compliance.ErrInvalidDuration):
		api.Fail(w, http.StatusBadRequest, "invalid_duration", err.Error(), requestID)
	case errors.Is(err, compliance.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	case errors.Is(err, compliance.ErrNotFound),
		errors.Is(err, shifts.ErrNotFound),
		errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, reports.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
	case errors.Is(err, core.ErrConflict):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), requestID)
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		api.Fail(w, http.StatusConflict, "conflict", "resource already exists", requestID)
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
	case errors.Is(err, auth.ErrSessionExpired):
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", requestID)
	default:
		slog.Error(message, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

func fieldIssue(err error) (ValidationIssue, bool) {
	var complianceErr *compliance.ValidationError
	if errors.As(err, &complianceErr) {
		return ValidationIssue{Field: complianceErr.Field, Reason: complianceErr.Reason}, true
	}
	var shiftErr *shifts.ValidationError
	if errors.As(err, &shiftErr) {
		return ValidationIssue{Field: shiftErr.Field, Reason: shiftErr.Reason}, true
	}
	var coreErr *core.ValidationError
	if errors.As(err, &coreErr) {
		return ValidationIssue{Field: coreErr.Field, Reason: coreErr.Reason}, true
	}
	return ValidationIssue{}, false
}
