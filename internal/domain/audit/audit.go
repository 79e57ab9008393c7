package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"workforce/internal/platform/querier"
	"workforce/internal/requestctx"
)

// Actor identifies who performed an action. It is passed explicitly from the
// transport layer instead of being read from ambient state.
type Actor struct {
	TenantID  string
	UserID    string
	RequestID string
	IP        string
}

// System is the actor used by scheduled jobs.
func System(tenantID string) Actor {
	return Actor{TenantID: tenantID, UserID: "", RequestID: "system"}
}

type Entry struct {
	Action           string
	EntityType       string
	EntityID         string
	TargetEmployeeID string
	Details          string
	Before           any
	After            any
}

type Event struct {
	ID               string          `json:"id"`
	ActorID          string          `json:"actorId"`
	Action           string          `json:"action"`
	EntityType       string          `json:"entityType"`
	EntityID         string          `json:"entityId"`
	TargetEmployeeID string          `json:"targetEmployeeId"`
	Details          string          `json:"details"`
	RequestID        string          `json:"requestId"`
	IP               string          `json:"ip"`
	CreatedAt        time.Time       `json:"createdAt"`
	Before           json.RawMessage `json:"before,omitempty"`
	After            json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action           string
	EntityType       string
	ActorUser        string
	TargetEmployeeID string
}

type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, actor Actor, entry Entry) error {
	beforeJSON, err := marshalOptional(entry.Before)
	if err != nil {
		return err
	}
	afterJSON, err := marshalOptional(entry.After)
	if err != nil {
		return err
	}

	requestID := actor.RequestID
	if run := requestctx.GetJobRun(ctx); run != "" && (requestID == "" || requestID == "system") {
		requestID = "job:" + run
	}

	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_events (tenant_id, actor_user_id, action, entity_type, entity_id, target_employee_id, details, before_json, after_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
  `, actor.TenantID, nullIfEmpty(actor.UserID), entry.Action, entry.EntityType, entry.EntityID, nullIfEmpty(entry.TargetEmployeeID),
		entry.Details, beforeJSON, afterJSON, requestID, actor.IP)
	return err
}

func (s *Service) Count(ctx context.Context, tenantID string, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, tenantID string, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	selectCols := "id, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id, COALESCE(target_employee_id::text, ''), details, request_id, ip, created_at"
	if includeDetails {
		selectCols += ", before_json, after_json"
	}
	query, args := buildBaseQuery("SELECT "+selectCols, tenantID, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		dest := []any{&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.TargetEmployeeID, &evt.Details, &evt.RequestID, &evt.IP, &evt.CreatedAt}
		if includeDetails {
			dest = append(dest, &evt.Before, &evt.After)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

// MaxExportRows bounds a single CSV export.
const MaxExportRows = 10000

func (s *Service) ListExport(ctx context.Context, tenantID string, filter Filter) ([]Event, error) {
	return s.List(ctx, tenantID, filter, false, MaxExportRows, 0)
}

func buildBaseQuery(prefix, tenantID string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", len(args)+1)
		args = append(args, filter.EntityType)
	}
	if filter.ActorUser != "" {
		query += fmt.Sprintf(" AND actor_user_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorUser)
	}
	if filter.TargetEmployeeID != "" {
		query += fmt.Sprintf(" AND target_employee_id::text = $%d", len(args)+1)
		args = append(args, filter.TargetEmployeeID)
	}
	return query, args
}

func marshalOptional(value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
