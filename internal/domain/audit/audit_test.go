package audit

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"workforce/internal/platform/querier"
	"workforce/internal/requestctx"
)

func TestBuildBaseQueryAddsFiltersInOrder(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", "t1", Filter{
		Action:           "compliance.renew",
		TargetEmployeeID: "e1",
	})

	if !strings.Contains(query, "action = $2") {
		t.Fatalf("expected action placeholder $2, got %q", query)
	}
	if !strings.Contains(query, "target_employee_id::text = $3") {
		t.Fatalf("expected target employee placeholder $3, got %q", query)
	}
	if len(args) != 3 || args[0] != "t1" || args[1] != "compliance.renew" || args[2] != "e1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildBaseQueryWithoutFilters(t *testing.T) {
	query, args := buildBaseQuery("SELECT id", "t1", Filter{})
	if strings.Contains(query, " AND ") {
		t.Fatalf("did not expect filters, got %q", query)
	}
	if len(args) != 1 {
		t.Fatalf("expected only tenant arg, got %v", args)
	}
}

func TestMarshalOptional(t *testing.T) {
	raw, err := marshalOptional(nil)
	if err != nil || raw != nil {
		t.Fatalf("expected nil payload, got %q (%v)", raw, err)
	}
	raw, err = marshalOptional(map[string]string{"name": "Szkolenie BHP"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(raw), "Szkolenie BHP") {
		t.Fatalf("unexpected payload %s", raw)
	}
}

type execRecorder struct {
	querier.Querier
	args []any
}

func (e *execRecorder) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	e.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestRecordTagsSystemActorWithJobRun(t *testing.T) {
	db := &execRecorder{}
	svc := New(db)
	ctx := requestctx.WithJobRun(context.Background(), "run-3")

	if err := svc.Record(ctx, System("t1"), Entry{Action: "compliance.sweep", EntityType: "compliance_record", EntityID: "r1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := db.args[9]; got != "job:run-3" {
		t.Fatalf("expected job correlation as request id, got %v", got)
	}

	actor := Actor{TenantID: "t1", UserID: "u1", RequestID: "req-9"}
	if err := svc.Record(ctx, actor, Entry{Action: "compliance.renew", EntityType: "compliance_record", EntityID: "r1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := db.args[9]; got != "req-9" {
		t.Fatalf("expected caller request id to win, got %v", got)
	}
}
