package reports

import (
	"strings"
	"testing"
	"time"
)

func TestBuildJobRunsBaseQuery(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args := buildJobRunsBaseQuery("t1", JobRunFilter{JobType: " compliance_sweep ", Status: "failed", StartedFrom: &from})

	if !strings.Contains(query, "job_type = $2") || !strings.Contains(query, "status = $3") || !strings.Contains(query, "started_at >= $4") {
		t.Fatalf("unexpected query %q", query)
	}
	if len(args) != 4 || args[1] != "compliance_sweep" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestDecodeDetails(t *testing.T) {
	if got := string(decodeDetails(nil)); got != "{}" {
		t.Fatalf("expected empty object, got %s", got)
	}
	if got := string(decodeDetails([]byte(`{"checked":3}`))); got != `{"checked":3}` {
		t.Fatalf("expected passthrough, got %s", got)
	}
	if got := string(decodeDetails([]byte("oops"))); got != `{"raw":"oops"}` {
		t.Fatalf("expected wrapped raw text, got %s", got)
	}
}
