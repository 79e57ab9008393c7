package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 2*time.Millisecond)

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) {
		t.Fatalf("unexpected total %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"] != uint64(1) || snap["rateLimitedTotal"] != uint64(1) {
		t.Fatalf("unexpected counters %v", snap)
	}
	if snap["avgDurationMs"] != float64(14) {
		t.Fatalf("unexpected average %v", snap["avgDurationMs"])
	}
}

func TestCollectorJobRuns(t *testing.T) {
	c := New()
	c.RecordJob("compliance_sweep", "completed")
	c.RecordJob("compliance_sweep", "completed")
	c.RecordJob("compliance_sweep", "failed")

	jobs := c.Snapshot()["jobRuns"].(map[string]map[string]uint64)
	if jobs["compliance_sweep"]["completed"] != 2 || jobs["compliance_sweep"]["failed"] != 1 {
		t.Fatalf("unexpected job counters %v", jobs)
	}

	c.RecordJob("compliance_sweep", "completed")
	if jobs["compliance_sweep"]["completed"] != 2 {
		t.Fatal("snapshot must not alias live counters")
	}
}

func TestCollectorEmpty(t *testing.T) {
	if got := New().Snapshot()["avgDurationMs"]; got != float64(0) {
		t.Fatalf("expected zero average, got %v", got)
	}
}

func TestCollectorSweepCounters(t *testing.T) {
	c := New()
	c.RecordSweep(10, 3, 2)
	c.RecordSweep(10, 0, 0)

	got := c.Snapshot()["compliance"].(map[string]uint64)
	if got["recordsChecked"] != 20 || got["transitions"] != 3 || got["escalations"] != 2 {
		t.Fatalf("unexpected sweep counters %v", got)
	}
}
