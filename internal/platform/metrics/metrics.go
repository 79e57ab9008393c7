package metrics

import (
	"maps"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector keeps process-local counters for /metrics. Counters reset on restart.
type Collector struct {
	requests    atomic.Uint64
	serverErrs  atomic.Uint64
	rateLimited atomic.Uint64
	durationMs  atomic.Uint64

	recordsSwept atomic.Uint64
	transitions  atomic.Uint64
	escalations  atomic.Uint64

	mu      sync.Mutex
	jobRuns map[string]map[string]uint64
}

func New() *Collector {
	return &Collector{jobRuns: make(map[string]map[string]uint64)}
}

// Record counts one finished HTTP request.
func (c *Collector) Record(status int, elapsed time.Duration) {
	c.requests.Add(1)
	switch {
	case status >= http.StatusInternalServerError:
		c.serverErrs.Add(1)
	case status == http.StatusTooManyRequests:
		c.rateLimited.Add(1)
	}
	if ms := elapsed.Milliseconds(); ms > 0 {
		c.durationMs.Add(uint64(ms))
	}
}

// RecordJob counts a finished background job run by type and outcome.
func (c *Collector) RecordJob(jobType, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.jobRuns[jobType] == nil {
		c.jobRuns[jobType] = make(map[string]uint64)
	}
	c.jobRuns[jobType][status]++
}

// RecordSweep adds the outcome of one compliance sweep.
func (c *Collector) RecordSweep(checked, transitions, escalations int) {
	c.recordsSwept.Add(uint64(max(checked, 0)))
	c.transitions.Add(uint64(max(transitions, 0)))
	c.escalations.Add(uint64(max(escalations, 0)))
}

func (c *Collector) Snapshot() map[string]any {
	total := c.requests.Load()
	totalMs := c.durationMs.Load()
	var avg float64
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	runs := make(map[string]map[string]uint64, len(c.jobRuns))
	for jobType, byStatus := range c.jobRuns {
		runs[jobType] = maps.Clone(byStatus)
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      c.serverErrs.Load(),
		"rateLimitedTotal": c.rateLimited.Load(),
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"jobRuns":          runs,
		"compliance": map[string]uint64{
			"recordsChecked": c.recordsSwept.Load(),
			"transitions":    c.transitions.Load(),
			"escalations":    c.escalations.Load(),
		},
	}
}
