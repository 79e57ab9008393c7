package compliance

import (
	"context"
	"time"
)

// Transition is a record whose derived status no longer matches the cached one.
type Transition struct {
	Record   Record `json:"record"`
	Previous Status `json:"previous"`
	Current  Status `json:"current"`
	DaysLeft int    `json:"daysLeft"`
}

type SweepResult struct {
	Checked     int          `json:"checked"`
	Counts      StatusCounts `json:"counts"`
	Transitions []Transition `json:"transitions"`
}

// Escalations returns transitions into WARNING or EXPIRED, the ones worth notifying about.
func (r SweepResult) Escalations() []Transition {
	var out []Transition
	for _, t := range r.Transitions {
		if t.Current == StatusWarning || t.Current == StatusExpired {
			out = append(out, t)
		}
	}
	return out
}

// DetectTransitions classifies every record at now and reports the ones whose
// cached status differs. Running it again after the cache is updated yields nothing.
func DetectTransitions(records []Record, now time.Time) SweepResult {
	result := SweepResult{Checked: len(records)}
	for _, rec := range records {
		current := Classify(rec.ExpiryDate, now)
		result.Counts.add(current)
		if rec.Status == current {
			continue
		}
		previous := rec.Status
		rec.Status = current
		result.Transitions = append(result.Transitions, Transition{
			Record:   rec,
			Previous: previous,
			Current:  current,
			DaysLeft: DaysRemaining(rec.ExpiryDate, now),
		})
	}
	return result
}

// Sweep refreshes the cached status of every record of the tenant.
func (s *Service) Sweep(ctx context.Context, tenantID string) (SweepResult, error) {
	records, err := s.store.ListAll(ctx, tenantID)
	if err != nil {
		return SweepResult{}, err
	}
	result := DetectTransitions(records, s.now())
	for _, t := range result.Transitions {
		if err := s.store.UpdateStatus(ctx, tenantID, t.Record.ID, t.Current); err != nil {
			return result, err
		}
	}
	return result, nil
}
