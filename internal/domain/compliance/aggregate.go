package compliance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type StatusCounts struct {
	Valid   int `json:"validCount"`
	Warning int `json:"warningCount"`
	Expired int `json:"expiredCount"`
	Total   int `json:"total"`
}

func (c *StatusCounts) add(status Status) {
	c.Total++
	switch status {
	case StatusValid:
		c.Valid++
	case StatusWarning:
		c.Warning++
	case StatusExpired:
		c.Expired++
	}
}

// ComplianceRate is the share of valid records, rounded to two decimals.
func (c StatusCounts) ComplianceRate() decimal.Decimal {
	if c.Total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(c.Valid)).
		Div(decimal.NewFromInt(int64(c.Total))).
		Round(2)
}

type TypeCounts struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Warning int `json:"warning"`
	Expired int `json:"expired"`
}

// TypeKey groups mandatory records by their name and everything else by category.
func TypeKey(rec Record) string {
	if rec.Category == CategoryMandatory {
		return rec.Name
	}
	return string(rec.Category)
}

func AggregateByStatus(records []Record, now time.Time) StatusCounts {
	var counts StatusCounts
	for _, rec := range records {
		counts.add(Classify(rec.ExpiryDate, now))
	}
	return counts
}

func AggregateByType(records []Record, now time.Time) map[string]TypeCounts {
	out := make(map[string]TypeCounts)
	for _, rec := range records {
		key := TypeKey(rec)
		counts := out[key]
		counts.Total++
		switch Classify(rec.ExpiryDate, now) {
		case StatusValid:
			counts.Valid++
		case StatusWarning:
			counts.Warning++
		case StatusExpired:
			counts.Expired++
		}
		out[key] = counts
	}
	return out
}

// ExpiringWithin returns records that are not yet expired but expire within
// the given number of days, soonest first.
func ExpiringWithin(records []Record, now time.Time, days int) []Record {
	var out []Record
	for _, rec := range records {
		left := DaysRemaining(rec.ExpiryDate, now)
		if left > 0 && left <= days {
			out = append(out, Refresh(rec, now))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiryDate.Before(out[j].ExpiryDate)
	})
	return out
}

// FilterByStatus keeps the records whose derived status matches.
func FilterByStatus(records []Record, now time.Time, status Status) []Record {
	var out []Record
	for _, rec := range records {
		rec = Refresh(rec, now)
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}
