package compliance

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusValid   Status = "VALID"
	StatusWarning Status = "WARNING"
	StatusExpired Status = "EXPIRED"
)

// WarningThresholdDays is the number of days before expiry in which a record is flagged.
const WarningThresholdDays = 30

const day = 24 * time.Hour

// Midnight strips the time of day, keeping the calendar date of t.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysRemaining counts whole days from now until expiry. It is negative once
// the expiry date has passed.
func DaysRemaining(expiry, now time.Time) int {
	diff := Midnight(expiry).Sub(Midnight(now))
	return int(math.Ceil(float64(diff) / float64(day)))
}

func Classify(expiry, now time.Time) Status {
	return classifyDays(DaysRemaining(expiry, now))
}

func classifyDays(daysLeft int) Status {
	switch {
	case daysLeft <= 0:
		return StatusExpired
	case daysLeft <= WarningThresholdDays:
		return StatusWarning
	default:
		return StatusValid
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusValid, StatusWarning, StatusExpired:
		return true
	}
	return false
}

// Span is a calendar difference between two dates.
type Span struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// Remaining decomposes the calendar distance from -> to. Negative days borrow
// the length of the month preceding to's month; negative months borrow a year.
func Remaining(from, to time.Time) Span {
	from, to = Midnight(from), Midnight(to)
	if to.Before(from) {
		return Span{}
	}

	years := to.Year() - from.Year()
	months := int(to.Month()) - int(from.Month())
	days := to.Day() - from.Day()

	if days < 0 {
		months--
		days += daysInPreviousMonth(to)
		// Jan 31 -> Mar 1 borrows only February's days and reads as one month.
		if days < 0 {
			days = 0
		}
	}
	if months < 0 {
		years--
		months += 12
	}
	return Span{Years: years, Months: months, Days: days}
}

func daysInPreviousMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month(), 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatRemaining renders the time left until expiry in Polish, e.g. "1 rok 2 miesiące 5 dni".
func FormatRemaining(expiry, now time.Time) string {
	if DaysRemaining(expiry, now) <= 0 {
		return "wygasło"
	}
	span := Remaining(now, expiry)
	parts := make([]string, 0, 3)
	if span.Years > 0 {
		parts = append(parts, strconv.Itoa(span.Years)+" "+polishPlural(span.Years, "rok", "lata", "lat"))
	}
	if span.Months > 0 {
		parts = append(parts, strconv.Itoa(span.Months)+" "+polishPlural(span.Months, "miesiąc", "miesiące", "miesięcy"))
	}
	if span.Days > 0 {
		parts = append(parts, strconv.Itoa(span.Days)+" "+polishPlural(span.Days, "dzień", "dni", "dni"))
	}
	return strings.Join(parts, " ")
}

func polishPlural(n int, one, few, many string) string {
	if n == 1 {
		return one
	}
	lastDigit := n % 10
	lastTwo := n % 100
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwo < 12 || lastTwo > 14) {
		return few
	}
	return many
}
