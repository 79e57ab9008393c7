package compliance

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const halfYearLiteral = "0.5"

// MaxDurationYears bounds whole-year durations.
const MaxDurationYears = 100

// Duration is the validity period of a certificate: either half a year or a
// whole number of years. The zero value means "not set".
type Duration struct {
	halfYear bool
	years    int
}

func HalfYearDuration() Duration {
	return Duration{halfYear: true}
}

func YearsDuration(n int) (Duration, error) {
	if n < 1 || n > MaxDurationYears {
		return Duration{}, &InvalidDurationError{Value: strconv.Itoa(n)}
	}
	return Duration{years: n}, nil
}

// DefaultDuration is applied when a stored record carries no duration.
func DefaultDuration() Duration {
	return Duration{years: 1}
}

// ParseDuration accepts "0.5" or a positive number of years. Fractional year
// counts are truncated, so "2.7" is two years.
func ParseDuration(raw string) (Duration, error) {
	value := strings.TrimSpace(raw)
	if value == halfYearLiteral {
		return HalfYearDuration(), nil
	}
	if value == "" {
		return Duration{}, &InvalidDurationError{Value: raw}
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return Duration{}, &InvalidDurationError{Value: raw}
	}
	years := parsed.Truncate(0)
	if years.LessThan(decimal.NewFromInt(1)) || years.GreaterThan(decimal.NewFromInt(MaxDurationYears)) {
		return Duration{}, &InvalidDurationError{Value: raw}
	}
	return YearsDuration(int(years.IntPart()))
}

func (d Duration) IsZero() bool {
	return !d.halfYear && d.years == 0
}

func (d Duration) IsHalfYear() bool {
	return d.halfYear
}

func (d Duration) Years() int {
	return d.years
}

func (d Duration) String() string {
	if d.halfYear {
		return halfYearLiteral
	}
	if d.years == 0 {
		return ""
	}
	return strconv.Itoa(d.years)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		var number json.Number
		if numErr := json.Unmarshal(data, &number); numErr != nil {
			return &InvalidDurationError{Value: string(data)}
		}
		raw = number.String()
	}
	if strings.TrimSpace(raw) == "" {
		*d = Duration{}
		return nil
	}
	parsed, err := ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CalculateExpiry adds d to start using calendar arithmetic. Day overflow is
// normalized by time.AddDate, so Feb 29 plus one year lands on Mar 1.
func CalculateExpiry(start time.Time, d Duration) (time.Time, error) {
	if start.IsZero() {
		return time.Time{}, &InvalidDateError{Field: "issueDate"}
	}
	if d.IsZero() {
		return time.Time{}, &InvalidDurationError{Value: d.String()}
	}
	if d.halfYear {
		return start.AddDate(0, 6, 0), nil
	}
	return start.AddDate(d.years, 0, 0), nil
}

func CalculateExpiryString(start time.Time, raw string) (time.Time, error) {
	d, err := ParseDuration(raw)
	if err != nil {
		return time.Time{}, err
	}
	return CalculateExpiry(start, d)
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar date at UTC midnight.
func ParseDate(field, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, &InvalidDateError{Field: field}
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, &InvalidDateError{Field: field, Value: raw}
	}
	return Midnight(parsed), nil
}
