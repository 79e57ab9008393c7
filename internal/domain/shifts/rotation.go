package shifts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ISOWeek returns the ISO-8601 year and week of date. Week 1 is the week that
// holds the year's first Thursday, so days around New Year may belong to the
// neighbouring ISO year.
func ISOWeek(date time.Time) (year, week int) {
	return date.ISOWeek()
}

// WeekStart returns the Monday that opens the ISO week containing date.
func WeekStart(date time.Time) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseClock converts HH:MM or HH:MM:SS to minutes past midnight.
func ParseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock %q", raw)
	}
	limits := []int{23, 59, 59}
	values := make([]int, len(parts))
	for i, part := range parts {
		if len(part) != 2 {
			return 0, fmt.Errorf("invalid clock %q", raw)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("invalid clock %q", raw)
		}
		values[i] = n
	}
	return values[0]*60 + values[1], nil
}

// SortByStart returns a copy of shifts ordered by start time. Equal start
// times keep their input order. Unparseable times sort after valid ones.
func SortByStart(shifts []Shift) []Shift {
	out := make([]Shift, len(shifts))
	copy(out, shifts)
	sort.SliceStable(out, func(i, j int) bool {
		return startKey(out[i]) < startKey(out[j])
	})
	return out
}

func startKey(s Shift) int {
	minutes, err := ParseClock(s.StartTime)
	if err != nil {
		return 24 * 60
	}
	return minutes
}

// RotationIndex is the position in the sorted rotation that applies in the given week.
func RotationIndex(anchorIndex, week, n int) int {
	if n <= 0 {
		return 0
	}
	return ((anchorIndex+week)%n + n) % n
}

func indexOf(shifts []Shift, id string) int {
	for i, s := range shifts {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// ResolveShiftForWeek returns the shift an employee anchored on anchorShiftID
// works in the ISO week containing target. It reports false when the list is
// empty or does not contain the anchor.
func ResolveShiftForWeek(shifts []Shift, anchorShiftID string, target time.Time) (Shift, bool) {
	if len(shifts) == 0 || anchorShiftID == "" || indexOf(shifts, anchorShiftID) < 0 {
		return Shift{}, false
	}
	if len(shifts) == 1 {
		return shifts[0], true
	}
	sorted := SortByStart(shifts)
	_, week := ISOWeek(target)
	return sorted[RotationIndex(indexOf(sorted, anchorShiftID), week, len(sorted))], true
}

// DepartmentShifts keeps the shifts scoped to departmentID. An empty
// departmentID selects the general shifts.
func DepartmentShifts(shifts []Shift, departmentID string) []Shift {
	var out []Shift
	for _, s := range shifts {
		if (departmentID == "" && s.DepartmentID == nil) || s.InDepartment(departmentID) {
			out = append(out, s)
		}
	}
	return out
}

// Roster resolves the week's shift for every assignment against the shifts of
// the assignment's own department.
func Roster(assignments []Assignment, shifts []Shift, target time.Time) []RosterEntry {
	year, week := ISOWeek(target)
	byDepartment := make(map[string][]Shift)
	out := make([]RosterEntry, 0, len(assignments))
	for _, a := range assignments {
		deptShifts, ok := byDepartment[a.DepartmentID]
		if !ok {
			deptShifts = DepartmentShifts(shifts, a.DepartmentID)
			byDepartment[a.DepartmentID] = deptShifts
		}
		entry := RosterEntry{Assignment: a, Year: year, Week: week}
		if s, ok := ResolveShiftForWeek(deptShifts, a.AnchorShiftID, target); ok {
			entry.Shift = &s
			entry.Assigned = true
		}
		out = append(out, entry)
	}
	return out
}

// Schedule lists the resolved shift for weeks consecutive ISO weeks starting
// with the week containing from.
func Schedule(shifts []Shift, anchorShiftID string, from time.Time, weeks int) []WeekShift {
	if weeks <= 0 {
		return nil
	}
	start := WeekStart(from)
	out := make([]WeekShift, 0, weeks)
	for i := 0; i < weeks; i++ {
		monday := start.AddDate(0, 0, 7*i)
		year, week := ISOWeek(monday)
		ws := WeekShift{Year: year, Week: week, WeekStart: monday}
		if s, ok := ResolveShiftForWeek(shifts, anchorShiftID, monday); ok {
			ws.Shift = &s
		}
		out = append(out, ws)
	}
	return out
}

// ValidateInput checks a shift definition before it is stored.
func ValidateInput(in ShiftInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if _, err := ParseClock(in.StartTime); err != nil {
		return &ValidationError{Field: "startTime", Reason: "must be HH:MM"}
	}
	if _, err := ParseClock(in.EndTime); err != nil {
		return &ValidationError{Field: "endTime", Reason: "must be HH:MM"}
	}
	return nil
}
