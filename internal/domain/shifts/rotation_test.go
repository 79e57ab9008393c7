package shifts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string {
	return &s
}

func twoShifts() []Shift {
	dept := strPtr("prod")
	return []Shift{
		{ID: "1", Name: "Shift A", StartTime: "06:00", EndTime: "14:00", DepartmentID: dept},
		{ID: "2", Name: "Shift B", StartTime: "14:00", EndTime: "22:00", DepartmentID: dept},
	}
}

func threeShifts() []Shift {
	dept := strPtr("prod")
	return []Shift{
		{ID: "night", Name: "Night", StartTime: "22:00", EndTime: "06:00", DepartmentID: dept},
		{ID: "morning", Name: "Morning", StartTime: "06:00", EndTime: "14:00", DepartmentID: dept},
		{ID: "evening", Name: "Evening", StartTime: "14:00:00", EndTime: "22:00", DepartmentID: dept},
	}
}

func TestISOWeekYearBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		wantYear int
		wantWeek int
	}{
		{name: "monday december 30 opens week 1", date: day(2024, time.December, 30), wantYear: 2025, wantWeek: 1},
		{name: "december 31 belongs to next iso year", date: day(2024, time.December, 31), wantYear: 2025, wantWeek: 1},
		{name: "friday january 1 belongs to week 53", date: day(2021, time.January, 1), wantYear: 2020, wantWeek: 53},
		{name: "sunday january 1 belongs to week 52", date: day(2023, time.January, 1), wantYear: 2022, wantWeek: 52},
		{name: "mid year", date: day(2024, time.March, 6), wantYear: 2024, wantWeek: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			year, week := ISOWeek(tc.date)
			assert.Equal(t, tc.wantYear, year)
			assert.Equal(t, tc.wantWeek, week)
		})
	}
}

func TestResolveShiftAlternatesWeekly(t *testing.T) {
	shifts := twoShifts()

	week10, ok := ResolveShiftForWeek(shifts, "1", day(2024, time.March, 4))
	require.True(t, ok)
	assert.Equal(t, "Shift A", week10.Name)

	week11, ok := ResolveShiftForWeek(shifts, "1", day(2024, time.March, 14))
	require.True(t, ok)
	assert.Equal(t, "Shift B", week11.Name)

	otherAnchor, ok := ResolveShiftForWeek(shifts, "2", day(2024, time.March, 4))
	require.True(t, ok)
	assert.Equal(t, "Shift B", otherAnchor.Name)
}

func TestResolveShiftIgnoresInputOrder(t *testing.T) {
	shifts := twoShifts()
	reversed := []Shift{shifts[1], shifts[0]}
	target := day(2024, time.March, 4)

	a, ok := ResolveShiftForWeek(shifts, "1", target)
	require.True(t, ok)
	b, ok := ResolveShiftForWeek(reversed, "1", target)
	require.True(t, ok)
	assert.Equal(t, a, b)
	assert.Equal(t, "2", reversed[0].ID, "input slice must not be reordered")
}

func TestResolveShiftIsDeterministic(t *testing.T) {
	shifts := threeShifts()
	target := time.Date(2024, time.August, 21, 17, 5, 0, 0, time.UTC)
	first, ok := ResolveShiftForWeek(shifts, "evening", target)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := ResolveShiftForWeek(shifts, "evening", target)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestResolveShiftCoversEveryShiftOnce(t *testing.T) {
	shifts := threeShifts()
	seen := map[string]int{}
	var order []string
	for i := 0; i < len(shifts); i++ {
		target := day(2024, time.March, 4).AddDate(0, 0, 7*i)
		s, ok := ResolveShiftForWeek(shifts, "morning", target)
		require.True(t, ok)
		seen[s.ID]++
		order = append(order, s.ID)
	}

	assert.Len(t, seen, 3)
	for id, count := range seen {
		assert.Equal(t, 1, count, "shift %s", id)
	}
	// week 10 with anchor index 0 over [morning, evening, night]
	assert.Equal(t, []string{"evening", "night", "morning"}, order)
}

func TestResolveShiftAcrossYearBoundary(t *testing.T) {
	shifts := twoShifts()

	week53, ok := ResolveShiftForWeek(shifts, "1", day(2020, time.December, 28))
	require.True(t, ok)
	week1, ok := ResolveShiftForWeek(shifts, "1", day(2021, time.January, 4))
	require.True(t, ok)
	assert.Equal(t, "Shift B", week53.Name)
	assert.Equal(t, "Shift B", week1.Name)

	newYearsDay, ok := ResolveShiftForWeek(shifts, "1", day(2021, time.January, 1))
	require.True(t, ok)
	assert.Equal(t, week53, newYearsDay)
}

func TestResolveShiftDegenerateCases(t *testing.T) {
	target := day(2024, time.March, 4)

	_, ok := ResolveShiftForWeek(nil, "1", target)
	assert.False(t, ok)

	_, ok = ResolveShiftForWeek(twoShifts(), "missing", target)
	assert.False(t, ok)

	_, ok = ResolveShiftForWeek(twoShifts(), "", target)
	assert.False(t, ok)

	single := twoShifts()[:1]
	for i := 0; i < 4; i++ {
		s, ok := ResolveShiftForWeek(single, "1", target.AddDate(0, 0, 7*i))
		require.True(t, ok)
		assert.Equal(t, "1", s.ID)
	}
	_, ok = ResolveShiftForWeek(single, "2", target)
	assert.False(t, ok)
}

func TestSortByStartIsStable(t *testing.T) {
	shifts := []Shift{
		{ID: "late", StartTime: "18:00"},
		{ID: "first", StartTime: "06:00"},
		{ID: "second", StartTime: "06:00:00"},
		{ID: "broken", StartTime: "soon"},
		{ID: "noon", StartTime: "12:00"},
	}
	sorted := SortByStart(shifts)
	ids := make([]string, 0, len(sorted))
	for _, s := range sorted {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"first", "second", "noon", "late", "broken"}, ids)
	assert.Equal(t, "late", shifts[0].ID)
}

func TestRotationIndex(t *testing.T) {
	assert.Equal(t, 0, RotationIndex(0, 10, 2))
	assert.Equal(t, 1, RotationIndex(0, 11, 2))
	assert.Equal(t, 2, RotationIndex(1, 53, 4))
	assert.Equal(t, 0, RotationIndex(3, 1, 0))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "06:00", want: 360},
		{raw: "22:30", want: 1350},
		{raw: "14:00:00", want: 840},
		{raw: "00:00", want: 0},
		{raw: "24:00", wantErr: true},
		{raw: "6:00", wantErr: true},
		{raw: "12:60", wantErr: true},
		{raw: "noon", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseClock(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWeekStart(t *testing.T) {
	assert.Equal(t, day(2024, time.March, 4), WeekStart(day(2024, time.March, 10)))
	assert.Equal(t, day(2024, time.March, 4), WeekStart(time.Date(2024, time.March, 4, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, day(2024, time.December, 30), WeekStart(day(2025, time.January, 1)))
}

func TestScheduleProjectsConsecutiveWeeks(t *testing.T) {
	schedule := Schedule(twoShifts(), "1", day(2024, time.March, 6), 3)
	require.Len(t, schedule, 3)

	assert.Equal(t, 10, schedule[0].Week)
	assert.Equal(t, day(2024, time.March, 4), schedule[0].WeekStart)
	assert.Equal(t, "1", schedule[0].Shift.ID)
	assert.Equal(t, 11, schedule[1].Week)
	assert.Equal(t, "2", schedule[1].Shift.ID)
	assert.Equal(t, 12, schedule[2].Week)
	assert.Equal(t, "1", schedule[2].Shift.ID)

	assert.Nil(t, Schedule(twoShifts(), "1", day(2024, time.March, 6), 0))

	unassigned := Schedule(twoShifts(), "", day(2024, time.March, 6), 2)
	require.Len(t, unassigned, 2)
	assert.Nil(t, unassigned[0].Shift)
}

func TestRosterResolvesPerDepartment(t *testing.T) {
	shifts := append(twoShifts(),
		Shift{ID: "w1", Name: "Warehouse", StartTime: "07:00", EndTime: "15:00", DepartmentID: strPtr("warehouse")},
		Shift{ID: "g1", Name: "Office", StartTime: "08:00", EndTime: "16:00"},
	)
	assignments := []Assignment{
		{EmployeeID: "e1", DepartmentID: "prod", AnchorShiftID: "1"},
		{EmployeeID: "e2", DepartmentID: "prod", AnchorShiftID: "2"},
		{EmployeeID: "e3", DepartmentID: "warehouse", AnchorShiftID: "w1"},
		{EmployeeID: "e4", DepartmentID: "warehouse", AnchorShiftID: "1"},
		{EmployeeID: "e5", AnchorShiftID: "g1"},
	}

	roster := Roster(assignments, shifts, day(2024, time.March, 13))
	require.Len(t, roster, 5)
	for _, entry := range roster {
		assert.Equal(t, 2024, entry.Year)
		assert.Equal(t, 11, entry.Week)
	}
	assert.Equal(t, "2", roster[0].Shift.ID)
	assert.Equal(t, "1", roster[1].Shift.ID)
	assert.Equal(t, "w1", roster[2].Shift.ID)
	assert.False(t, roster[3].Assigned)
	assert.Nil(t, roster[3].Shift)
	assert.True(t, roster[4].Assigned)
	assert.Equal(t, "g1", roster[4].Shift.ID)
}

func TestValidateInput(t *testing.T) {
	assert.NoError(t, ValidateInput(ShiftInput{Name: "Morning", StartTime: "06:00", EndTime: "14:00"}))

	err := ValidateInput(ShiftInput{Name: "Morning", StartTime: "6am", EndTime: "14:00"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "startTime", validationErr.Field)
	assert.ErrorIs(t, err, ErrValidation)

	assert.ErrorIs(t, ValidateInput(ShiftInput{StartTime: "06:00", EndTime: "14:00"}), ErrValidation)
}
