package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fleet() []Record {
	return []Record{
		{ID: "1", Category: CategoryMandatory, Name: NameSafetyTraining, ExpiryDate: date(2024, time.March, 1)},
		{ID: "2", Category: CategoryMandatory, Name: NameMedicalExam, ExpiryDate: date(2024, time.January, 25)},
		{ID: "3", Category: CategoryUDT, Name: "Suwnice", ExpiryDate: date(2023, time.December, 31)},
		{ID: "4", Category: CategorySEP, Name: "SEP E1", ExpiryDate: date(2024, time.January, 12)},
		{ID: "5", Category: CategorySEP, Name: "SEP D1", ExpiryDate: date(2025, time.June, 1)},
	}
}

func TestAggregateByStatus(t *testing.T) {
	now := date(2024, time.January, 8)
	counts := AggregateByStatus(fleet(), now)

	assert.Equal(t, StatusCounts{Valid: 2, Warning: 2, Expired: 1, Total: 5}, counts)
	assert.Equal(t, counts.Total, counts.Valid+counts.Warning+counts.Expired)
	assert.Equal(t, "0.4", counts.ComplianceRate().String())
}

func TestComplianceRateEmpty(t *testing.T) {
	assert.True(t, StatusCounts{}.ComplianceRate().IsZero())
}

func TestAggregateByType(t *testing.T) {
	now := date(2024, time.January, 8)
	byType := AggregateByType(fleet(), now)

	require.Contains(t, byType, NameSafetyTraining)
	require.Contains(t, byType, NameMedicalExam)
	assert.Equal(t, TypeCounts{Total: 1, Warning: 1}, byType[NameMedicalExam])
	assert.Equal(t, TypeCounts{Total: 2, Valid: 1, Warning: 1}, byType[string(CategorySEP)])
	assert.Equal(t, TypeCounts{Total: 1, Expired: 1}, byType[string(CategoryUDT)])

	total := 0
	for _, counts := range byType {
		total += counts.Total
	}
	assert.Equal(t, 5, total)
}

func TestExpiringWithinSortsSoonestFirst(t *testing.T) {
	now := date(2024, time.January, 8)
	soon := ExpiringWithin(fleet(), now, 30)

	require.Len(t, soon, 2)
	assert.Equal(t, "4", soon[0].ID)
	assert.Equal(t, "2", soon[1].ID)
	for _, rec := range soon {
		assert.Equal(t, StatusWarning, rec.Status)
	}
}

func TestFilterByStatusUsesDerivedStatus(t *testing.T) {
	records := fleet()
	for i := range records {
		records[i].Status = StatusValid
	}
	expired := FilterByStatus(records, date(2024, time.January, 8), StatusExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, "3", expired[0].ID)
}
