package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classtap-api/internal/models"
)

func TestBuildRecordSnapshotsLiveState(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	state := models.Enrollment{
		ID:          "enr-1",
		LastArrival: strPtr("2025-03-10 09:25"),
		LastLeave:   strPtr("2025-03-10 10:10"),
	}

	rec := BuildRecord(state, date, models.StatusLate)

	assert.Equal(t, "enr-1", rec.EnrollmentID)
	assert.Equal(t, "2025-03-10", rec.Date)
	assert.Equal(t, models.StatusLate, rec.Status)
	assert.Nil(t, rec.OverrideStatus)
	assert.Equal(t, "2025-03-10 09:25", *rec.LastArrival)
	assert.Equal(t, "2025-03-10 10:10", *rec.LastLeave)
	// 45 minutes derived from the tap pair
	assert.Equal(t, int64(45*60), rec.DurationSeconds)
}

func TestBuildRecordKeepsAutomaticStatusUnderOverride(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	state := models.Enrollment{
		ID:             "enr-1",
		LastArrival:    strPtr("2025-03-10 09:25"),
		LastLeave:      strPtr("2025-03-10 10:10"),
		OverrideStatus: statusPtr(models.StatusExcused),
	}

	rec := BuildRecord(state, date, models.StatusLate)

	// the computed outcome and the human correction are stored side by side
	assert.Equal(t, models.StatusLate, rec.Status)
	require.NotNil(t, rec.OverrideStatus)
	assert.Equal(t, models.StatusExcused, *rec.OverrideStatus)
	assert.Equal(t, models.StatusExcused, rec.EffectiveStatus())
}

func TestBuildRecordDurationPrefersAccumulator(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	state := models.Enrollment{
		ID:           "enr-1",
		LastArrival:  strPtr("2025-03-10 09:00"),
		LastLeave:    strPtr("2025-03-10 10:00"),
		TotalSeconds: 3200,
	}

	rec := BuildRecord(state, date, models.StatusOnTime)
	assert.Equal(t, int64(3200), rec.DurationSeconds)
}

func TestBuildRecordDurationZeroWhenPairIncomplete(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	noLeave := models.Enrollment{ID: "enr-1", LastArrival: strPtr("2025-03-10 09:00")}
	assert.Equal(t, int64(0), BuildRecord(noLeave, date, models.StatusSkipped).DurationSeconds)

	inverted := models.Enrollment{
		ID:          "enr-1",
		LastArrival: strPtr("2025-03-10 10:00"),
		LastLeave:   strPtr("2025-03-10 09:00"),
	}
	assert.Equal(t, int64(0), BuildRecord(inverted, date, models.StatusUnknown).DurationSeconds)
}

func TestBuildRecordEmptyAutomaticFallsBackToUnknown(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rec := BuildRecord(models.Enrollment{ID: "enr-1"}, date, "")
	assert.Equal(t, models.StatusUnknown, rec.Status)
}
