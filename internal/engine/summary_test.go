package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/classtap-api/internal/models"
)

const today = "2025-03-10"

func record(date string, status models.Status) models.AttendanceRecord {
	return models.AttendanceRecord{Date: date, Status: status}
}

func TestSummarizeStudentCountsPastDays(t *testing.T) {
	history := []models.AttendanceRecord{
		record("2025-03-03", models.StatusOnTime),
		record("2025-03-04", models.StatusLate),
		record("2025-03-05", models.StatusAbsent),
		record("2025-03-06", models.StatusSkipped),
		record("2025-03-07", models.StatusExcused),
	}

	// today is PENDING and contributes nothing
	got := SummarizeStudent(history, today, models.StatusPending, models.ModePreview)
	assert.Equal(t, 3, got.Attended)
	assert.Equal(t, 5, got.Total)
	assert.InDelta(t, 60.0, got.Percent, 1e-9)
}

func TestSummarizeStudentExcludesPendingAndUnknownHistory(t *testing.T) {
	history := []models.AttendanceRecord{
		record("2025-03-03", models.StatusPending),
		record("2025-03-04", models.StatusUnknown),
	}
	got := SummarizeStudent(history, today, models.StatusUnknown, models.ModePreview)
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.Attended)
	assert.Equal(t, 0.0, got.Percent)
}

func TestSummarizeStudentTodayByMode(t *testing.T) {
	history := []models.AttendanceRecord{
		record("2025-03-03", models.StatusOnTime),
		record(today, models.StatusAbsent),
	}

	// preview ignores the finalized row for today and trusts the live status
	preview := SummarizeStudent(history, today, models.StatusOnTime, models.ModePreview)
	assert.Equal(t, 2, preview.Attended)
	assert.Equal(t, 2, preview.Total)

	// the trusted view keeps the finalized ABSENT
	trusted := SummarizeStudent(history, today, models.StatusOnTime, models.ModeTrustFinalized)
	assert.Equal(t, 1, trusted.Attended)
	assert.Equal(t, 2, trusted.Total)

	// a finalized override beats the finalized status
	history[1].OverrideStatus = statusPtr(models.StatusExcused)
	corrected := SummarizeStudent(history, today, models.StatusOnTime, models.ModeTrustFinalized)
	assert.Equal(t, 2, corrected.Attended)
	assert.Equal(t, 2, corrected.Total)
}

func TestSummarizeStudentTrustedFallsBackWithoutRecord(t *testing.T) {
	history := []models.AttendanceRecord{record("2025-03-03", models.StatusAbsent)}
	got := SummarizeStudent(history, today, models.StatusLate, models.ModeTrustFinalized)
	assert.Equal(t, 1, got.Attended)
	assert.Equal(t, 2, got.Total)
}

func TestSummarizeClassIsWeighted(t *testing.T) {
	// student A is 1/1 and student B is 1/4, so the class ratio must be
	// 2/5 rather than the 62.5% an average of percentages would give
	summaries := []models.Summary{
		{Attended: 1, Total: 1, Percent: 100},
		{Attended: 1, Total: 4, Percent: 25},
	}
	got := SummarizeClass(summaries)
	assert.Equal(t, 2, got.TotalAttended)
	assert.Equal(t, 5, got.TotalSessions)
	assert.InDelta(t, 40.0, got.Percent, 1e-9)
}

func TestSummarizeClassEmpty(t *testing.T) {
	got := SummarizeClass(nil)
	assert.Equal(t, 0, got.TotalSessions)
	assert.Equal(t, 0.0, got.Percent)
}
