package engine

import (
	"math"
	"time"

	"github.com/noah-isme/classtap-api/internal/models"
	"github.com/noah-isme/classtap-api/pkg/timeutil"
)

// BuildRecord snapshots one enrollment's day into an attendance record.
// The automatic status is stored in Status and the override, when set, is
// carried separately so readers can keep distinguishing the computed
// outcome from the human correction after the day is frozen.
func BuildRecord(state models.Enrollment, date time.Time, automatic models.Status) models.AttendanceRecord {
	status := automatic
	if status == "" {
		status = models.StatusUnknown
	}

	var override *models.Status
	if state.OverrideStatus != nil && *state.OverrideStatus != "" {
		v := *state.OverrideStatus
		override = &v
	}

	return models.AttendanceRecord{
		EnrollmentID:    state.ID,
		Date:            models.DateKey(date),
		Status:          status,
		OverrideStatus:  override,
		LastArrival:     state.LastArrival,
		LastLeave:       state.LastLeave,
		DurationSeconds: durationSeconds(state),
	}
}

// durationSeconds prefers the accumulator the reader hardware reports on
// clock-out; otherwise it derives from the tap pair. Incomplete or invalid
// pairs yield zero.
func durationSeconds(state models.Enrollment) int64 {
	if state.TotalSeconds > 0 {
		return state.TotalSeconds
	}
	duration := timeutil.SessionDuration(state.Arrival(), state.Leave())
	if !duration.Valid() {
		return 0
	}
	seconds := int64(math.Floor(duration.Value() * 60))
	if seconds < 0 {
		return 0
	}
	return seconds
}
