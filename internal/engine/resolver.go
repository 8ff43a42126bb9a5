// Package engine implements the attendance status rules: automatic status
// resolution from raw tap timestamps and course configuration, manual
// override precedence, daily finalization snapshots and attendance-ratio
// aggregation. Everything here is a pure computation over values already in
// memory; callers inject "now" so re-evaluation is idempotent and testable.
package engine

import (
	"time"

	"github.com/noah-isme/classtap-api/internal/models"
	"github.com/noah-isme/classtap-api/pkg/timeutil"
)

// minuteOfDay converts a wall-clock instant into fractional minutes since
// midnight, seconds included.
func minuteOfDay(t time.Time) float64 {
	return float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
}

// ResolveAutomatic computes the automatic status for one enrollment from the
// course window and the live tap state. It is total over the seven-value
// status set and never errors: missing configuration and malformed
// timestamps both degrade to UNKNOWN.
//
// ABSENT is only produced when no arrival was recorded and the session
// window (end + grace) has elapsed. An arrival after the window still runs
// through the normal branches and resolves to LATE or SKIPPED.
func ResolveAutomatic(course models.Course, state models.Enrollment, now time.Time) models.Status {
	start := timeutil.MinuteOfTimeString(course.StartTime)
	end := timeutil.MinuteOfTimeString(course.EndTime)
	if !start.Valid() || !end.Valid() {
		return models.StatusUnknown
	}

	grace := float64(course.GraceMinutes)
	latestOnTime := start.Value() + grace
	latestLeaveTime := end.Value() + grace
	nowMinutes := minuteOfDay(now)

	arrival := timeutil.MinuteOfTimestamp(state.Arrival())
	leave := timeutil.MinuteOfTimestamp(state.Leave())
	duration := timeutil.SessionDuration(state.Arrival(), state.Leave())

	if duration.Invalid() {
		return models.StatusUnknown
	}

	if arrival.Absent() {
		if nowMinutes > latestLeaveTime {
			return models.StatusAbsent
		}
		return models.StatusPending
	}

	if duration.Valid() {
		if duration.Value() < float64(course.MinMinutesPresent) {
			return models.StatusSkipped
		}
		if arrival.Value() <= latestOnTime && leave.Value() <= latestLeaveTime {
			return models.StatusOnTime
		}
		return models.StatusLate
	}

	// Arrival present, no leave yet. Once the window has elapsed without a
	// clock-out the session counts as walked away from.
	if nowMinutes > latestLeaveTime {
		return models.StatusSkipped
	}
	if arrival.Value() <= latestOnTime {
		return models.StatusOnTime
	}
	return models.StatusLate
}
