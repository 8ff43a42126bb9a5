package engine

import "github.com/noah-isme/classtap-api/internal/models"

// Effective resolves the status a viewer should see for the current day.
//
// In preview mode a live override wins, then the automatic result; any
// finalized record for today is ignored so operators can see what a change
// would do before finalizing. In trust-finalized mode today's record, when
// present, is authoritative (its override first, then its stored status);
// the live rule only applies when the day has not been finalized.
func Effective(state models.Enrollment, todayRecord *models.AttendanceRecord, automatic models.Status, mode models.EvaluationMode) models.Status {
	if mode == models.ModePreview {
		return liveEffective(state, automatic)
	}

	if todayRecord != nil {
		return todayRecord.EffectiveStatus()
	}
	return liveEffective(state, automatic)
}

func liveEffective(state models.Enrollment, automatic models.Status) models.Status {
	if state.OverrideStatus != nil && *state.OverrideStatus != "" {
		return *state.OverrideStatus
	}
	return automatic
}
