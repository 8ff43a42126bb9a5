package engine

import "github.com/noah-isme/classtap-api/internal/models"

// SummarizeStudent computes the attended/total ratio for one student.
// History rows other than today contribute by their stored status when it
// is a counted one. Today's contribution depends on the mode: preview
// always uses the supplied current effective status, even when a finalized
// record for today exists; trust-finalized prefers today's record and only
// falls back to the current status when the day is not finalized yet.
func SummarizeStudent(history []models.AttendanceRecord, todayKey string, current models.Status, mode models.EvaluationMode) models.Summary {
	var attended, total int
	var todayRecord *models.AttendanceRecord

	for i := range history {
		rec := history[i]
		if rec.Date == todayKey {
			todayRecord = &history[i]
			continue
		}
		if !rec.Status.Counted() {
			continue
		}
		total++
		if rec.Status.Present() {
			attended++
		}
	}

	today := current
	if mode == models.ModeTrustFinalized && todayRecord != nil {
		today = todayRecord.EffectiveStatus()
	}

	if today.Counted() {
		total++
		if today.Present() {
			attended++
		}
	}

	if total == 0 {
		return models.Summary{}
	}
	return models.Summary{
		Attended: attended,
		Total:    total,
		Percent:  float64(attended) / float64(total) * 100,
	}
}

// SummarizeClass folds per-student summaries into a class ratio, summing
// sessions before dividing so students with more finalized days weigh more
// than an average of percentages would allow.
func SummarizeClass(summaries []models.Summary) models.ClassSummary {
	var out models.ClassSummary
	for _, s := range summaries {
		out.TotalAttended += s.Attended
		out.TotalSessions += s.Total
	}
	if out.TotalSessions > 0 {
		out.Percent = float64(out.TotalAttended) / float64(out.TotalSessions) * 100
	}
	return out
}
