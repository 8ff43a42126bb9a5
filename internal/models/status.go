package models

// Status classifies a student's presence for one course session.
type Status string

const (
	StatusOnTime  Status = "ON_TIME"
	StatusLate    Status = "LATE"
	StatusPending Status = "PENDING"
	StatusAbsent  Status = "ABSENT"
	StatusSkipped Status = "SKIPPED"
	StatusExcused Status = "EXCUSED"
	StatusUnknown Status = "UNKNOWN"
)

// Valid returns true when the status is one of the seven supported values.
func (s Status) Valid() bool {
	switch s {
	case StatusOnTime, StatusLate, StatusPending, StatusAbsent, StatusSkipped, StatusExcused, StatusUnknown:
		return true
	default:
		return false
	}
}

// Counted reports whether the status contributes a session to the
// attendance denominator. PENDING and UNKNOWN days carry no signal and are
// excluded entirely.
func (s Status) Counted() bool {
	switch s {
	case StatusOnTime, StatusLate, StatusAbsent, StatusSkipped, StatusExcused:
		return true
	default:
		return false
	}
}

// Present reports whether the status counts as an attended session.
func (s Status) Present() bool {
	switch s {
	case StatusOnTime, StatusLate, StatusExcused:
		return true
	default:
		return false
	}
}

// EvaluationMode selects how today's outcome feeds status and summary reads.
type EvaluationMode string

const (
	// ModePreview always evaluates today from live state, ignoring any
	// finalized record, so overrides and fresh taps show as a what-if.
	ModePreview EvaluationMode = "preview"
	// ModeTrustFinalized prefers today's finalized record when one exists.
	ModeTrustFinalized EvaluationMode = "trusted"
)

// Valid returns true for a supported evaluation mode.
func (m EvaluationMode) Valid() bool {
	return m == ModePreview || m == ModeTrustFinalized
}
