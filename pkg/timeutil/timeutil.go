package timeutil

import (
	"strconv"
	"strings"
)

// Minutes is a minute-of-day offset parsed from raw tap or config input.
// A value can be absent (no input at all) or invalid (input present but
// unparsable); callers must be able to tell the two apart, so neither is
// collapsed into a zero value.
type Minutes struct {
	value   float64
	present bool
	invalid bool
}

// Absent reports whether no input was supplied.
func (m Minutes) Absent() bool { return !m.present && !m.invalid }

// Invalid reports whether input was supplied but could not be parsed.
func (m Minutes) Invalid() bool { return m.invalid }

// Valid reports whether the offset holds a usable value.
func (m Minutes) Valid() bool { return m.present && !m.invalid }

// Value returns the minute offset. Only meaningful when Valid.
func (m Minutes) Value() float64 { return m.value }

// AbsentMinutes marks missing input.
func AbsentMinutes() Minutes { return Minutes{} }

// InvalidMinutes marks unparsable input.
func InvalidMinutes() Minutes { return Minutes{invalid: true} }

// MinutesOf wraps a known-good minute offset.
func MinutesOf(v float64) Minutes { return Minutes{value: v, present: true} }

// MinuteOfTimeString parses a course time-of-day string ("HH:MM") into a
// minute offset.
func MinuteOfTimeString(s string) Minutes {
	if s == "" {
		return AbsentMinutes()
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return InvalidMinutes()
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return InvalidMinutes()
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return InvalidMinutes()
	}
	return MinutesOf(float64(hour*60 + minute))
}

// MinuteOfTimestamp parses a raw tap timestamp ("YYYY-MM-DD HH:MM" or
// "YYYY-MM-DD HH:MM:SS") into a fractional minute-of-day offset. The date
// part is carried opaquely by the store; only its presence is checked here.
func MinuteOfTimestamp(ts string) Minutes {
	if ts == "" {
		return AbsentMinutes()
	}
	parts := strings.Fields(ts)
	if len(parts) < 2 {
		return InvalidMinutes()
	}
	clock := strings.Split(parts[1], ":")
	if len(clock) < 2 {
		return InvalidMinutes()
	}
	hour, err := strconv.Atoi(clock[0])
	if err != nil {
		return InvalidMinutes()
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil {
		return InvalidMinutes()
	}
	total := float64(hour*60 + minute)
	if len(clock) >= 3 && clock[2] != "" {
		seconds, err := strconv.Atoi(clock[2])
		if err != nil {
			return InvalidMinutes()
		}
		total += float64(seconds) / 60
	}
	return MinutesOf(total)
}

// SessionDuration returns the minutes between an arrival and a leave tap.
// Invalid when either timestamp is unparsable or the leave precedes the
// arrival; absent when either tap has not happened yet.
func SessionDuration(arrivalTS, leaveTS string) Minutes {
	arrival := MinuteOfTimestamp(arrivalTS)
	leave := MinuteOfTimestamp(leaveTS)
	if arrival.Invalid() || leave.Invalid() {
		return InvalidMinutes()
	}
	if arrival.Absent() || leave.Absent() {
		return AbsentMinutes()
	}
	if leave.Value() < arrival.Value() {
		return InvalidMinutes()
	}
	return MinutesOf(leave.Value() - arrival.Value())
}
