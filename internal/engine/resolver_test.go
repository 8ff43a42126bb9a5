package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/classtap-api/internal/models"
)

func strPtr(s string) *string { return &s }

func statusPtr(s models.Status) *models.Status { return &s }

// cs410 mirrors the canonical course used across the rule tests:
// 09:00-10:15 with 10 minutes of grace on both ends and a 30 minute
// minimum stay.
func cs410() models.Course {
	return models.Course{
		ID:                "course-1",
		Code:              "CS410",
		Name:              "Distributed Systems",
		StartTime:         "09:00",
		EndTime:           "10:15",
		GraceMinutes:      10,
		MinMinutesPresent: 30,
	}
}

func at(clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", "2025-03-10 "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolveAutomaticFullSession(t *testing.T) {
	cases := []struct {
		name    string
		arrival *string
		leave   *string
		now     string
		want    models.Status
	}{
		{
			name:    "on time within both grace windows",
			arrival: strPtr("2025-03-10 09:05"),
			leave:   strPtr("2025-03-10 10:10"),
			now:     "11:00:00",
			want:    models.StatusOnTime,
		},
		{
			name:    "late arrival regardless of leave",
			arrival: strPtr("2025-03-10 09:25"),
			leave:   strPtr("2025-03-10 10:10"),
			now:     "11:00:00",
			want:    models.StatusLate,
		},
		{
			name:    "left past the grace window counts late",
			arrival: strPtr("2025-03-10 09:05"),
			leave:   strPtr("2025-03-10 10:40"),
			now:     "11:00:00",
			want:    models.StatusLate,
		},
		{
			name:    "stayed too briefly",
			arrival: strPtr("2025-03-10 09:02"),
			leave:   strPtr("2025-03-10 09:30"),
			now:     "11:00:00",
			want:    models.StatusSkipped,
		},
		{
			name:    "leave before arrival is bad data",
			arrival: strPtr("2025-03-10 10:00"),
			leave:   strPtr("2025-03-10 09:00"),
			now:     "11:00:00",
			want:    models.StatusUnknown,
		},
		{
			name:    "malformed arrival timestamp",
			arrival: strPtr("not-a-timestamp"),
			leave:   strPtr("2025-03-10 10:10"),
			now:     "11:00:00",
			want:    models.StatusUnknown,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := models.Enrollment{LastArrival: tc.arrival, LastLeave: tc.leave}
			got := ResolveAutomatic(cs410(), state, at(tc.now))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveAutomaticNoArrival(t *testing.T) {
	state := models.Enrollment{}

	// window still open at 09:30 (570 <= 625)
	assert.Equal(t, models.StatusPending, ResolveAutomatic(cs410(), state, at("09:30:00")))
	// whole window elapsed at 10:30 (630 > 625)
	assert.Equal(t, models.StatusAbsent, ResolveAutomatic(cs410(), state, at("10:30:00")))
}

func TestResolveAutomaticNoClockOut(t *testing.T) {
	early := models.Enrollment{LastArrival: strPtr("2025-03-10 09:05")}
	late := models.Enrollment{LastArrival: strPtr("2025-03-10 09:25")}

	assert.Equal(t, models.StatusOnTime, ResolveAutomatic(cs410(), early, at("09:45:00")))
	assert.Equal(t, models.StatusLate, ResolveAutomatic(cs410(), late, at("09:45:00")))
	// session over without a clock-out
	assert.Equal(t, models.StatusSkipped, ResolveAutomatic(cs410(), early, at("10:30:00")))
}

func TestResolveAutomaticUnparsableConfig(t *testing.T) {
	course := cs410()
	course.StartTime = ""
	state := models.Enrollment{LastArrival: strPtr("2025-03-10 09:05")}
	assert.Equal(t, models.StatusUnknown, ResolveAutomatic(course, state, at("09:30:00")))

	course = cs410()
	course.EndTime = "bogus"
	assert.Equal(t, models.StatusUnknown, ResolveAutomatic(course, state, at("09:30:00")))
}

// The resolver must stay total over the closed status set and re-entrant:
// the same inputs always resolve to the same, valid status.
func TestResolveAutomaticClosedSetAndIdempotent(t *testing.T) {
	arrivals := []*string{nil, strPtr("2025-03-10 09:05"), strPtr("2025-03-10 09:40"), strPtr("bad")}
	leaves := []*string{nil, strPtr("2025-03-10 09:20"), strPtr("2025-03-10 10:10"), strPtr("bad")}
	clocks := []string{"08:00:00", "09:30:00", "10:30:00", "23:59:59"}

	for _, arrival := range arrivals {
		for _, leave := range leaves {
			for _, clock := range clocks {
				state := models.Enrollment{LastArrival: arrival, LastLeave: leave}
				first := ResolveAutomatic(cs410(), state, at(clock))
				second := ResolveAutomatic(cs410(), state, at(clock))
				assert.True(t, first.Valid(), "resolver returned %q", first)
				assert.Equal(t, first, second)
			}
		}
	}
}
