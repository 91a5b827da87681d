package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_ParseAndFormat(t *testing.T) {
	d, err := ParseDate("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2026, time.October, 20), d)
	assert.Equal(t, "2026-10-20", d.String())
	assert.Equal(t, time.Tuesday, d.Weekday())

	_, err = ParseDate("20/10/2026")
	assert.Error(t, err)
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2026, time.December, 30)
	assert.Equal(t, NewDate(2027, time.January, 2), d.AddDays(3))
	assert.Equal(t, 3, d.AddDays(3).DaysSince(d))
	assert.Equal(t, -1, d.AddDays(-1).DaysSince(d))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.Before(d))
}

func TestDate_JSONMapKey(t *testing.T) {
	p := Participant{
		Name: "Aki",
		Availability: map[Date]Attendance{
			NewDate(2026, time.October, 20): AttendanceYes,
		},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"2026-10-20":"yes"`)

	var back Participant
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.IsAvailable(NewDate(2026, time.October, 20)))
}

func TestParticipant_AvailableDates(t *testing.T) {
	d1 := NewDate(2026, time.October, 20)
	d2 := NewDate(2026, time.October, 21)
	d3 := NewDate(2026, time.October, 22)
	p := Participant{Availability: map[Date]Attendance{
		d1: AttendanceYes,
		d2: AttendanceMaybe,
		d3: AttendanceYes,
	}}

	assert.Equal(t, []Date{d3, d1}, p.AvailableDates([]Date{d3, d2, d1}))
}

func TestVenueCandidate_Fallbacks(t *testing.T) {
	site := "https://example.com"
	empty := ""
	v := VenueCandidate{Website: &site, Phone: &empty}

	assert.Equal(t, site, v.WebsiteOrFallback())
	assert.Equal(t, FallbackPhone, v.PhoneOrFallback())
	assert.Equal(t, FallbackAddress, v.AddressOrFallback())
	assert.Equal(t, 0.0, v.RatingValue())
}

func TestWorkflowState_CloneIsDeep(t *testing.T) {
	d := NewDate(2026, time.October, 20)
	idx := 0
	s := WorkflowState{
		CandidateDates: []Date{d},
		Participants: []Participant{{
			Name:         "Aki",
			Availability: map[Date]Attendance{d: AttendanceYes},
			Hobbies:      []string{"music"},
		}},
		SelectedVenue: &idx,
	}

	c := s.Clone()
	c.Participants[0].Availability[d] = AttendanceNo
	c.Participants[0].Hobbies[0] = "travel"
	*c.SelectedVenue = 3

	assert.Equal(t, AttendanceYes, s.Participants[0].Availability[d])
	assert.Equal(t, "music", s.Participants[0].Hobbies[0])
	assert.Equal(t, 0, *s.SelectedVenue)
}

func TestPurpose(t *testing.T) {
	for _, p := range Purposes() {
		assert.True(t, p.Valid())
		assert.NotEmpty(t, p.Label())
	}
	assert.False(t, Purpose("karaoke").Valid())
}

func TestError_KindMatching(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("find venues: %w", E(KindServiceUnavailable, "places.nearby", "place search is unavailable", cause))

	assert.True(t, errors.Is(err, ErrServiceUnavailable))
	assert.False(t, errors.Is(err, ErrOutOfRange))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, KindServiceUnavailable, KindOf(err))
	assert.Equal(t, "place search is unavailable", Describe(err))
	assert.Equal(t, "find venues: places.nearby: place search is unavailable: connection refused", err.Error())
}

func TestError_DescribeDefaults(t *testing.T) {
	assert.Equal(t, "unsupported date range", Describe(ErrOutOfRange))
	assert.Equal(t, "unexpected error", Describe(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, "", Describe(nil))
}
