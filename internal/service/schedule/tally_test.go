package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gathering/internal/domain/plan"
)

var (
	d1 = plan.NewDate(2026, time.October, 23)
	d2 = plan.NewDate(2026, time.October, 24)
	d3 = plan.NewDate(2026, time.October, 25)
)

func participant(name string, answers map[plan.Date]plan.Attendance) plan.Participant {
	return plan.Participant{ID: name, Name: name, Availability: answers}
}

func TestTally_PicksMajority(t *testing.T) {
	participants := []plan.Participant{
		participant("P1", map[plan.Date]plan.Attendance{d1: plan.AttendanceYes, d2: plan.AttendanceYes}),
		participant("P2", map[plan.Date]plan.Attendance{d1: plan.AttendanceYes, d2: plan.AttendanceYes}),
		participant("P3", map[plan.Date]plan.Attendance{d1: plan.AttendanceNo, d2: plan.AttendanceYes}),
	}

	res, err := Tally([]plan.Date{d1, d2}, participants)
	require.NoError(t, err)
	assert.Equal(t, d2, res.Date)
	assert.Equal(t, 3, res.Count)
}

func TestTally_ResultIsMaximal(t *testing.T) {
	candidates := []plan.Date{d1, d2, d3}
	participants := []plan.Participant{
		participant("P1", map[plan.Date]plan.Attendance{d3: plan.AttendanceYes}),
		participant("P2", map[plan.Date]plan.Attendance{d1: plan.AttendanceYes, d3: plan.AttendanceYes}),
		participant("P3", map[plan.Date]plan.Attendance{d2: plan.AttendanceMaybe, d1: plan.AttendanceYes}),
		participant("P4", map[plan.Date]plan.Attendance{d3: plan.AttendanceYes}),
	}

	res, err := Tally(candidates, participants)
	require.NoError(t, err)

	for _, row := range Attendance(candidates, participants) {
		assert.GreaterOrEqual(t, res.Count, row.Yes, "date %s", row.Date)
	}
	assert.Equal(t, d3, res.Date)
}

func TestTally_TieGoesToEarliestDate(t *testing.T) {
	participants := []plan.Participant{
		participant("P1", map[plan.Date]plan.Attendance{d3: plan.AttendanceYes}),
		participant("P2", map[plan.Date]plan.Attendance{d1: plan.AttendanceYes}),
	}

	// d3 is listed first, but d1 is earlier.
	res, err := Tally([]plan.Date{d3, d1}, participants)
	require.NoError(t, err)
	assert.Equal(t, d1, res.Date)
	assert.Equal(t, 1, res.Count)
}

func TestTally_IgnoresNonCandidateDates(t *testing.T) {
	stray := plan.NewDate(2027, time.January, 1)
	participants := []plan.Participant{
		participant("P1", map[plan.Date]plan.Attendance{stray: plan.AttendanceYes, d1: plan.AttendanceYes}),
		participant("P2", map[plan.Date]plan.Attendance{stray: plan.AttendanceYes}),
	}

	res, err := Tally([]plan.Date{d1}, participants)
	require.NoError(t, err)
	assert.Equal(t, d1, res.Date)
}

func TestTally_InsufficientInput(t *testing.T) {
	_, err := Tally([]plan.Date{d1, d2}, nil)
	assert.ErrorIs(t, err, plan.ErrInsufficientInput)

	_, err = Tally([]plan.Date{d1, d2}, []plan.Participant{
		participant("P1", map[plan.Date]plan.Attendance{d1: plan.AttendanceNo, d2: plan.AttendanceMaybe}),
	})
	assert.ErrorIs(t, err, plan.ErrInsufficientInput)
}

func TestTallyDates(t *testing.T) {
	res, err := TallyDates([][]plan.Date{
		{d1, d2},
		{d2, d2},
		{d3, d2},
	})
	require.NoError(t, err)
	assert.Equal(t, d2, res.Date)
	assert.Equal(t, 3, res.Count)

	res, err = TallyDates([][]plan.Date{{d3}, {d1}})
	require.NoError(t, err)
	assert.Equal(t, d1, res.Date)

	_, err = TallyDates([][]plan.Date{{}, nil})
	assert.ErrorIs(t, err, plan.ErrInsufficientInput)
}

func TestAttendance(t *testing.T) {
	participants := []plan.Participant{
		participant("P1", map[plan.Date]plan.Attendance{d1: plan.AttendanceYes, d2: plan.AttendanceNo}),
		participant("P2", map[plan.Date]plan.Attendance{d1: plan.AttendanceMaybe}),
	}

	rows := Attendance([]plan.Date{d1, d2}, participants)
	require.Len(t, rows, 2)
	assert.Equal(t, DateCount{Date: d1, Weekday: "Fri", Yes: 1, Maybe: 1}, rows[0])
	assert.Equal(t, DateCount{Date: d2, Weekday: "Sat", No: 1}, rows[1])
}

func TestPreferences(t *testing.T) {
	participants := []plan.Participant{
		{Hobbies: []string{"music", "games"}, FavoriteFoods: []string{"sushi"}},
		{Hobbies: []string{"games", "games"}, FavoriteFoods: []string{"ramen", "sushi"}},
	}

	digest := Preferences(participants)
	assert.Equal(t, []Preference{{"games", 2}, {"music", 1}}, digest.Hobbies)
	assert.Equal(t, []Preference{{"sushi", 2}, {"ramen", 1}}, digest.Foods)
}
