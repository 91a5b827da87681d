// internal/service/schedule/summary.go

package schedule

import (
	"sort"

	"github.com/samber/lo"

	"gathering/internal/domain/plan"
)

// DateCount is one row of the attendance table
type DateCount struct {
	Date    plan.Date `json:"date"`
	Weekday string    `json:"weekday"`
	Yes     int       `json:"yes"`
	No      int       `json:"no"`
	Maybe   int       `json:"maybe"`
}

// Attendance builds the attendance table in candidate order. Unanswered
// dates are not counted.
func Attendance(candidates []plan.Date, participants []plan.Participant) []DateCount {
	rows := make([]DateCount, 0, len(candidates))
	for _, d := range candidates {
		row := DateCount{Date: d, Weekday: d.Weekday().String()[:3]}
		for _, p := range participants {
			switch p.Availability[d] {
			case plan.AttendanceYes:
				row.Yes++
			case plan.AttendanceNo:
				row.No++
			case plan.AttendanceMaybe:
				row.Maybe++
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Preference is how many participants picked an option
type Preference struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// Digest summarizes the group's hobbies and favourite foods
type Digest struct {
	Hobbies []Preference `json:"hobbies"`
	Foods   []Preference `json:"foods"`
}

// Preferences counts hobby and food choices, most popular first
func Preferences(participants []plan.Participant) Digest {
	hobbies := lo.FlatMap(participants, func(p plan.Participant, _ int) []string {
		return lo.Uniq(p.Hobbies)
	})
	foods := lo.FlatMap(participants, func(p plan.Participant, _ int) []string {
		return lo.Uniq(p.FavoriteFoods)
	})
	return Digest{
		Hobbies: ranked(plan.HobbyOptions, lo.CountValues(hobbies)),
		Foods:   ranked(plan.FoodOptions, lo.CountValues(foods)),
	}
}

// ranked keeps the option list order among equal counts
func ranked(options []string, counts map[string]int) []Preference {
	prefs := make([]Preference, 0, len(counts))
	for _, o := range options {
		if n := counts[o]; n > 0 {
			prefs = append(prefs, Preference{Option: o, Count: n})
		}
	}
	sort.SliceStable(prefs, func(i, j int) bool {
		return prefs[i].Count > prefs[j].Count
	})
	return prefs
}
