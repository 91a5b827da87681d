// internal/service/schedule/tally.go

package schedule

import (
	"github.com/samber/lo"

	"gathering/internal/domain/plan"
)

// Result is the outcome of a date tally
type Result struct {
	Date  plan.Date `json:"date"`
	Count int       `json:"count"`
}

// Tally counts, for every candidate date, the participants who answered yes
// and returns the date with the highest count. Ties go to the earliest date.
func Tally(candidates []plan.Date, participants []plan.Participant) (Result, error) {
	const op = "schedule.tally"

	if len(participants) == 0 {
		return Result{}, plan.E(plan.KindInsufficientInput, op, "no participants have been added", nil)
	}

	counts := make(map[plan.Date]int, len(candidates))
	for _, p := range participants {
		for _, d := range p.AvailableDates(candidates) {
			counts[d]++
		}
	}

	best, ok := pick(candidates, counts)
	if !ok {
		return Result{}, plan.E(plan.KindInsufficientInput, op, "no participant has selected an available date", nil)
	}
	return best, nil
}

// TallyDates is the flat form of Tally: each element is one participant's
// list of selected dates. Duplicates within one participant count once.
func TallyDates(selections [][]plan.Date) (Result, error) {
	const op = "schedule.tally_dates"

	perParticipant := lo.Map(selections, func(dates []plan.Date, _ int) []plan.Date {
		return lo.Uniq(dates)
	})
	all := lo.Flatten(perParticipant)
	if len(all) == 0 {
		return Result{}, plan.E(plan.KindInsufficientInput, op, "no participant has selected an available date", nil)
	}

	best, _ := pick(lo.Uniq(all), lo.CountValues(all))
	return best, nil
}

func pick(dates []plan.Date, counts map[plan.Date]int) (Result, bool) {
	var best Result
	found := false
	for _, d := range dates {
		n := counts[d]
		if n == 0 {
			continue
		}
		if !found || n > best.Count || (n == best.Count && d.Before(best.Date)) {
			best = Result{Date: d, Count: n}
			found = true
		}
	}
	return best, found
}
