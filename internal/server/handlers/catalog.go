// internal/server/handlers/catalog.go

package handlers

import (
	"net/http"

	"gathering/internal/domain/plan"
)

type purposeOption struct {
	ID    plan.Purpose `json:"id"`
	Label string       `json:"label"`
}

type optionsResponse struct {
	Hobbies     []string `json:"hobbies"`
	Foods       []string `json:"foods"`
	Attendances []string `json:"attendances"`
}

// ListPurposes returns the purposes a gathering can have
func ListPurposes(w http.ResponseWriter, r *http.Request) {
	purposes := plan.Purposes()
	out := make([]purposeOption, len(purposes))
	for i, p := range purposes {
		out[i] = purposeOption{ID: p, Label: p.Label()}
	}
	respondWithJSON(w, http.StatusOK, out)
}

// ListOptions returns the fixed hobby, food and attendance choices
func ListOptions(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, optionsResponse{
		Hobbies: plan.HobbyOptions,
		Foods:   plan.FoodOptions,
		Attendances: []string{
			string(plan.AttendanceYes),
			string(plan.AttendanceNo),
			string(plan.AttendanceMaybe),
		},
	})
}
