// internal/domain/plan/model.go

package plan

import (
	"time"
)

// Attendance is a participant's answer for one candidate date
type Attendance string

const (
	AttendanceYes   Attendance = "yes"
	AttendanceNo    Attendance = "no"
	AttendanceMaybe Attendance = "maybe"
)

// Valid reports whether a is one of the known answers
func (a Attendance) Valid() bool {
	switch a {
	case AttendanceYes, AttendanceNo, AttendanceMaybe:
		return true
	}
	return false
}

// Purpose identifies what kind of gathering is being planned
type Purpose string

const (
	PurposeFormalCompany Purpose = "formal_company"
	PurposeCasualCompany Purpose = "casual_company"
	PurposeMixer         Purpose = "mixer"
	PurposeFriendsOuting Purpose = "friends_outing"
)

var purposeLabels = map[Purpose]string{
	PurposeFormalCompany: "formal company gathering",
	PurposeCasualCompany: "casual gathering with colleagues",
	PurposeMixer:         "mixer",
	PurposeFriendsOuting: "outing with friends",
}

// Purposes returns all purposes in display order
func Purposes() []Purpose {
	return []Purpose{
		PurposeFormalCompany,
		PurposeCasualCompany,
		PurposeMixer,
		PurposeFriendsOuting,
	}
}

// Label returns the human readable description of p
func (p Purpose) Label() string {
	return purposeLabels[p]
}

// Valid reports whether p is a known purpose
func (p Purpose) Valid() bool {
	_, ok := purposeLabels[p]
	return ok
}

// HobbyOptions and FoodOptions are the fixed choices offered to participants
var (
	HobbyOptions = []string{"sports", "games", "reading", "movies", "music", "travel"}
	FoodOptions  = []string{"japanese", "italian", "chinese", "french", "yakiniku", "sushi", "curry", "ramen"}
)

// Fallback labels used when a venue detail is missing
const (
	FallbackWebsite = "no official site"
	FallbackPhone   = "no phone listed"
	FallbackAddress = "no address listed"
)

// Coordinate is a latitude/longitude pair
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Participant is one member of the group
type Participant struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Availability  map[Date]Attendance `json:"availability"`
	Location      string              `json:"location"`
	Hobbies       []string            `json:"hobbies,omitempty"`
	FavoriteFoods []string            `json:"favorite_foods,omitempty"`
}

// IsAvailable reports whether p answered yes for d
func (p Participant) IsAvailable(d Date) bool {
	return p.Availability[d] == AttendanceYes
}

// AvailableDates returns the dates p answered yes for, in candidate order
func (p Participant) AvailableDates(candidates []Date) []Date {
	var dates []Date
	for _, d := range candidates {
		if p.IsAvailable(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// VenueCandidate is a venue returned by place search, optionally enriched
// with details
type VenueCandidate struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Rating   *float64 `json:"rating,omitempty"`
	Website  *string  `json:"website,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Address  *string  `json:"address,omitempty"`
}

// RatingValue returns the rating, or 0 when the venue has none
func (v VenueCandidate) RatingValue() float64 {
	if v.Rating == nil {
		return 0
	}
	return *v.Rating
}

// WebsiteOrFallback returns the website or the fallback label
func (v VenueCandidate) WebsiteOrFallback() string {
	return valueOr(v.Website, FallbackWebsite)
}

// PhoneOrFallback returns the phone number or the fallback label
func (v VenueCandidate) PhoneOrFallback() string {
	return valueOr(v.Phone, FallbackPhone)
}

// AddressOrFallback returns the full address or the fallback label
func (v VenueCandidate) AddressOrFallback() string {
	return valueOr(v.Address, FallbackAddress)
}

// VenueDetails is the supplementary information for a venue
type VenueDetails struct {
	Website string
	Phone   string
	Address string
}

// WeatherReport is the forecast for the chosen date
type WeatherReport struct {
	Date     Date   `json:"date"`
	Location string `json:"location"`
	Label    string `json:"label"`
	Message  string `json:"message"`
}

// LocationFailure records a participant whose location could not be resolved
type LocationFailure struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	Reason        string `json:"reason"`
}

// EventPlan is the final set of selections used to render the message
type EventPlan struct {
	Date           Date           `json:"date"`
	StartTime      string         `json:"start_time"`
	Venue          VenueCandidate `json:"venue"`
	SuggestedGame  *string        `json:"suggested_game,omitempty"`
	WeatherSummary *string        `json:"weather_summary,omitempty"`
}

// WorkflowState is everything one planning session knows. It is a plain
// value; the workflow service owns the only mutable copy.
type WorkflowState struct {
	ID               string            `json:"id"`
	CandidateDates   []Date            `json:"candidate_dates"`
	Purpose          Purpose           `json:"purpose,omitempty"`
	Participants     []Participant     `json:"participants"`
	OptimalDate      *Date             `json:"optimal_date,omitempty"`
	ChosenDate       *Date             `json:"chosen_date,omitempty"`
	Centroid         *Coordinate       `json:"centroid,omitempty"`
	Venues           []VenueCandidate  `json:"venues"`
	SelectedVenue    *int              `json:"selected_venue,omitempty"`
	LocationFailures []LocationFailure `json:"location_failures,omitempty"`
	SuggestedGame    *string           `json:"suggested_game,omitempty"`
	Weather          *WeatherReport    `json:"weather,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// HasCandidate reports whether d is one of the session's candidate dates
func (s WorkflowState) HasCandidate(d Date) bool {
	for _, c := range s.CandidateDates {
		if c == d {
			return true
		}
	}
	return false
}

// EffectiveDate returns the chosen date, falling back to the optimal date
func (s WorkflowState) EffectiveDate() *Date {
	if s.ChosenDate != nil {
		return s.ChosenDate
	}
	return s.OptimalDate
}

// Selected returns the selected venue, if any
func (s WorkflowState) Selected() (VenueCandidate, bool) {
	if s.SelectedVenue == nil || *s.SelectedVenue < 0 || *s.SelectedVenue >= len(s.Venues) {
		return VenueCandidate{}, false
	}
	return s.Venues[*s.SelectedVenue], true
}

// Clone returns a deep copy of s
func (s WorkflowState) Clone() WorkflowState {
	out := s
	out.CandidateDates = append([]Date(nil), s.CandidateDates...)
	out.Participants = make([]Participant, len(s.Participants))
	for i, p := range s.Participants {
		out.Participants[i] = p.clone()
	}
	out.Venues = append([]VenueCandidate(nil), s.Venues...)
	out.LocationFailures = append([]LocationFailure(nil), s.LocationFailures...)
	out.OptimalDate = clonePtr(s.OptimalDate)
	out.ChosenDate = clonePtr(s.ChosenDate)
	out.Centroid = clonePtr(s.Centroid)
	out.SelectedVenue = clonePtr(s.SelectedVenue)
	out.SuggestedGame = clonePtr(s.SuggestedGame)
	out.Weather = clonePtr(s.Weather)
	return out
}

func (p Participant) clone() Participant {
	out := p
	out.Availability = make(map[Date]Attendance, len(p.Availability))
	for d, a := range p.Availability {
		out.Availability[d] = a
	}
	out.Hobbies = append([]string(nil), p.Hobbies...)
	out.FavoriteFoods = append([]string(nil), p.FavoriteFoods...)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func valueOr(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}
