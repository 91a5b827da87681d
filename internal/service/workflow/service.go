// internal/service/workflow/service.go

package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"gathering/internal/domain/plan"
	"gathering/internal/observability"
	"gathering/internal/service/game"
	"gathering/internal/service/geo"
	"gathering/internal/service/message"
	"gathering/internal/service/schedule"
	"gathering/internal/service/venue"
	"gathering/internal/service/weather"
)

// Session event types
const (
	EventSessionCreated     = "session_created"
	EventSessionDeleted     = "session_deleted"
	EventSessionExpired     = "session_expired"
	EventDatesChanged       = "dates_changed"
	EventPurposeSet         = "purpose_set"
	EventParticipantAdded   = "participant_added"
	EventParticipantUpdated = "participant_updated"
	EventParticipantRemoved = "participant_removed"
	EventVenuesFound        = "venues_found"
	EventVenueSelected      = "venue_selected"
	EventDateChosen         = "date_chosen"
	EventGameSuggested      = "game_suggested"
	EventWeatherForecast    = "weather_forecast"
	EventMessageComposed    = "message_composed"
)

const (
	// DefaultCandidateDays is the length of the default candidate list
	DefaultCandidateDays = 30
	// MaxCandidateDays bounds the default candidate list
	MaxCandidateDays = 90
)

// Config contains configuration for the workflow service
type Config struct {
	SessionTTL      time.Duration
	JanitorInterval time.Duration
	Location        *time.Location
	StartTime       string
	DefaultLocation string
}

// Service runs planning sessions. It owns every session's state; callers
// only ever see copies.
type Service struct {
	locator   *geo.Locator
	finder    *venue.Finder
	suggester *game.Suggester
	weather   *weather.Service
	events    plan.EventPublisher
	metrics   *observability.Collector
	config    Config
	logger    *zap.Logger
	now       func() time.Time

	sessions map[string]*session
	mu       sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a new workflow service and starts its session janitor
func NewService(
	locator *geo.Locator,
	finder *venue.Finder,
	suggester *game.Suggester,
	weatherService *weather.Service,
	events plan.EventPublisher,
	metrics *observability.Collector,
	config Config,
	logger *zap.Logger,
) *Service {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.StartTime == "" {
		config.StartTime = message.DefaultStartTime
	}
	if config.DefaultLocation == "" {
		config.DefaultLocation = "東京都"
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	if config.JanitorInterval <= 0 {
		config.JanitorInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		locator:   locator,
		finder:    finder,
		suggester: suggester,
		weather:   weatherService,
		events:    events,
		metrics:   metrics,
		config:    config,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*session),
		ctx:       ctx,
		cancel:    cancel,
	}

	s.wg.Add(1)
	go s.runJanitor()

	return s
}

// today returns the current calendar date in the configured zone
func (s *Service) today() plan.Date {
	return plan.DateOf(s.now().In(s.config.Location))
}

// AddCandidateDate appends d to the candidate dates. Adding a date twice is
// a no-op.
func (s *Service) AddCandidateDate(ctx context.Context, id string, d plan.Date) (plan.WorkflowState, error) {
	if d.IsZero() {
		return plan.WorkflowState{}, plan.E(plan.KindInvalidInput, "workflow.add_date", "a date is required", nil)
	}

	state, err := s.update(id, func(st *plan.WorkflowState) error {
		if !st.HasCandidate(d) {
			st.CandidateDates = append(st.CandidateDates, d)
		}
		return nil
	})
	if err != nil {
		return plan.WorkflowState{}, err
	}

	s.publish(ctx, id, EventDatesChanged, state.CandidateDates)
	return state, nil
}

// RemoveCandidateDate removes d from the candidate dates and from every
// participant's answers
func (s *Service) RemoveCandidateDate(ctx context.Context, id string, d plan.Date) (plan.WorkflowState, error) {
	state, err := s.update(id, func(st *plan.WorkflowState) error {
		if !st.HasCandidate(d) {
			return plan.E(plan.KindNotFound, "workflow.remove_date", fmt.Sprintf("%s is not a candidate date", d), nil)
		}
		st.CandidateDates = lo.Without(st.CandidateDates, d)
		for i := range st.Participants {
			delete(st.Participants[i].Availability, d)
		}
		if st.OptimalDate != nil && *st.OptimalDate == d {
			st.OptimalDate = nil
		}
		if st.ChosenDate != nil && *st.ChosenDate == d {
			st.ChosenDate = nil
			st.Weather = nil
		}
		return nil
	})
	if err != nil {
		return plan.WorkflowState{}, err
	}

	s.publish(ctx, id, EventDatesChanged, state.CandidateDates)
	return state, nil
}

// DefaultCandidateDates adds the next days calendar days, starting today.
// days <= 0 means DefaultCandidateDays.
func (s *Service) DefaultCandidateDates(ctx context.Context, id string, days int) (plan.WorkflowState, error) {
	if days <= 0 {
		days = DefaultCandidateDays
	}
	if days > MaxCandidateDays {
		return plan.WorkflowState{}, plan.E(plan.KindInvalidInput, "workflow.default_dates",
			fmt.Sprintf("at most %d days can be proposed at once", MaxCandidateDays), nil)
	}

	start := s.today()
	state, err := s.update(id, func(st *plan.WorkflowState) error {
		for i := 0; i < days; i++ {
			if d := start.AddDays(i); !st.HasCandidate(d) {
				st.CandidateDates = append(st.CandidateDates, d)
			}
		}
		return nil
	})
	if err != nil {
		return plan.WorkflowState{}, err
	}

	s.publish(ctx, id, EventDatesChanged, state.CandidateDates)
	return state, nil
}

// SetPurpose records what kind of gathering is planned
func (s *Service) SetPurpose(ctx context.Context, id string, purpose plan.Purpose) (plan.WorkflowState, error) {
	if !purpose.Valid() {
		return plan.WorkflowState{}, plan.E(plan.KindInvalidInput, "workflow.set_purpose",
			fmt.Sprintf("unknown purpose %q", purpose), nil)
	}

	state, err := s.update(id, func(st *plan.WorkflowState) error {
		if st.Purpose != purpose {
			st.SuggestedGame = nil
		}
		st.Purpose = purpose
		return nil
	})
	if err != nil {
		return plan.WorkflowState{}, err
	}

	s.publish(ctx, id, EventPurposeSet, purpose)
	return state, nil
}

// Summary is the organizer's overview of a session
type Summary struct {
	Purpose      plan.Purpose         `json:"purpose,omitempty"`
	PurposeLabel string               `json:"purpose_label,omitempty"`
	Participants int                  `json:"participants"`
	Attendance   []schedule.DateCount `json:"attendance"`
	Best         *schedule.Result     `json:"best,omitempty"`
	Preferences  schedule.Digest      `json:"preferences"`
}

// Summary returns the attendance table, the best date so far and the
// group's preferences
func (s *Service) Summary(ctx context.Context, id string) (Summary, error) {
	st, err := s.view(id)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Purpose:      st.Purpose,
		PurposeLabel: st.Purpose.Label(),
		Participants: len(st.Participants),
		Attendance:   schedule.Attendance(st.CandidateDates, st.Participants),
		Preferences:  schedule.Preferences(st.Participants),
	}
	if best, err := schedule.Tally(st.CandidateDates, st.Participants); err == nil {
		sum.Best = &best
	}
	return sum, nil
}

// SearchOutcome is the result of a venue search
type SearchOutcome struct {
	OptimalDate      schedule.Result        `json:"optimal_date"`
	Centroid         plan.Coordinate        `json:"centroid"`
	SpreadKm         float64                `json:"spread_km"`
	Venues           []plan.VenueCandidate  `json:"venues"`
	LocationFailures []plan.LocationFailure `json:"location_failures,omitempty"`
}

// FindVenues picks the best date, geocodes the participants, and searches
// for venues around their meeting point. Participants whose location cannot
// be resolved are reported and left out of the meeting point.
func (s *Service) FindVenues(ctx context.Context, id string) (SearchOutcome, error) {
	const op = "workflow.find_venues"
	var out SearchOutcome

	_, err := s.update(id, func(st *plan.WorkflowState) error {
		best, err := schedule.Tally(st.CandidateDates, st.Participants)
		if err != nil {
			return err
		}

		res := s.locator.Locate(ctx, st.Participants)
		coords := res.Coordinates()
		center, err := geo.Centroid(coords)
		if err != nil {
			if len(res.Failures) > 0 {
				return plan.E(plan.KindInsufficientInput, op, "none of the participants' locations could be found", err)
			}
			return plan.E(plan.KindInsufficientInput, op, "no participant has entered a nearest station", err)
		}

		venues, err := s.finder.Find(ctx, center)
		if err != nil {
			return err
		}

		st.OptimalDate = &best.Date
		st.Centroid = &center
		st.Venues = venues
		st.SelectedVenue = nil
		st.LocationFailures = res.Failures

		out = SearchOutcome{
			OptimalDate:      best,
			Centroid:         center,
			SpreadKm:         geo.Spread(center, coords),
			Venues:           venues,
			LocationFailures: res.Failures,
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("venue search failed", zap.String("session_id", id), zap.Error(err))
		return SearchOutcome{}, err
	}

	s.logger.Info("venues found",
		zap.String("session_id", id),
		zap.String("date", out.OptimalDate.Date.String()),
		zap.Int("venues", len(out.Venues)),
		zap.Int("location_failures", len(out.LocationFailures)),
	)
	s.publish(ctx, id, EventVenuesFound, out)
	return out, nil
}

// SelectVenue marks one of the found venues as the chosen one
func (s *Service) SelectVenue(ctx context.Context, id string, index int) (plan.VenueCandidate, error) {
	state, err := s.update(id, func(st *plan.WorkflowState) error {
		if len(st.Venues) == 0 {
			return plan.E(plan.KindInsufficientInput, "workflow.select_venue", "search for venues first", nil)
		}
		if index < 0 || index >= len(st.Venues) {
			return plan.E(plan.KindInvalidInput, "workflow.select_venue",
				fmt.Sprintf("venue index must be between 0 and %d", len(st.Venues)-1), nil)
		}
		st.SelectedVenue = &index
		return nil
	})
	if err != nil {
		return plan.VenueCandidate{}, err
	}

	selected, _ := state.Selected()
	s.publish(ctx, id, EventVenueSelected, selected)
	return selected, nil
}

// ChooseDate fixes the date of the gathering. A zero date takes the
// optimal date of the last venue search.
func (s *Service) ChooseDate(ctx context.Context, id string, d plan.Date) (plan.WorkflowState, error) {
	state, err := s.update(id, func(st *plan.WorkflowState) error {
		chosen := d
		if chosen.IsZero() {
			if st.OptimalDate == nil {
				return plan.E(plan.KindInsufficientInput, "workflow.choose_date", "no optimal date has been found yet", nil)
			}
			chosen = *st.OptimalDate
		}
		if st.Weather != nil && st.Weather.Date != chosen {
			st.Weather = nil
		}
		st.ChosenDate = &chosen
		return nil
	})
	if err != nil {
		return plan.WorkflowState{}, err
	}

	s.publish(ctx, id, EventDateChosen, state.ChosenDate)
	return state, nil
}

// SuggestGame asks for a party game matching the session's purpose. The
// returned text is always readable; only a missing session is an error.
func (s *Service) SuggestGame(ctx context.Context, id string) (string, error) {
	var text string
	_, err := s.update(id, func(st *plan.WorkflowState) error {
		suggestion, err := s.suggester.Suggest(ctx, st.Purpose)
		if err != nil {
			text = game.FailureText(err)
			return nil
		}
		text = suggestion
		st.SuggestedGame = &suggestion
		return nil
	})
	if err != nil {
		return "", err
	}

	s.publish(ctx, id, EventGameSuggested, text)
	return text, nil
}

// Forecast fetches the weather for the session's date at location. An
// empty location means the configured default.
func (s *Service) Forecast(ctx context.Context, id, location string) (plan.WeatherReport, error) {
	if strings.TrimSpace(location) == "" {
		location = s.config.DefaultLocation
	}

	var report plan.WeatherReport
	_, err := s.update(id, func(st *plan.WorkflowState) error {
		date := st.EffectiveDate()
		if date == nil {
			return plan.E(plan.KindIncompletePlan, "workflow.forecast", "choose a date before checking the weather", nil)
		}

		r, err := s.weather.Forecast(ctx, *date, location)
		if err != nil {
			return err
		}
		report = r
		st.Weather = &r
		return nil
	})
	if err != nil {
		s.logger.Warn("weather forecast failed", zap.String("session_id", id), zap.Error(err))
		return plan.WeatherReport{}, err
	}

	s.publish(ctx, id, EventWeatherForecast, report)
	return report, nil
}

// Plan assembles the event plan from the session's selections
func (s *Service) Plan(ctx context.Context, id string) (plan.EventPlan, error) {
	st, err := s.view(id)
	if err != nil {
		return plan.EventPlan{}, err
	}

	p := plan.EventPlan{
		StartTime:     s.config.StartTime,
		SuggestedGame: st.SuggestedGame,
	}
	if d := st.EffectiveDate(); d != nil {
		p.Date = *d
	}
	if v, ok := st.Selected(); ok {
		p.Venue = v
	}
	if st.Weather != nil && st.Weather.Date == p.Date {
		summary := fmt.Sprintf("%s. %s", st.Weather.Label, st.Weather.Message)
		p.WeatherSummary = &summary
	}
	return p, nil
}

// ComposeMessage renders the shareable announcement for the session
func (s *Service) ComposeMessage(ctx context.Context, id string) (string, error) {
	p, err := s.Plan(ctx, id)
	if err != nil {
		return "", err
	}

	text, err := message.Compose(p)
	if err != nil {
		return "", err
	}

	s.metrics.MessageComposed()
	s.publish(ctx, id, EventMessageComposed, text)
	return text, nil
}
