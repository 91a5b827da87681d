// internal/service/weather/service.go

package weather

import (
	"context"
	"strings"
	"time"

	"gathering/internal/domain/plan"
)

// DefaultCityCode is used when a location is not in the city table (Tokyo)
const DefaultCityCode = "130010"

// DefaultCities maps location names to forecast city codes
var DefaultCities = map[string]string{
	"Tokyo": "130010",
	"東京":    "130010",
	"東京都":   "130010",
	"Osaka": "270000",
	"大阪":    "270000",
	"大阪府":   "270000",
}

// GenericMessage is used when no keyword matches the forecast label
const GenericMessage = "Whatever the weather, a great time is guaranteed!"

type keywordMessage struct {
	keywords []string
	message  string
}

// keywordMessages is checked in order; the first entry with a matching
// keyword wins.
var keywordMessages = []keywordMessage{
	{
		keywords: []string{"雨", "rain", "shower"},
		message:  "Rain can't stop us! Bring a nice umbrella and make it stylish.",
	},
	{
		keywords: []string{"晴", "sun", "clear"},
		message:  "The sun is celebrating with us! The beer will taste even better.",
	},
	{
		keywords: []string{"曇", "cloud"},
		message:  "Cloudy skies, bright spirits! A fun time is waiting.",
	},
}

// Message maps a forecast label to a short cheerful message
func Message(label string) string {
	lower := strings.ToLower(label)
	for _, km := range keywordMessages {
		for _, k := range km.keywords {
			if strings.Contains(lower, k) {
				return km.message
			}
		}
	}
	return GenericMessage
}

// Config contains configuration for the weather service
type Config struct {
	Location        *time.Location
	DefaultCityCode string
	Cities          map[string]string
}

// Service reports the forecast for a planned date
type Service struct {
	provider plan.ForecastProvider
	config   Config
	now      func() time.Time
}

// NewService creates a new weather service
func NewService(provider plan.ForecastProvider, config Config) *Service {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.DefaultCityCode == "" {
		config.DefaultCityCode = DefaultCityCode
	}
	if config.Cities == nil {
		config.Cities = DefaultCities
	}
	return &Service{
		provider: provider,
		config:   config,
		now:      time.Now,
	}
}

// CityCode returns the forecast city code for location
func (s *Service) CityCode(location string) string {
	if code, ok := s.config.Cities[strings.TrimSpace(location)]; ok {
		return code
	}
	return s.config.DefaultCityCode
}

// Forecast returns the forecast label and message for date at location
func (s *Service) Forecast(ctx context.Context, date plan.Date, location string) (plan.WeatherReport, error) {
	const op = "weather.forecast"

	today := plan.DateOf(s.now().In(s.config.Location))
	offset := date.DaysSince(today)
	if offset < 0 {
		return plan.WeatherReport{}, plan.E(plan.KindOutOfRange, op, "no forecast is available for a past date", nil)
	}

	days, err := s.provider.Forecast(ctx, s.CityCode(location))
	if err != nil {
		return plan.WeatherReport{}, err
	}
	if offset >= len(days) {
		return plan.WeatherReport{}, plan.E(plan.KindOutOfRange, op, "no forecast is available for that date yet", nil)
	}

	label := days[offset].Label
	return plan.WeatherReport{
		Date:     date,
		Location: location,
		Label:    label,
		Message:  Message(label),
	}, nil
}
