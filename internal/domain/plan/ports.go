// internal/domain/plan/ports.go

package plan

import (
	"context"
)

// Geocoder resolves free text such as a station name to a coordinate
type Geocoder interface {
	// Geocode returns the first match for address
	Geocode(ctx context.Context, address string) (Coordinate, error)
}

// PlaceQuery describes a nearby search
type PlaceQuery struct {
	Center   Coordinate
	RadiusM  uint
	Category string
	OpenNow  bool
}

// PlaceSearcher finds venues near a coordinate
type PlaceSearcher interface {
	// SearchNearby returns venues in the order the service sent them
	SearchNearby(ctx context.Context, query PlaceQuery) ([]VenueCandidate, error)
}

// PlaceDetailer looks up supplementary details of one venue
type PlaceDetailer interface {
	// Details returns website, phone and address for placeID. Empty
	// strings mean the service had no value.
	Details(ctx context.Context, placeID string) (VenueDetails, error)
}

// ChatMessage is one role-tagged message sent to a text generation service
type ChatMessage struct {
	Role    string
	Content string
}

// Chat roles
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Completer sends a conversation to a text generation service
type Completer interface {
	// Complete returns the completion text for messages
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// DailyForecast is one day of a forecast
type DailyForecast struct {
	Date  string
	Label string
}

// ForecastProvider fetches per-day forecasts for a city code. Index 0 is
// today.
type ForecastProvider interface {
	Forecast(ctx context.Context, cityCode string) ([]DailyForecast, error)
}

// Event is a notification about a change to a planning session
type Event struct {
	SessionID string      `json:"session_id"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
}

// EventPublisher delivers session events to interested listeners
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
