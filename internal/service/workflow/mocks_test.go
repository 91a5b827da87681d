package workflow

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gathering/internal/domain/plan"
)

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (plan.Coordinate, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(plan.Coordinate), args.Error(1)
}

type mockPlaces struct {
	mock.Mock
}

func (m *mockPlaces) SearchNearby(ctx context.Context, query plan.PlaceQuery) ([]plan.VenueCandidate, error) {
	args := m.Called(ctx, query)
	venues, _ := args.Get(0).([]plan.VenueCandidate)
	return venues, args.Error(1)
}

func (m *mockPlaces) Details(ctx context.Context, placeID string) (plan.VenueDetails, error) {
	args := m.Called(ctx, placeID)
	return args.Get(0).(plan.VenueDetails), args.Error(1)
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, messages []plan.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

type mockForecasts struct {
	mock.Mock
}

func (m *mockForecasts) Forecast(ctx context.Context, cityCode string) ([]plan.DailyForecast, error) {
	args := m.Called(ctx, cityCode)
	days, _ := args.Get(0).([]plan.DailyForecast)
	return days, args.Error(1)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) Publish(ctx context.Context, event plan.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// published returns the event types published for sessionID, in order
func (m *mockEvents) published(sessionID string) []string {
	var types []string
	for _, c := range m.Calls {
		if e, ok := c.Arguments.Get(1).(plan.Event); ok && e.SessionID == sessionID {
			types = append(types, e.Type)
		}
	}
	return types
}
