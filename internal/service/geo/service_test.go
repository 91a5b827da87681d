package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gathering/internal/domain/plan"
)

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (plan.Coordinate, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(plan.Coordinate), args.Error(1)
}

func TestCentroid_SingleCoordinate(t *testing.T) {
	c, err := Centroid([]plan.Coordinate{{Latitude: 35.0, Longitude: 139.0}})
	require.NoError(t, err)
	assert.Equal(t, plan.Coordinate{Latitude: 35.0, Longitude: 139.0}, c)
}

func TestCentroid_Mean(t *testing.T) {
	c, err := Centroid([]plan.Coordinate{{Latitude: 0, Longitude: 0}, {Latitude: 10, Longitude: 10}})
	require.NoError(t, err)
	assert.Equal(t, plan.Coordinate{Latitude: 5, Longitude: 5}, c)

	c, err = Centroid([]plan.Coordinate{{Latitude: 35.0, Longitude: 139.0}, {Latitude: 35.2, Longitude: 139.2}, {Latitude: 34.8, Longitude: 138.8}})
	require.NoError(t, err)
	assert.InDelta(t, 35.0, c.Latitude, 1e-9)
	assert.InDelta(t, 139.0, c.Longitude, 1e-9)
}

func TestCentroid_Empty(t *testing.T) {
	_, err := Centroid(nil)
	assert.ErrorIs(t, err, plan.ErrInsufficientInput)
}

func TestDistance(t *testing.T) {
	tokyo := plan.Coordinate{Latitude: 35.6812, Longitude: 139.7671}
	osaka := plan.Coordinate{Latitude: 34.7025, Longitude: 135.4959}

	assert.InDelta(t, 403, Distance(tokyo, osaka), 5)
	assert.Equal(t, 0.0, Distance(tokyo, tokyo))
	assert.InDelta(t, 403, Spread(tokyo, []plan.Coordinate{tokyo, osaka}), 5)
}

func TestLocator_IsolatesFailures(t *testing.T) {
	ctx := context.Background()
	geocoder := new(mockGeocoder)
	geocoder.On("Geocode", ctx, "Shibuya").Return(plan.Coordinate{Latitude: 35.658, Longitude: 139.701}, nil).Once()
	geocoder.On("Geocode", ctx, "Nowhere").Return(plan.Coordinate{}, plan.E(plan.KindResolutionFailure, "maps.geocode", "", errors.New("ZERO_RESULTS"))).Once()
	geocoder.On("Geocode", ctx, "Shinjuku").Return(plan.Coordinate{Latitude: 35.690, Longitude: 139.700}, nil).Once()

	participants := []plan.Participant{
		{ID: "p1", Name: "Aki", Location: "Shibuya"},
		{ID: "p2", Name: "Ben", Location: " Nowhere "},
		{ID: "p3", Name: "Chie", Location: ""},
		{ID: "p4", Name: "Dai", Location: "Shinjuku"},
		{ID: "p5", Name: "Emi", Location: "Shibuya"},
	}

	res := NewLocator(geocoder, zap.NewNop()).Locate(ctx, participants)

	require.Len(t, res.Located, 3)
	assert.Equal(t, []string{"p1", "p4", "p5"}, []string{res.Located[0].ParticipantID, res.Located[1].ParticipantID, res.Located[2].ParticipantID})
	require.Len(t, res.Failures, 1)
	assert.Equal(t, plan.LocationFailure{
		ParticipantID: "p2",
		Name:          "Ben",
		Location:      "Nowhere",
		Reason:        "location could not be resolved",
	}, res.Failures[0])
	assert.Len(t, res.Coordinates(), 3)
	geocoder.AssertExpectations(t)
}
