// internal/service/geo/service.go

package geo

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"gathering/internal/domain/plan"
)

// Located is a participant whose location resolved
type Located struct {
	ParticipantID string          `json:"participant_id"`
	Coordinate    plan.Coordinate `json:"coordinate"`
}

// Resolution is the outcome of geocoding a group's locations
type Resolution struct {
	Located  []Located              `json:"located"`
	Failures []plan.LocationFailure `json:"failures,omitempty"`
}

// Coordinates returns the resolved coordinates in participant order
func (r Resolution) Coordinates() []plan.Coordinate {
	coords := make([]plan.Coordinate, len(r.Located))
	for i, l := range r.Located {
		coords[i] = l.Coordinate
	}
	return coords
}

// Locator geocodes participant locations
type Locator struct {
	geocoder plan.Geocoder
	logger   *zap.Logger
}

// NewLocator creates a new locator
func NewLocator(geocoder plan.Geocoder, logger *zap.Logger) *Locator {
	return &Locator{
		geocoder: geocoder,
		logger:   logger,
	}
}

// Locate geocodes every participant with a location. Each distinct location
// string is looked up once. A failed lookup is recorded for the participants
// that used it and does not stop the others.
func (l *Locator) Locate(ctx context.Context, participants []plan.Participant) Resolution {
	type lookup struct {
		coord plan.Coordinate
		err   error
	}
	seen := make(map[string]lookup)

	var res Resolution
	for _, p := range participants {
		key := strings.TrimSpace(p.Location)
		if key == "" {
			continue
		}

		result, ok := seen[key]
		if !ok {
			coord, err := l.geocoder.Geocode(ctx, key)
			result = lookup{coord: coord, err: err}
			seen[key] = result
			if err != nil {
				l.logger.Warn("geocoding failed",
					zap.String("location", key),
					zap.Error(err),
				)
			}
		}

		if result.err != nil {
			res.Failures = append(res.Failures, plan.LocationFailure{
				ParticipantID: p.ID,
				Name:          p.Name,
				Location:      key,
				Reason:        plan.Describe(result.err),
			})
			continue
		}
		res.Located = append(res.Located, Located{ParticipantID: p.ID, Coordinate: result.coord})
	}
	return res
}

// Centroid averages latitudes and longitudes independently
func Centroid(coords []plan.Coordinate) (plan.Coordinate, error) {
	if len(coords) == 0 {
		return plan.Coordinate{}, plan.E(plan.KindInsufficientInput, "geo.centroid", "not enough participant locations to find a meeting point", nil)
	}

	var lat, lng float64
	for _, c := range coords {
		lat += c.Latitude
		lng += c.Longitude
	}
	n := float64(len(coords))
	return plan.Coordinate{Latitude: lat / n, Longitude: lng / n}, nil
}

// Distance returns the great-circle distance between two coordinates in
// kilometers
func Distance(a, b plan.Coordinate) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	hSin := math.Sin((lat2 - lat1) / 2)
	hSin *= hSin

	vSin := math.Sin((lon2 - lon1) / 2)
	vSin *= vSin

	h := hSin + math.Cos(lat1)*math.Cos(lat2)*vSin

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Spread returns the largest distance from center to any coordinate
func Spread(center plan.Coordinate, coords []plan.Coordinate) float64 {
	var max float64
	for _, c := range coords {
		if d := Distance(center, c); d > max {
			max = d
		}
	}
	return max
}
