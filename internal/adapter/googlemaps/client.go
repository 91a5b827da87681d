// internal/adapter/googlemaps/client.go

package googlemaps

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"gathering/internal/domain/plan"
	"gathering/internal/observability"
)

// Config contains configuration for the Google Maps client
type Config struct {
	APIKey   string
	Language string
	Timeout  time.Duration
	// BaseURL overrides the API host, for tests
	BaseURL string
}

// Client implements geocoding, nearby search and place details on top of
// the Google Maps Platform
type Client struct {
	client   *maps.Client
	language string
	metrics  *observability.Collector
}

// NewClient creates a new Google Maps client
func NewClient(cfg Config, metrics *observability.Collector) (*Client, error) {
	options := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		options = append(options, maps.WithBaseURL(cfg.BaseURL))
	}

	client, err := maps.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("unable to create maps client: %w", err)
	}

	return &Client{
		client:   client,
		language: cfg.Language,
		metrics:  metrics,
	}, nil
}

// Geocode returns the first match for address
func (c *Client) Geocode(ctx context.Context, address string) (plan.Coordinate, error) {
	const op = "maps.geocode"
	start := time.Now()

	results, err := c.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  address,
		Language: c.language,
	})
	if err != nil && !isZeroResults(err) {
		c.metrics.ObserveCall("geocode", observability.OutcomeUnavailable, time.Since(start))
		return plan.Coordinate{}, plan.E(plan.KindServiceUnavailable, op, "the geocoding service is unavailable", err)
	}
	if len(results) == 0 {
		c.metrics.ObserveCall("geocode", observability.OutcomeEmpty, time.Since(start))
		return plan.Coordinate{}, plan.E(plan.KindResolutionFailure, op,
			fmt.Sprintf("no place matches %q", address), nil)
	}

	c.metrics.ObserveCall("geocode", observability.OutcomeOK, time.Since(start))
	loc := results[0].Geometry.Location
	return plan.Coordinate{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

// SearchNearby returns the venues the service found around the query center
func (c *Client) SearchNearby(ctx context.Context, query plan.PlaceQuery) ([]plan.VenueCandidate, error) {
	const op = "maps.nearby"
	start := time.Now()

	resp, err := c.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: query.Center.Latitude, Lng: query.Center.Longitude},
		Radius:   query.RadiusM,
		Type:     maps.PlaceType(query.Category),
		OpenNow:  query.OpenNow,
		Language: c.language,
	})
	if err != nil {
		if isZeroResults(err) {
			c.metrics.ObserveCall("places_nearby", observability.OutcomeEmpty, time.Since(start))
			return []plan.VenueCandidate{}, nil
		}
		c.metrics.ObserveCall("places_nearby", observability.OutcomeUnavailable, time.Since(start))
		return nil, plan.E(plan.KindServiceUnavailable, op, "the place search service is unavailable", err)
	}

	venues := make([]plan.VenueCandidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		v := plan.VenueCandidate{
			PlaceID:  r.PlaceID,
			Name:     r.Name,
			Vicinity: r.Vicinity,
		}
		if r.Rating > 0 {
			rating := float64(r.Rating)
			v.Rating = &rating
		}
		venues = append(venues, v)
	}

	outcome := observability.OutcomeOK
	if len(venues) == 0 {
		outcome = observability.OutcomeEmpty
	}
	c.metrics.ObserveCall("places_nearby", outcome, time.Since(start))
	return venues, nil
}

// Details returns website, phone number and address for placeID
func (c *Client) Details(ctx context.Context, placeID string) (plan.VenueDetails, error) {
	const op = "maps.details"
	start := time.Now()

	result, err := c.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: c.language,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskWebsite,
			maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
			maps.PlaceDetailsFieldMaskFormattedAddress,
		},
	})
	if err != nil {
		c.metrics.ObserveCall("place_details", observability.OutcomeUnavailable, time.Since(start))
		return plan.VenueDetails{}, plan.E(plan.KindServiceUnavailable, op, "the place details service is unavailable", err)
	}

	c.metrics.ObserveCall("place_details", observability.OutcomeOK, time.Since(start))
	return plan.VenueDetails{
		Website: result.Website,
		Phone:   result.FormattedPhoneNumber,
		Address: result.FormattedAddress,
	}, nil
}

// isZeroResults reports whether err is the API's "nothing found" status
func isZeroResults(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ZERO_RESULTS")
}
