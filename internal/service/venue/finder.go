// internal/service/venue/finder.go

package venue

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gathering/internal/domain/plan"
)

// FinderConfig contains configuration for venue search
type FinderConfig struct {
	RadiusM           uint
	Category          string
	OpenNow           bool
	Limit             int
	DetailConcurrency int
}

// DefaultFinderConfig returns the search settings used by the planner
func DefaultFinderConfig() FinderConfig {
	return FinderConfig{
		RadiusM:           1000,
		Category:          "restaurant",
		OpenNow:           true,
		Limit:             5,
		DetailConcurrency: 5,
	}
}

// Finder searches, ranks and enriches venues around a meeting point
type Finder struct {
	searcher plan.PlaceSearcher
	detailer plan.PlaceDetailer
	config   FinderConfig
	logger   *zap.Logger
}

// NewFinder creates a new venue finder
func NewFinder(
	searcher plan.PlaceSearcher,
	detailer plan.PlaceDetailer,
	config FinderConfig,
	logger *zap.Logger,
) *Finder {
	if config.Limit <= 0 {
		config.Limit = DefaultFinderConfig().Limit
	}
	if config.DetailConcurrency <= 0 {
		config.DetailConcurrency = 1
	}
	return &Finder{
		searcher: searcher,
		detailer: detailer,
		config:   config,
		logger:   logger,
	}
}

// Find returns the top rated venues near center with their details. No
// venues is a normal outcome and returns an empty slice.
func (f *Finder) Find(ctx context.Context, center plan.Coordinate) ([]plan.VenueCandidate, error) {
	venues, err := f.searcher.SearchNearby(ctx, plan.PlaceQuery{
		Center:   center,
		RadiusM:  f.config.RadiusM,
		Category: f.config.Category,
		OpenNow:  f.config.OpenNow,
	})
	if err != nil {
		return nil, err
	}
	if len(venues) == 0 {
		return []plan.VenueCandidate{}, nil
	}

	return f.Enrich(ctx, Rank(venues, f.config.Limit)), nil
}

// Enrich looks up details for every venue. Lookups run concurrently; the
// result keeps the input order. A failed lookup leaves that venue with the
// fallback labels.
func (f *Finder) Enrich(ctx context.Context, venues []plan.VenueCandidate) []plan.VenueCandidate {
	out := make([]plan.VenueCandidate, len(venues))

	var g errgroup.Group
	g.SetLimit(f.config.DetailConcurrency)
	for i, v := range venues {
		g.Go(func() error {
			details, err := f.detailer.Details(ctx, v.PlaceID)
			if err != nil {
				f.logger.Warn("venue details unavailable",
					zap.String("place_id", v.PlaceID),
					zap.String("name", v.Name),
					zap.Error(err),
				)
				details = plan.VenueDetails{}
			}
			out[i] = withDetails(v, details)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Rank sorts venues by rating, highest first, with missing ratings last
// as zero. Equal ratings keep their original order. At most limit venues
// are returned.
func Rank(venues []plan.VenueCandidate, limit int) []plan.VenueCandidate {
	ranked := append([]plan.VenueCandidate(nil), venues...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RatingValue() > ranked[j].RatingValue()
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func withDetails(v plan.VenueCandidate, d plan.VenueDetails) plan.VenueCandidate {
	v.Website = labelled(d.Website, plan.FallbackWebsite)
	v.Phone = labelled(d.Phone, plan.FallbackPhone)
	v.Address = labelled(d.Address, plan.FallbackAddress)
	return v
}

func labelled(value, fallback string) *string {
	if value == "" {
		value = fallback
	}
	return &value
}
