package suggest

import (
	"context"

	"github.com/LeoCrisGG/Clima/internal/weather"
)

// GeoSource serves suggestions from a remote geocoding lookup. Remote
// results are re-ranked locally so prefix matches come first regardless of
// provider ordering.
type GeoSource struct {
	geocoder weather.Geocoder
	limit    int
}

// NewGeoSource creates a source backed by the given geocoder.
func NewGeoSource(geocoder weather.Geocoder) *GeoSource {
	return &GeoSource{geocoder: geocoder, limit: DefaultLimit}
}

func (s *GeoSource) Suggest(ctx context.Context, query string) ([]weather.City, error) {
	cities, err := s.geocoder.SearchPlaces(ctx, query)
	if err != nil {
		return nil, err
	}
	return Rank(query, cities, s.limit), nil
}
