// Package googlegeo adapts the Google Maps geocoding API (via
// github.com/kelvins/geocoder) to the weather.Geocoder contract. It is an
// optional alternative to the OpenWeather geo endpoints, selected when a
// Google API key is configured.
package googlegeo

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/LeoCrisGG/Clima/internal/weather"
)

type Geocoder struct{}

// New configures the underlying library with the API key. The library keeps
// the key in a package-level variable, so one key per process.
func New(apiKey string) *Geocoder {
	geocoder.ApiKey = apiKey
	return &Geocoder{}
}

func (g *Geocoder) ReverseGeocode(ctx context.Context, coords weather.Coordinates) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  coords.Lat,
		Longitude: coords.Lon,
	})
	if err != nil {
		return "", err
	}
	if len(addresses) == 0 {
		return "", weather.ErrNotFound
	}

	addr := addresses[0]
	locality := addr.City
	if locality == "" {
		locality = addr.County
	}
	if locality == "" {
		locality = addr.State
	}
	if locality == "" {
		return "", weather.ErrNotFound
	}

	if addr.Country == "" {
		return locality, nil
	}
	return fmt.Sprintf("%s, %s", locality, addr.Country), nil
}

// SearchPlaces resolves the single best match for the query. The Google
// geocoding API returns one location per forward lookup, so the result list
// has at most one candidate.
func (g *Geocoder) SearchPlaces(ctx context.Context, query string) ([]weather.City, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	loc, err := geocoder.Geocoding(geocoder.Address{City: query})
	if err != nil {
		return nil, err
	}

	coords := weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}
	return []weather.City{{Name: query, Coords: &coords}}, nil
}
