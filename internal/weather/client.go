package weather

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the provider has no data for the requested
// city or coordinates.
var ErrNotFound = errors.New("location not found")

// Client abstracts the remote weather provider (e.g. OpenWeatherMap).
type Client interface {
	// CurrentByCoords fetches current conditions for a coordinate pair.
	CurrentByCoords(ctx context.Context, coords Coordinates) (CurrentConditions, error)
	// CurrentByName fetches current conditions for a free-text city name.
	CurrentByName(ctx context.Context, city string) (CurrentConditions, error)
	// FetchForecast fetches the 3-hour-step forecast for the next 5 days.
	FetchForecast(ctx context.Context, coords Coordinates) (Forecast, error)
	// FetchAirQuality fetches the current air-quality reading.
	FetchAirQuality(ctx context.Context, coords Coordinates) (AirQuality, error)
}

// Geocoder resolves between coordinates and place names.
type Geocoder interface {
	// ReverseGeocode resolves a human-readable place name for a coordinate
	// pair. The returned name may include a ", <country>" suffix.
	ReverseGeocode(ctx context.Context, coords Coordinates) (string, error)
	// SearchPlaces returns candidate cities matching a partial name.
	SearchPlaces(ctx context.Context, query string) ([]City, error)
}
