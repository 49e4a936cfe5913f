package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/LeoCrisGG/Clima/internal/weather"
)

// geoPlace mirrors the entries of the /geo/1.0 responses.
type geoPlace struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// ReverseGeocode resolves the locality name nearest to the coordinates.
// The result is "<name>, <country>"; callers that only want the locality
// trim at the first comma.
func (c *Client) ReverseGeocode(ctx context.Context, coords weather.Coordinates) (string, error) {
	if c.apiKey == "" {
		return "", errBadAPIKey
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", coords.Lat))
	values.Set("lon", fmt.Sprintf("%f", coords.Lon))
	values.Set("limit", "1")
	values.Set("appid", c.apiKey)

	resp, err := doRequest(ctx, c.httpClient, c.geoCircuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/reverse?%s", c.geoURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var places []geoPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return "", err
	}
	if len(places) == 0 {
		return "", weather.ErrNotFound
	}

	p := places[0]
	if p.Country == "" {
		return p.Name, nil
	}
	return fmt.Sprintf("%s, %s", p.Name, p.Country), nil
}

// SearchPlaces returns up to five candidate cities for a partial name.
func (c *Client) SearchPlaces(ctx context.Context, query string) ([]weather.City, error) {
	if c.apiKey == "" {
		return nil, errBadAPIKey
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", "5")
	values.Set("appid", c.apiKey)

	resp, err := doRequest(ctx, c.httpClient, c.geoCircuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/direct?%s", c.geoURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var places []geoPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, err
	}

	cities := make([]weather.City, 0, len(places))
	for _, p := range places {
		coords := weather.Coordinates{Lat: p.Lat, Lon: p.Lon}
		cities = append(cities, weather.City{
			Name:    p.Name,
			Country: p.Country,
			State:   p.State,
			Coords:  &coords,
		})
	}

	return cities, nil
}
