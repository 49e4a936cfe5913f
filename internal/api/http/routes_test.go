package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/LeoCrisGG/Clima/internal/coordinator"
	"github.com/LeoCrisGG/Clima/internal/favorites"
	"github.com/LeoCrisGG/Clima/internal/store"
	"github.com/LeoCrisGG/Clima/internal/suggest"
	"github.com/LeoCrisGG/Clima/internal/weather"
)

type stubClient struct {
	notFound bool
}

func (s *stubClient) CurrentByCoords(ctx context.Context, coords weather.Coordinates) (weather.CurrentConditions, error) {
	return weather.CurrentConditions{Name: "Madrid", Coords: coords, Temperature: 21}, nil
}

func (s *stubClient) CurrentByName(ctx context.Context, city string) (weather.CurrentConditions, error) {
	if s.notFound {
		return weather.CurrentConditions{}, weather.ErrNotFound
	}
	return weather.CurrentConditions{Name: city}, nil
}

func (s *stubClient) FetchForecast(ctx context.Context, coords weather.Coordinates) (weather.Forecast, error) {
	return nil, errors.New("forecast unavailable")
}

func (s *stubClient) FetchAirQuality(ctx context.Context, coords weather.Coordinates) (weather.AirQuality, error) {
	return weather.AirQuality{}, errors.New("air quality unavailable")
}

func newTestApp(t *testing.T, client *stubClient) (*fiber.App, *coordinator.Coordinator) {
	t.Helper()

	favs, err := favorites.NewSQLite(filepath.Join(t.TempDir(), "favs.db"))
	if err != nil {
		t.Fatalf("failed to open favorites store: %v", err)
	}
	t.Cleanup(func() { _ = favs.Close() })

	coord := coordinator.New(client, nil, suggest.NewStaticSource(), favs, coordinator.Options{
		RefreshInterval: time.Hour,
	})
	t.Cleanup(coord.Close)

	app := fiber.New()
	RegisterRoutes(app, Deps{
		Coordinator: coord,
		Snapshots:   store.NewMemoryStore(time.Hour),
		MapAPIKey:   "tile-key",
	})
	return app, coord
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLocationValidation(t *testing.T) {
	app, _ := newTestApp(t, &stubClient{})

	// Missing lon should return 400.
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/location", map[string]any{"lat": 40.0}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Out-of-range latitude should also return 400.
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/location", map[string]any{"lat": 91.0, "lon": 0.0}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestLocationReturnsSuccessState(t *testing.T) {
	app, _ := newTestApp(t, &stubClient{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/location", map[string]any{"lat": 40.4168, "lon": -3.7038}), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var state struct {
		Kind     string `json:"kind"`
		Snapshot *struct {
			DisplayName string `json:"displayName"`
		} `json:"snapshot"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if state.Kind != "success" {
		t.Fatalf("expected success state, got %q", state.Kind)
	}
	if state.Snapshot == nil || state.Snapshot.DisplayName != "Madrid" {
		t.Fatalf("unexpected snapshot: %+v", state.Snapshot)
	}
}

func TestSearchNotFoundReturnsErrorState(t *testing.T) {
	app, _ := newTestApp(t, &stubClient{notFound: true})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/search", map[string]any{"city": "Unknistan"}), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var state struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if state.Kind != "error" {
		t.Fatalf("expected error state, got %q", state.Kind)
	}
	if state.Message != "No se pudo encontrar la ciudad" {
		t.Fatalf("unexpected message: %q", state.Message)
	}
}

func TestFavoritesDuplicateAndLimit(t *testing.T) {
	app, _ := newTestApp(t, &stubClient{})

	add := func(name string) *http.Response {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/favorites", map[string]any{
			"cityName": name, "lat": 1.0, "lon": 2.0, "country": "ES",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return resp
	}

	for _, name := range []string{"Madrid", "Lima", "Quito", "Bogota", "Santiago"} {
		if resp := add(name); resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected %d for %s, got %d", http.StatusCreated, name, resp.StatusCode)
		}
	}

	if resp := add("Madrid"); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected %d for duplicate, got %d", http.StatusConflict, resp.StatusCode)
	}
	if resp := add("Caracas"); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected %d for limit, got %d", http.StatusUnprocessableEntity, resp.StatusCode)
	}
}

func TestDeleteFavorite(t *testing.T) {
	app, _ := newTestApp(t, &stubClient{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/favorites", map[string]any{
		"cityName": "Madrid", "lat": 40.4, "lon": -3.7,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected %d, got %d", http.StatusCreated, resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/favorites/Madrid", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected %d, got %d", http.StatusNoContent, resp.StatusCode)
	}
}

func TestMapConfig(t *testing.T) {
	app, _ := newTestApp(t, &stubClient{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/config/map", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["mapApiKey"] != "tile-key" {
		t.Fatalf("unexpected map key: %q", body["mapApiKey"])
	}
}
