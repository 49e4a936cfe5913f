package openweather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LeoCrisGG/Clima/internal/weather"
)

const currentBody = `{
	"coord": {"lon": -3.7038, "lat": 40.4168},
	"weather": [{"main": "Clouds", "description": "nubes dispersas"}],
	"main": {"temp": 21.5, "feels_like": 21.0, "temp_min": 18.2, "temp_max": 24.1, "pressure": 1015, "humidity": 48},
	"visibility": 10000,
	"wind": {"speed": 3.6, "deg": 220},
	"clouds": {"all": 40},
	"dt": 1700000000,
	"sys": {"country": "ES", "sunrise": 1699970000, "sunset": 1700008000},
	"name": "Madrid"
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.Client(), "test-key")
	c.dataURL = srv.URL + "/data/2.5"
	c.geoURL = srv.URL + "/geo/1.0"
	return c
}

func TestCurrentByCoords(t *testing.T) {
	var gotQuery map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotQuery = map[string]string{
			"appid": r.URL.Query().Get("appid"),
			"units": r.URL.Query().Get("units"),
			"lang":  r.URL.Query().Get("lang"),
		}
		w.Write([]byte(currentBody))
	}))

	cur, err := c.CurrentByCoords(context.Background(), weather.Coordinates{Lat: 40.4168, Lon: -3.7038})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery["appid"] != "test-key" || gotQuery["units"] != "metric" || gotQuery["lang"] != "es" {
		t.Errorf("unexpected query parameters: %v", gotQuery)
	}
	if cur.Name != "Madrid" || cur.Country != "ES" {
		t.Errorf("unexpected place: %s, %s", cur.Name, cur.Country)
	}
	if cur.Temperature != 21.5 || cur.Humidity != 48 {
		t.Errorf("unexpected readings: %+v", cur)
	}
	if cur.Condition != weather.ConditionCloudy {
		t.Errorf("expected cloudy, got %s", cur.Condition)
	}
	if cur.Sunrise.IsZero() || cur.Sunset.IsZero() {
		t.Error("expected sunrise/sunset to be set")
	}
}

func TestCurrentByCoordsRejectsOutOfRange(t *testing.T) {
	c := New(http.DefaultClient, "test-key")

	if _, err := c.CurrentByCoords(context.Background(), weather.Coordinates{Lat: 91, Lon: 0}); err == nil {
		t.Fatal("expected error for out-of-range latitude")
	}
}

func TestCurrentByNameNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))

	_, err := c.CurrentByName(context.Background(), "Unknistan")
	if !errors.Is(err, weather.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMissingAPIKey(t *testing.T) {
	c := New(http.DefaultClient, "")

	if _, err := c.CurrentByName(context.Background(), "Madrid"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestFetchForecast(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/forecast" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"list": [
			{"dt": 1700000000, "main": {"temp": 18.0}, "weather": [{"main": "Rain", "description": "lluvia ligera"}], "pop": 0.7},
			{"dt": 1700010800, "main": {"temp": 16.5}, "weather": [{"main": "Clear", "description": "cielo claro"}], "pop": 0.1}
		]}`))
	}))

	forecast, err := c.FetchForecast(context.Background(), weather.Coordinates{Lat: 40.4168, Lon: -3.7038})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(forecast) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(forecast))
	}
	if forecast[0].Condition != weather.ConditionRain || forecast[0].PrecipProb != 0.7 {
		t.Errorf("unexpected first entry: %+v", forecast[0])
	}
	if !forecast[0].Timestamp.Before(forecast[1].Timestamp) {
		t.Error("expected entries ordered by timestamp")
	}
}

func TestFetchAirQuality(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/air_pollution" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"list": [{"dt": 1700000000, "main": {"aqi": 2},
			"components": {"co": 230.3, "no2": 14.5, "o3": 60.1, "so2": 3.2, "pm2_5": 8.7, "pm10": 12.4, "nh3": 0.9}}]}`))
	}))

	aq, err := c.FetchAirQuality(context.Background(), weather.Coordinates{Lat: 40.4168, Lon: -3.7038})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if aq.AQI != 2 {
		t.Errorf("expected AQI 2, got %d", aq.AQI)
	}
	if aq.PM25 != 8.7 || aq.NH3 != 0.9 {
		t.Errorf("unexpected pollutant readings: %+v", aq)
	}
}

func TestFetchAirQualityEmptyList(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list": []}`))
	}))

	_, err := c.FetchAirQuality(context.Background(), weather.Coordinates{Lat: 0, Lon: 0})
	if !errors.Is(err, weather.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReverseGeocode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/1.0/reverse" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[{"name": "Castilla", "lat": 40.4, "lon": -3.7, "country": "ES"}]`))
	}))

	name, err := c.ReverseGeocode(context.Background(), weather.Coordinates{Lat: 40.4, Lon: -3.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Castilla, ES" {
		t.Fatalf("unexpected name: %q", name)
	}
}

func TestReverseGeocodeEmptyResult(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	_, err := c.ReverseGeocode(context.Background(), weather.Coordinates{Lat: 0, Lon: 0})
	if !errors.Is(err, weather.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchPlaces(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/1.0/direct" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "Mad" {
			t.Errorf("unexpected query: %q", got)
		}
		w.Write([]byte(`[
			{"name": "Madrid", "lat": 40.4168, "lon": -3.7038, "country": "ES", "state": "Madrid"},
			{"name": "Madison", "lat": 43.0731, "lon": -89.4012, "country": "US", "state": "Wisconsin"}
		]`))
	}))

	cities, err := c.SearchPlaces(context.Background(), "Mad")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cities) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(cities))
	}
	if cities[0].Name != "Madrid" || cities[0].Coords == nil || cities[0].Coords.Lat != 40.4168 {
		t.Errorf("unexpected first city: %+v", cities[0])
	}
}

func TestServerErrorCountsAgainstBreaker(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.CurrentByName(context.Background(), "Madrid")
	if !errors.Is(err, errServerError) {
		t.Fatalf("expected server error, got %v", err)
	}
}
