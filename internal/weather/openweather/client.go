package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/LeoCrisGG/Clima/internal/weather"
)

// Client implements weather.Client and weather.Geocoder against the
// OpenWeatherMap REST APIs.
type Client struct {
	apiKey     string
	dataURL    string // /data/2.5 family
	geoURL     string // /geo/1.0 family
	httpClient *http.Client

	// Separate breakers so a misbehaving geocoding API does not take the
	// weather endpoints down with it.
	dataCircuit *gobreaker.CircuitBreaker
	geoCircuit  *gobreaker.CircuitBreaker
}

// New creates a Client using the shared HTTP client and the provider API key.
func New(httpClient *http.Client, apiKey string) *Client {
	newBreaker := func(name string) *gobreaker.CircuitBreaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		})
	}

	return &Client{
		apiKey:      apiKey,
		dataURL:     "https://api.openweathermap.org/data/2.5",
		geoURL:      "https://api.openweathermap.org/geo/1.0",
		httpClient:  httpClient,
		dataCircuit: newBreaker("openweather-data"),
		geoCircuit:  newBreaker("openweather-geo"),
	}
}

// currentPayload mirrors the /data/2.5/weather response.
type currentPayload struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

func (c *Client) CurrentByCoords(ctx context.Context, coords weather.Coordinates) (weather.CurrentConditions, error) {
	if !coords.Valid() {
		return weather.CurrentConditions{}, fmt.Errorf("coordinates out of range: %s", coords)
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", coords.Lat))
	values.Set("lon", fmt.Sprintf("%f", coords.Lon))
	return c.fetchCurrent(ctx, values)
}

func (c *Client) CurrentByName(ctx context.Context, city string) (weather.CurrentConditions, error) {
	values := url.Values{}
	values.Set("q", city)
	return c.fetchCurrent(ctx, values)
}

func (c *Client) fetchCurrent(ctx context.Context, values url.Values) (weather.CurrentConditions, error) {
	if c.apiKey == "" {
		return weather.CurrentConditions{}, errBadAPIKey
	}

	values.Set("appid", c.apiKey)
	values.Set("units", "metric")
	values.Set("lang", "es")

	resp, err := doRequest(ctx, c.httpClient, c.dataCircuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/weather?%s", c.dataURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return weather.CurrentConditions{}, err
	}
	defer resp.Body.Close()

	var payload currentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.CurrentConditions{}, err
	}

	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	cur := weather.CurrentConditions{
		Name:        payload.Name,
		Country:     payload.Sys.Country,
		Coords:      weather.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
		Timestamp:   ts,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		TempMin:     payload.Main.TempMin,
		TempMax:     payload.Main.TempMax,
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		WindSpeed:   payload.Wind.Speed,
		WindDeg:     payload.Wind.Deg,
		Clouds:      payload.Clouds.All,
		VisibilityM: payload.Visibility,
		Sunrise:     time.Unix(payload.Sys.Sunrise, 0).UTC(),
		Sunset:      time.Unix(payload.Sys.Sunset, 0).UTC(),
	}

	if len(payload.Weather) > 0 {
		cur.Condition = mapCondition(payload.Weather[0].Main)
		cur.Description = payload.Weather[0].Description
	} else {
		cur.Condition = weather.ConditionUnknown
	}

	return cur, nil
}

func (c *Client) FetchForecast(ctx context.Context, coords weather.Coordinates) (weather.Forecast, error) {
	if c.apiKey == "" {
		return nil, errBadAPIKey
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", coords.Lat))
	values.Set("lon", fmt.Sprintf("%f", coords.Lon))
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")
	values.Set("lang", "es")

	resp, err := doRequest(ctx, c.httpClient, c.dataCircuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/forecast?%s", c.dataURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []struct {
				Main        string `json:"main"`
				Description string `json:"description"`
			} `json:"weather"`
			Pop float64 `json:"pop"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	forecast := make(weather.Forecast, 0, len(payload.List))
	for _, item := range payload.List {
		entry := weather.ForecastEntry{
			Timestamp:   time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			PrecipProb:  item.Pop,
			Condition:   weather.ConditionUnknown,
		}
		if len(item.Weather) > 0 {
			entry.Condition = mapCondition(item.Weather[0].Main)
			entry.Description = item.Weather[0].Description
		}
		forecast = append(forecast, entry)
	}

	return forecast, nil
}

func (c *Client) FetchAirQuality(ctx context.Context, coords weather.Coordinates) (weather.AirQuality, error) {
	if c.apiKey == "" {
		return weather.AirQuality{}, errBadAPIKey
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", coords.Lat))
	values.Set("lon", fmt.Sprintf("%f", coords.Lon))
	values.Set("appid", c.apiKey)

	resp, err := doRequest(ctx, c.httpClient, c.dataCircuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/air_pollution?%s", c.dataURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if err != nil {
		return weather.AirQuality{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components struct {
				CO   float64 `json:"co"`
				NO2  float64 `json:"no2"`
				O3   float64 `json:"o3"`
				SO2  float64 `json:"so2"`
				PM25 float64 `json:"pm2_5"`
				PM10 float64 `json:"pm10"`
				NH3  float64 `json:"nh3"`
			} `json:"components"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.AirQuality{}, err
	}
	if len(payload.List) == 0 {
		return weather.AirQuality{}, weather.ErrNotFound
	}

	item := payload.List[0]
	return weather.AirQuality{
		AQI:       item.Main.AQI,
		Timestamp: time.Unix(item.Dt, 0).UTC(),
		PM25:      item.Components.PM25,
		PM10:      item.Components.PM10,
		O3:        item.Components.O3,
		NO2:       item.Components.NO2,
		SO2:       item.Components.SO2,
		CO:        item.Components.CO,
		NH3:       item.Components.NH3,
	}, nil
}

// mapCondition normalizes OpenWeather condition groups.
func mapCondition(main string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain":
		return weather.ConditionRain
	case "Drizzle":
		return weather.ConditionDrizzle
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
