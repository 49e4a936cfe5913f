package weather

import (
	"fmt"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionDrizzle Condition = "drizzle"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Coordinates is a geographic point. Callers that need an "unset" location
// hold a *Coordinates and use nil; there is no in-band sentinel value.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair is inside the WGS84 ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// CurrentConditions is the normalized current-weather reading for a location.
type CurrentConditions struct {
	Name      string      `json:"name"` // place name as reported by the provider
	Country   string      `json:"country"`
	Coords    Coordinates `json:"coords"`
	Timestamp time.Time   `json:"timestamp"` // always UTC

	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	TempMin     float64   `json:"tempMinC"`
	TempMax     float64   `json:"tempMaxC"`
	Humidity    float64   `json:"humidityPercent"`
	Pressure    float64   `json:"pressureHpa"`
	WindSpeed   float64   `json:"windSpeedMs"`
	WindDeg     int       `json:"windDeg"`
	Clouds      int       `json:"cloudsPercent"`
	VisibilityM int       `json:"visibilityM"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`

	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`
}

// ForecastEntry is one 3-hour step of the multi-day forecast.
type ForecastEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperatureC"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	// Probability of precipitation, 0..1 as reported by the provider.
	PrecipProb float64 `json:"precipProbability"`
}

// Forecast is a time-ordered sequence of 3-hour steps spanning up to 5 days.
type Forecast []ForecastEntry

// AirQuality carries the provider's AQI category (1 best .. 5 worst) and
// pollutant concentrations in µg/m³.
type AirQuality struct {
	AQI       int       `json:"aqi"`
	Timestamp time.Time `json:"timestamp"`

	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	O3   float64 `json:"o3"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	CO   float64 `json:"co"`
	NH3  float64 `json:"nh3"`
}

// City is a geocoding candidate returned by place search. Coordinates are
// optional: offline suggestion sources only know names.
type City struct {
	Name    string       `json:"name"`
	Country string       `json:"country"`
	State   string       `json:"state,omitempty"`
	Coords  *Coordinates `json:"coords,omitempty"`
}

// Snapshot is the last successfully fetched bundle for one location at one
// point in time. Immutable once constructed; replaced wholesale on each
// successful fetch. Forecast and AirQuality may be absent when those
// secondary fetches failed.
type Snapshot struct {
	DisplayName string            `json:"displayName"`
	Current     CurrentConditions `json:"current"`
	Forecast    Forecast          `json:"forecast,omitempty"`
	AirQuality  *AirQuality       `json:"airQuality,omitempty"`
	FetchedAt   time.Time         `json:"fetchedAt"`
}
