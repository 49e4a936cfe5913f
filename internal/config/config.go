package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds everything the composition root needs. The two API keys
// are opaque secrets supplied via the environment (or a local .env file);
// nothing downstream parses configuration.
type AppConfig struct {
	OpenWeatherAPIKey string
	MapTilerAPIKey    string
	GeocoderAPIKey    string // optional Google geocoding key

	// RefreshInterval controls the coordinator's periodic refresh.
	RefreshInterval time.Duration
	// SearchDebounce is the quiet period before a suggestion fetch.
	SearchDebounce time.Duration
	// PrefetchInterval controls the favorites snapshot warmer.
	PrefetchInterval time.Duration

	HTTPTimeout time.Duration

	FavoritesDB    string
	FavoritesLimit int
	SnapshotMaxAge time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.MapTilerAPIKey = os.Getenv("MAPTILER_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "10m"); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = getenvDuration("SEARCH_DEBOUNCE", "500ms"); err != nil {
		return nil, err
	}
	if cfg.PrefetchInterval, err = getenvDuration("PREFETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.SnapshotMaxAge, err = getenvDuration("SNAPSHOT_MAX_AGE", "1h"); err != nil {
		return nil, err
	}

	cfg.FavoritesDB = getenvDefault("FAVORITES_DB", "clima.db")
	cfg.FavoritesLimit = getenvInt("FAVORITES_LIMIT", 5)
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
