package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/LeoCrisGG/Clima/internal/api/http"
	"github.com/LeoCrisGG/Clima/internal/config"
	"github.com/LeoCrisGG/Clima/internal/coordinator"
	"github.com/LeoCrisGG/Clima/internal/favorites"
	"github.com/LeoCrisGG/Clima/internal/scheduler"
	"github.com/LeoCrisGG/Clima/internal/store"
	"github.com/LeoCrisGG/Clima/internal/suggest"
	"github.com/LeoCrisGG/Clima/internal/weather"
	"github.com/LeoCrisGG/Clima/internal/weather/googlegeo"
	"github.com/LeoCrisGG/Clima/internal/weather/openweather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	owm := openweather.New(httpClient, cfg.OpenWeatherAPIKey)

	// Reverse geocoding: Google when a key is configured, otherwise the
	// OpenWeather geo endpoints.
	var geocoder weather.Geocoder = owm
	if cfg.GeocoderAPIKey != "" {
		geocoder = googlegeo.New(cfg.GeocoderAPIKey)
	}

	// Suggestions come from the geocoding lookup when the provider is
	// configured; otherwise the offline city list.
	var source suggest.Source = suggest.NewStaticSource()
	if cfg.OpenWeatherAPIKey != "" {
		source = suggest.NewGeoSource(owm)
	}

	// Durable favorites store.
	favs, err := favorites.NewSQLite(cfg.FavoritesDB)
	if err != nil {
		log.Fatalf("failed to open favorites store: %v", err)
	}
	defer favs.Close()

	// Last-snapshot cache for the favorites list.
	snapshots := store.NewMemoryStore(cfg.SnapshotMaxAge)

	coord := coordinator.New(owm, geocoder, source, favs, coordinator.Options{
		DebounceInterval: cfg.SearchDebounce,
		RefreshInterval:  cfg.RefreshInterval,
		FavoritesLimit:   cfg.FavoritesLimit,
	})
	defer coord.Close()

	// Warm snapshots for favorites in the background.
	prefetch := scheduler.New(owm, favs, snapshots, cfg.PrefetchInterval)
	if err := prefetch.Start(); err != nil {
		log.Fatalf("failed to start prefetch scheduler: %v", err)
	}
	defer prefetch.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "clima",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "clima",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Coordinator: coord,
		Snapshots:   snapshots,
		MapAPIKey:   cfg.MapTilerAPIKey,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
