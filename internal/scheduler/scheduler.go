// Package scheduler periodically warms the last-snapshot cache for every
// favorite location, so the favorites list can show weather without waiting
// on the provider.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/LeoCrisGG/Clima/internal/favorites"
	"github.com/LeoCrisGG/Clima/internal/store"
	"github.com/LeoCrisGG/Clima/internal/weather"
)

// Prefetcher fetches current conditions for all favorites on an interval
// and saves them into the memory store. Failures are logged and skipped;
// a stale snapshot is better than none.
type Prefetcher struct {
	scheduler *gocron.Scheduler
	client    weather.Client
	favs      favorites.Store
	snapshots *store.MemoryStore
	interval  time.Duration
}

// New creates a Prefetcher. interval must be positive.
func New(client weather.Client, favs favorites.Store, snapshots *store.MemoryStore, interval time.Duration) *Prefetcher {
	return &Prefetcher{
		scheduler: gocron.NewScheduler(time.UTC),
		client:    client,
		favs:      favs,
		snapshots: snapshots,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// SingletonMode keeps a slow run from overlapping the next one.
func (p *Prefetcher) Start() error {
	minutes := int(p.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := p.scheduler.Every(minutes).Minutes().SingletonMode().Do(p.runOnce)
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (p *Prefetcher) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

func (p *Prefetcher) runOnce() {
	favs, err := p.favs.List()
	if err != nil {
		log.Printf("scheduler: could not list favorites: %v", err)
		return
	}
	if len(favs) == 0 {
		return
	}

	log.Printf("scheduler: prefetching weather for %d favorites", len(favs))

	var wg sync.WaitGroup
	for _, fav := range favs {
		fav := fav
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			cur, err := p.client.CurrentByCoords(ctx, weather.Coordinates{Lat: fav.Lat, Lon: fav.Lon})
			if err != nil {
				log.Printf("scheduler: prefetch failed for %s: %v", fav.CityName, err)
				return
			}

			p.snapshots.Save(fav.CityName, weather.Snapshot{
				DisplayName: fav.CityName,
				Current:     cur,
				FetchedAt:   time.Now().UTC(),
			})
		}()
	}
	wg.Wait()
}
