// Package coordinator owns the UI-facing weather state: it orchestrates the
// remote weather client, the suggestion source and the favorites store to
// answer "what is the weather here / for this search / refresh now".
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/LeoCrisGG/Clima/internal/favorites"
	"github.com/LeoCrisGG/Clima/internal/suggest"
	"github.com/LeoCrisGG/Clima/internal/weather"
)

const (
	// DefaultDebounceInterval is the quiet period before a suggestion fetch.
	DefaultDebounceInterval = 500 * time.Millisecond
	// DefaultRefreshInterval is the periodic-refresh cadence.
	DefaultRefreshInterval = 10 * time.Minute

	// minQueryLength is the shortest trimmed query that triggers suggestions.
	minQueryLength = 2

	// unknownPlaceName is shown when neither reverse geocoding nor the
	// weather provider yield a usable place name.
	unknownPlaceName = "Ubicación desconocida"

	msgCityNotFound  = "No se pudo encontrar la ciudad"
	msgWeatherFailed = "No se pudo obtener el clima"
)

// Options tune a Coordinator. Zero values fall back to defaults.
type Options struct {
	DebounceInterval time.Duration
	RefreshInterval  time.Duration
	FavoritesLimit   int

	// OnState is invoked after every UIState transition. Optional.
	OnState func(UIState)
	// OnSearch is invoked after every SearchState change. Optional.
	OnSearch func(SearchState)
}

// Coordinator is the location-driven weather state machine. One instance per
// UI session; all exported methods are safe for concurrent use, with state
// mutation serialized internally. Close tears down all background work.
type Coordinator struct {
	client   weather.Client
	geocoder weather.Geocoder
	source   suggest.Source
	favs     favorites.Store

	opts Options

	mu            sync.Mutex
	state         UIState
	search        SearchState
	current       *weather.Coordinates // remembered location; nil means unset
	lastOp        *rememberedOp
	closed        bool
	searchSeq     uint64 // only the newest query may publish suggestions
	suggestCancel context.CancelFunc

	favMu    sync.RWMutex
	favCache []favorites.FavoriteLocation

	debounce taskSlot
	refresh  taskSlot

	unsubscribeFavs func()

	root       context.Context
	cancelRoot context.CancelFunc
}

// New wires a Coordinator from its collaborators. The initial state is
// Loading. The favorites live view is subscribed immediately.
func New(client weather.Client, geocoder weather.Geocoder, source suggest.Source, favs favorites.Store, opts Options) *Coordinator {
	if opts.DebounceInterval <= 0 {
		opts.DebounceInterval = DefaultDebounceInterval
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.FavoritesLimit <= 0 {
		opts.FavoritesLimit = favorites.MaxFavorites
	}

	root, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		client:     client,
		geocoder:   geocoder,
		source:     source,
		favs:       favs,
		opts:       opts,
		state:      loadingState(),
		root:       root,
		cancelRoot: cancel,
	}

	if favs != nil {
		c.unsubscribeFavs = favs.Subscribe(func(list []favorites.FavoriteLocation) {
			c.favMu.Lock()
			c.favCache = list
			c.favMu.Unlock()
		})
	}

	return c
}

// Close cancels pending async work (debounce, refresh timer, in-flight
// fetches) and the favorites subscription. The Coordinator must not be used
// afterwards.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	if c.suggestCancel != nil {
		c.suggestCancel()
		c.suggestCancel = nil
	}
	c.mu.Unlock()

	c.debounce.Cancel()
	c.refresh.Cancel()
	c.cancelRoot()

	if c.unsubscribeFavs != nil {
		c.unsubscribeFavs()
	}
}

// State returns the current UIState.
func (c *Coordinator) State() UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Search returns the current SearchState.
func (c *Coordinator) Search() SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// Favorites returns the last pushed favorites collection.
func (c *Coordinator) Favorites() []favorites.FavoriteLocation {
	c.favMu.RLock()
	defer c.favMu.RUnlock()
	out := make([]favorites.FavoriteLocation, len(c.favCache))
	copy(out, c.favCache)
	return out
}

// LoadByCoordinates fetches the full weather bundle for a coordinate pair.
// The display name prefers a reverse-geocode lookup over the provider's
// nearest-registered-city name. Forecast and air-quality failures are
// tolerated; only a current-conditions failure yields the Error state.
func (c *Coordinator) LoadByCoordinates(lat, lon float64) error {
	coords := weather.Coordinates{Lat: lat, Lon: lon}
	if !coords.Valid() {
		return fmt.Errorf("coordinates out of range: %s", coords)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.state = loadingState()
	c.lastOp = &rememberedOp{kind: opByCoords, coords: coords}
	c.current = &coords
	cb := c.opts.OnState
	st := c.state
	c.mu.Unlock()
	if cb != nil {
		cb(st)
	}

	// Best-effort reverse lookup; failure falls back to the provider name.
	resolved := c.resolvePlaceName(coords)

	cur, err := c.client.CurrentByCoords(c.root, coords)
	if err != nil {
		c.setError(userMessage(err))
		return nil
	}

	name := resolved
	if name == "" {
		name = cur.Name
	}

	c.publishSnapshot(c.buildSnapshot(name, cur))
	return nil
}

// SearchByName fetches the full weather bundle for a free-text city name.
// On failure the previously remembered location is left untouched.
func (c *Coordinator) SearchByName(city string) error {
	if strings.TrimSpace(city) == "" {
		return errors.New("city name must not be blank")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.state = loadingState()
	c.lastOp = &rememberedOp{kind: opByName, name: city}
	c.searchSeq++ // invalidate any pending suggestion fetch
	if c.suggestCancel != nil {
		c.suggestCancel()
		c.suggestCancel = nil
	}
	cb := c.opts.OnState
	st := c.state
	c.mu.Unlock()
	c.debounce.Cancel()
	if cb != nil {
		cb(st)
	}

	cur, err := c.client.CurrentByName(c.root, city)
	if err != nil {
		c.setError(userMessage(err))
		return nil
	}

	name := cur.Name
	if name == "" {
		name = unknownPlaceName
	}

	c.mu.Lock()
	coords := cur.Coords
	c.current = &coords
	c.search = SearchState{}
	searchCB := c.opts.OnSearch
	search := c.search
	c.mu.Unlock()
	if searchCB != nil {
		searchCB(search)
	}

	c.publishSnapshot(c.buildSnapshot(name, cur))
	return nil
}

// UpdateSearchQuery stores the raw text immediately and, when the trimmed
// text is long enough, schedules a debounced suggestion fetch. A newer call
// always cancels the pending timer and any in-flight fetch of an older one.
func (c *Coordinator) UpdateSearchQuery(text string) {
	trimmed := strings.TrimSpace(text)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.search.Query = text
	c.searchSeq++
	seq := c.searchSeq
	if c.suggestCancel != nil {
		c.suggestCancel()
		c.suggestCancel = nil
	}

	if len([]rune(trimmed)) < minQueryLength {
		c.search.Suggestions = nil
		c.search.Fetching = false
		cb := c.opts.OnSearch
		search := c.search
		c.mu.Unlock()
		c.debounce.Cancel()
		if cb != nil {
			cb(search)
		}
		return
	}
	c.mu.Unlock()

	c.debounce.Schedule(c.opts.DebounceInterval, func() {
		c.fetchSuggestions(seq, trimmed)
	})
}

// fetchSuggestions runs after the debounce quiet period. A failed fetch
// publishes an empty list, never an error: suggestions are an optional
// enhancement.
func (c *Coordinator) fetchSuggestions(seq uint64, query string) {
	c.mu.Lock()
	if c.closed || seq != c.searchSeq {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(c.root)
	c.suggestCancel = cancel
	c.search.Fetching = true
	cb := c.opts.OnSearch
	search := c.search
	c.mu.Unlock()
	if cb != nil {
		cb(search)
	}

	cities, err := c.source.Suggest(ctx, query)
	cancel()

	c.mu.Lock()
	if c.closed || seq != c.searchSeq {
		// Superseded while in flight; its results must never be published.
		c.mu.Unlock()
		return
	}
	c.search.Fetching = false
	if err != nil {
		log.Printf("coordinator: suggestion fetch failed for %q: %v", query, err)
		c.search.Suggestions = []weather.City{}
	} else {
		c.search.Suggestions = cities
	}
	cb = c.opts.OnSearch
	search = c.search
	c.mu.Unlock()
	if cb != nil {
		cb(search)
	}
}

// SelectSuggestion clears the search box and loads the picked candidate,
// by coordinates when the candidate carries them, by name otherwise.
func (c *Coordinator) SelectSuggestion(city weather.City) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.search = SearchState{}
	c.searchSeq++
	if c.suggestCancel != nil {
		c.suggestCancel()
		c.suggestCancel = nil
	}
	cb := c.opts.OnSearch
	search := c.search
	c.mu.Unlock()
	c.debounce.Cancel()
	if cb != nil {
		cb(search)
	}

	if city.Coords != nil {
		return c.LoadByCoordinates(city.Coords.Lat, city.Coords.Lon)
	}
	return c.SearchByName(city.Name)
}

// Retry replays the last attempted primary operation with its remembered
// parameters. Without one it is a no-op.
func (c *Coordinator) Retry() error {
	c.mu.Lock()
	op := c.lastOp
	c.mu.Unlock()

	if op == nil {
		return nil
	}
	switch op.kind {
	case opByCoords:
		return c.LoadByCoordinates(op.coords.Lat, op.coords.Lon)
	case opByName:
		return c.SearchByName(op.name)
	default:
		return fmt.Errorf("unknown operation kind %d", op.kind)
	}
}

// RefreshNow re-fetches the remembered location without clearing visible
// data first. On failure the existing snapshot is preserved and no Error
// state is published; a background refresh must never interrupt a user who
// is looking at valid data.
func (c *Coordinator) RefreshNow() {
	c.mu.Lock()
	if c.closed || c.current == nil {
		c.mu.Unlock()
		return
	}
	coords := *c.current
	var prevName string
	if c.state.Kind == StateSuccess && c.state.Snapshot != nil {
		prevName = c.state.Snapshot.DisplayName
	}
	c.mu.Unlock()

	cur, err := c.client.CurrentByCoords(c.root, coords)
	if err != nil {
		log.Printf("coordinator: background refresh failed for %s: %v", coords, err)
		return
	}

	name := prevName
	if name == "" {
		if resolved := c.resolvePlaceName(coords); resolved != "" {
			name = resolved
		} else {
			name = cur.Name
		}
	}

	c.publishSnapshot(c.buildSnapshot(name, cur))
}

// AddFavorite validates against the store's current contents and inserts.
// Distinct errors signal a duplicate name and the collection limit; both
// are transient notices for the caller and never change the UIState.
func (c *Coordinator) AddFavorite(fav favorites.FavoriteLocation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.favs.FindByName(fav.CityName); err == nil {
		return favorites.ErrDuplicate
	} else if !errors.Is(err, favorites.ErrNotFound) {
		return err
	}

	n, err := c.favs.Count()
	if err != nil {
		return err
	}
	if n >= c.opts.FavoritesLimit {
		return favorites.ErrLimitReached
	}

	return c.favs.Insert(fav)
}

// RemoveFavorite deletes by city name. Unconditional; no error when absent.
func (c *Coordinator) RemoveFavorite(cityName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.favs.Delete(cityName)
}

// resolvePlaceName runs the best-effort reverse lookup, trimming the result
// to the locality (the part before the first comma). Returns "" on failure.
func (c *Coordinator) resolvePlaceName(coords weather.Coordinates) string {
	if c.geocoder == nil {
		return ""
	}
	name, err := c.geocoder.ReverseGeocode(c.root, coords)
	if err != nil {
		log.Printf("coordinator: reverse geocode failed for %s: %v", coords, err)
		return ""
	}
	return trimLocality(name)
}

// buildSnapshot fetches forecast and air quality concurrently and assembles
// the snapshot. Either secondary fetch may fail independently; the snapshot
// is still produced with that field absent.
func (c *Coordinator) buildSnapshot(displayName string, cur weather.CurrentConditions) weather.Snapshot {
	if displayName == "" {
		displayName = unknownPlaceName
	}

	snap := weather.Snapshot{
		DisplayName: displayName,
		Current:     cur,
		FetchedAt:   time.Now().UTC(),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		forecast, err := c.client.FetchForecast(c.root, cur.Coords)
		if err != nil {
			log.Printf("coordinator: forecast fetch failed for %s: %v", cur.Coords, err)
			return
		}
		mu.Lock()
		snap.Forecast = forecast
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		aq, err := c.client.FetchAirQuality(c.root, cur.Coords)
		if err != nil {
			log.Printf("coordinator: air quality fetch failed for %s: %v", cur.Coords, err)
			return
		}
		mu.Lock()
		snap.AirQuality = &aq
		mu.Unlock()
	}()

	wg.Wait()
	return snap
}

// publishSnapshot moves the machine to Success and (re)arms the periodic
// refresh timer.
func (c *Coordinator) publishSnapshot(snap weather.Snapshot) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = successState(snap)
	cb := c.opts.OnState
	st := c.state
	c.mu.Unlock()
	if cb != nil {
		cb(st)
	}

	c.scheduleRefresh()
}

func (c *Coordinator) setError(message string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = errorState(message)
	cb := c.opts.OnState
	st := c.state
	c.mu.Unlock()
	if cb != nil {
		cb(st)
	}
}

// scheduleRefresh arms the single-shot refresh timer, replacing any
// previous one. Each firing reschedules itself after the refresh completes,
// so a slow refresh delays the next one rather than overlapping it.
func (c *Coordinator) scheduleRefresh() {
	c.refresh.Schedule(c.opts.RefreshInterval, func() {
		c.RefreshNow()

		c.mu.Lock()
		again := !c.closed && c.current != nil
		c.mu.Unlock()
		if again {
			c.scheduleRefresh()
		}
	})
}

// userMessage maps a client failure to the user-facing Spanish message.
func userMessage(err error) string {
	if errors.Is(err, weather.ErrNotFound) {
		return msgCityNotFound
	}
	return msgWeatherFailed
}

// trimLocality keeps the locality part of a "name, country" string.
func trimLocality(name string) string {
	if i := strings.Index(name, ","); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
