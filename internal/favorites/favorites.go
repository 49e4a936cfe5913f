// Package favorites persists the user's saved locations. The collection is
// bounded: at most MaxFavorites records, no two sharing a city name
// (case-sensitive as stored).
package favorites

import (
	"errors"
	"time"
)

// MaxFavorites is the collection bound enforced on insert.
const MaxFavorites = 5

var (
	// ErrDuplicate is returned when a record with the same city name exists.
	ErrDuplicate = errors.New("la ciudad ya está en favoritos")
	// ErrLimitReached is returned when the collection already holds
	// MaxFavorites records.
	ErrLimitReached = errors.New("límite de favoritos alcanzado")
	// ErrNotFound is returned by FindByName when no record matches.
	ErrNotFound = errors.New("favorito no encontrado")
)

// FavoriteLocation is a saved location. CityName is the unique key.
// Immutable after creation; removed only by explicit delete.
type FavoriteLocation struct {
	CityName  string    `json:"cityName"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the CRUD contract for the durable favorites collection. List order
// is insertion order (oldest first). Subscribers receive the full updated
// collection after every successful mutation, plus once on subscribe.
type Store interface {
	List() ([]FavoriteLocation, error)
	Count() (int, error)
	Insert(fav FavoriteLocation) error
	Delete(cityName string) error
	FindByName(cityName string) (*FavoriteLocation, error)
	Subscribe(fn func([]FavoriteLocation)) (unsubscribe func())
	Close() error
}
