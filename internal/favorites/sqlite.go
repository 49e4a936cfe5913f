package favorites

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using sqlite (pure Go driver modernc.org/sqlite).
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	subs    map[int]func([]FavoriteLocation)
	nextSub int
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL improves concurrency for the small user-initiated writes we do.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Println("favorites: warning: could not set WAL mode:", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS favorites (
        city_name TEXT PRIMARY KEY,
        lat REAL NOT NULL,
        lon REAL NOT NULL,
        country TEXT,
        created_at TEXT NOT NULL
    );`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:   db,
		subs: make(map[int]func([]FavoriteLocation)),
	}, nil
}

func (s *SQLiteStore) List() ([]FavoriteLocation, error) {
	rows, err := s.db.Query(`SELECT city_name, lat, lon, country, created_at FROM favorites ORDER BY created_at, city_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FavoriteLocation, 0, MaxFavorites)
	for rows.Next() {
		var f FavoriteLocation
		var ts string
		if err := rows.Scan(&f.CityName, &f.Lat, &f.Lon, &f.Country, &ts); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			f.CreatedAt = t
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM favorites`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Insert(fav FavoriteLocation) error {
	created := fav.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := s.db.Exec(`INSERT INTO favorites(city_name, lat, lon, country, created_at) VALUES(?,?,?,?,?)`,
		fav.CityName, fav.Lat, fav.Lon, fav.Country, created.UTC().Format(time.RFC3339))
	if err != nil {
		// Backstop for the PRIMARY KEY constraint; the coordinator checks
		// for duplicates before calling Insert.
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "constraint") {
			return ErrDuplicate
		}
		return err
	}

	s.notify()
	return nil
}

func (s *SQLiteStore) Delete(cityName string) error {
	if _, err := s.db.Exec(`DELETE FROM favorites WHERE city_name = ?`, cityName); err != nil {
		return err
	}
	s.notify()
	return nil
}

func (s *SQLiteStore) FindByName(cityName string) (*FavoriteLocation, error) {
	var f FavoriteLocation
	var ts string
	err := s.db.QueryRow(`SELECT city_name, lat, lon, country, created_at FROM favorites WHERE city_name = ?`, cityName).
		Scan(&f.CityName, &f.Lat, &f.Lon, &f.Country, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		f.CreatedAt = t
	}
	return &f, nil
}

// Subscribe registers a listener for the live view. The listener is invoked
// synchronously with the current collection before Subscribe returns, and
// again after every successful mutation.
func (s *SQLiteStore) Subscribe(fn func([]FavoriteLocation)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	if list, err := s.List(); err == nil {
		fn(list)
	}

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *SQLiteStore) notify() {
	list, err := s.List()
	if err != nil {
		log.Println("favorites: warning: could not read list for notification:", err)
		return
	}

	s.mu.Lock()
	subs := make([]func([]FavoriteLocation), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(list)
	}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
