// Package suggest provides city-name suggestions for search-as-you-type.
// Sources are interchangeable: a fixed offline list or a remote geocoding
// lookup.
package suggest

import (
	"context"
	"sort"
	"strings"

	"github.com/LeoCrisGG/Clima/internal/weather"
)

// DefaultLimit caps how many suggestions are ever shown.
const DefaultLimit = 5

// Source returns ordered candidate cities for a partial query.
type Source interface {
	Suggest(ctx context.Context, query string) ([]weather.City, error)
}

// Rank orders candidates for a query: names starting with the query rank
// before names merely containing it, case-insensitive; non-matching
// candidates are dropped. Order within each group is preserved. The result
// is truncated to limit entries.
func Rank(query string, cities []weather.City, limit int) []weather.City {
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	type ranked struct {
		city weather.City
		tier int // 0 = prefix, 1 = substring
		pos  int
	}

	matches := make([]ranked, 0, len(cities))
	for i, city := range cities {
		name := strings.ToLower(city.Name)
		switch {
		case strings.HasPrefix(name, q):
			matches = append(matches, ranked{city: city, tier: 0, pos: i})
		case strings.Contains(name, q):
			matches = append(matches, ranked{city: city, tier: 1, pos: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].tier != matches[j].tier {
			return matches[i].tier < matches[j].tier
		}
		return matches[i].pos < matches[j].pos
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]weather.City, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.city)
	}
	return out
}
