package suggest

import (
	"context"

	"github.com/LeoCrisGG/Clima/internal/weather"
)

// defaultCities is the offline candidate list, used when no geocoding
// backend is configured.
var defaultCities = []weather.City{
	{Name: "Madrid", Country: "ES"},
	{Name: "Barcelona", Country: "ES"},
	{Name: "Valencia", Country: "ES"},
	{Name: "Sevilla", Country: "ES"},
	{Name: "Zaragoza", Country: "ES"},
	{Name: "Málaga", Country: "ES"},
	{Name: "Bilbao", Country: "ES"},
	{Name: "Ciudad de México", Country: "MX"},
	{Name: "Guadalajara", Country: "MX"},
	{Name: "Monterrey", Country: "MX"},
	{Name: "Buenos Aires", Country: "AR"},
	{Name: "Córdoba", Country: "AR"},
	{Name: "Rosario", Country: "AR"},
	{Name: "Bogotá", Country: "CO"},
	{Name: "Medellín", Country: "CO"},
	{Name: "Cali", Country: "CO"},
	{Name: "Lima", Country: "PE"},
	{Name: "Arequipa", Country: "PE"},
	{Name: "Santiago", Country: "CL"},
	{Name: "Valparaíso", Country: "CL"},
	{Name: "Caracas", Country: "VE"},
	{Name: "Maracaibo", Country: "VE"},
	{Name: "Quito", Country: "EC"},
	{Name: "Guayaquil", Country: "EC"},
	{Name: "Montevideo", Country: "UY"},
	{Name: "Asunción", Country: "PY"},
	{Name: "La Paz", Country: "BO"},
	{Name: "San José", Country: "CR"},
	{Name: "La Habana", Country: "CU"},
	{Name: "Santo Domingo", Country: "DO"},
}

// StaticSource serves suggestions from a fixed in-memory list. It never
// fails and never touches the network.
type StaticSource struct {
	cities []weather.City
	limit  int
}

// NewStaticSource creates a source over the default city list.
func NewStaticSource() *StaticSource {
	return &StaticSource{cities: defaultCities, limit: DefaultLimit}
}

// NewStaticSourceWith creates a source over a caller-provided list.
func NewStaticSourceWith(cities []weather.City, limit int) *StaticSource {
	return &StaticSource{cities: cities, limit: limit}
}

func (s *StaticSource) Suggest(ctx context.Context, query string) ([]weather.City, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return Rank(query, s.cities, s.limit), nil
}
