package httpapi

import (
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/LeoCrisGG/Clima/internal/coordinator"
	"github.com/LeoCrisGG/Clima/internal/favorites"
	"github.com/LeoCrisGG/Clima/internal/store"
	"github.com/LeoCrisGG/Clima/internal/weather"
)

var validate = validator.New()

// Deps bundles what the HTTP layer needs. The routes only forward user
// intents into the coordinator and render its state; they hold no state of
// their own.
type Deps struct {
	Coordinator *coordinator.Coordinator
	Snapshots   *store.MemoryStore
	MapAPIKey   string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(deps.Coordinator.State())
	})

	v1.Post("/location", func(c *fiber.Ctx) error {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := deps.Coordinator.LoadByCoordinates(*req.Lat, *req.Lon); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(deps.Coordinator.State())
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := deps.Coordinator.SearchByName(req.City); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(deps.Coordinator.State())
	})

	v1.Put("/search/query", func(c *fiber.Ctx) error {
		var req queryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		deps.Coordinator.UpdateSearchQuery(req.Text)
		return c.JSON(deps.Coordinator.Search())
	})

	v1.Get("/search/suggestions", func(c *fiber.Ctx) error {
		return c.JSON(deps.Coordinator.Search())
	})

	v1.Post("/search/select", func(c *fiber.Ctx) error {
		var req selectRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := deps.Coordinator.SelectSuggestion(req.toCity()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(deps.Coordinator.State())
	})

	v1.Post("/retry", func(c *fiber.Ctx) error {
		if err := deps.Coordinator.Retry(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(deps.Coordinator.State())
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		deps.Coordinator.RefreshNow()
		return c.JSON(deps.Coordinator.State())
	})

	v1.Get("/favorites", func(c *fiber.Ctx) error {
		favs := deps.Coordinator.Favorites()

		out := make([]favoriteView, 0, len(favs))
		for _, fav := range favs {
			view := favoriteView{FavoriteLocation: fav}
			if deps.Snapshots != nil {
				if snap, err := deps.Snapshots.Get(fav.CityName); err == nil {
					s := snap
					view.Snapshot = &s
				}
			}
			out = append(out, view)
		}
		return c.JSON(out)
	})

	v1.Post("/favorites", func(c *fiber.Ctx) error {
		var req favoriteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		err := deps.Coordinator.AddFavorite(req.toFavorite())
		switch {
		case errors.Is(err, favorites.ErrDuplicate):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case errors.Is(err, favorites.ErrLimitReached):
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, "no se pudo guardar el favorito")
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	v1.Delete("/favorites/:name", func(c *fiber.Ctx) error {
		name, err := decodeParam(c, "name")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := deps.Coordinator.RemoveFavorite(name); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "no se pudo eliminar el favorito")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// The map widget loads tiles client-side; it only needs the key.
	v1.Get("/config/map", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"mapApiKey": deps.MapAPIKey})
	})
}

func decodeParam(c *fiber.Ctx, name string) (string, error) {
	v, err := url.PathUnescape(c.Params(name))
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", errors.New("missing path parameter: " + name)
	}
	return v, nil
}

type locationRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

type searchRequest struct {
	City string `json:"city" validate:"required"`
}

type queryRequest struct {
	Text string `json:"text"`
}

type selectRequest struct {
	Name    string   `json:"name" validate:"required"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon     *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}

func (r selectRequest) toCity() weather.City {
	city := weather.City{Name: r.Name, Country: r.Country}
	if r.Lat != nil && r.Lon != nil {
		city.Coords = &weather.Coordinates{Lat: *r.Lat, Lon: *r.Lon}
	}
	return city
}

type favoriteRequest struct {
	CityName string   `json:"cityName" validate:"required"`
	Lat      *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon      *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Country  string   `json:"country"`
}

func (r favoriteRequest) toFavorite() favorites.FavoriteLocation {
	return favorites.FavoriteLocation{
		CityName: r.CityName,
		Lat:      *r.Lat,
		Lon:      *r.Lon,
		Country:  r.Country,
	}
}

// favoriteView is a favorite plus its last prefetched snapshot, if any.
type favoriteView struct {
	favorites.FavoriteLocation
	Snapshot *weather.Snapshot `json:"snapshot,omitempty"`
}
