package provision

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/inkwx/epaper-weather/internal/config"
	"github.com/inkwx/epaper-weather/internal/power"
	"github.com/inkwx/epaper-weather/internal/weather/owm"
)

var validate = validator.New()

// SettingsStore is the persistence surface the API writes through.
type SettingsStore interface {
	Current() (config.Settings, bool)
	Save(config.Settings) error
	Reset() error
}

// StatusSource reports the agent's most recent cycle.
type StatusSource interface {
	Snapshot() power.Snapshot
}

// Geocoder resolves location strings for the validate endpoint.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (float64, float64, error)
}

// Deps carries the collaborators for the API routes.
type Deps struct {
	Store    SettingsStore
	Status   StatusSource
	Geocoder Geocoder
}

// RegisterRoutes wires the setup handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(deps.Status.Snapshot())
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		settings, configured := deps.Store.Current()
		return c.JSON(redactSettings(settings, configured))
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var req settingsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		current, _ := deps.Store.Current()
		next := req.apply(current)
		if err := deps.Store.Save(next); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(redactSettings(next, true))
	})

	v1.Post("/settings/reset", func(c *fiber.Ctx) error {
		if err := deps.Store.Reset(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to reset settings")
		}
		settings, _ := deps.Store.Current()
		return c.JSON(redactSettings(settings, false))
	})

	v1.Post("/location/validate", func(c *fiber.Ctx) error {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		lat, lon, err := deps.Geocoder.Geocode(c.Context(), req.Location)
		if err != nil {
			switch {
			case errors.Is(err, owm.ErrCredentialsInvalid):
				return fiber.NewError(fiber.StatusUnauthorized, "api key rejected by geocoder")
			case errors.Is(err, owm.ErrLocationUnresolved):
				return fiber.NewError(fiber.StatusNotFound, "location not found")
			default:
				return fiber.NewError(fiber.StatusBadGateway, "geocoder unreachable")
			}
		}

		return c.JSON(fiber.Map{
			"location":  req.Location,
			"latitude":  lat,
			"longitude": lon,
		})
	})
}

// settingsRequest is the PUT body. Coordinates are geocoder-owned and never
// accepted from clients. Empty secrets keep their stored values so a client
// can change the refresh interval without resending the API key.
type settingsRequest struct {
	APIKey         string `json:"api_key"`
	Location       string `json:"location" validate:"required"`
	Language       string `json:"language"`
	Units          string `json:"units" validate:"oneof=metric imperial"`
	RefreshMinutes int    `json:"refresh_minutes" validate:"min=1,max=1439"`
	WakeHour       int    `json:"wake_hour" validate:"gte=0,lte=23"`
	SleepHour      int    `json:"sleep_hour" validate:"gte=1,lte=24"`
	SSID           string `json:"ssid"`
	Password       string `json:"password"`
}

// apply merges the request onto the current settings. A changed location
// string invalidates the stored coordinates so the next cycle geocodes again.
func (r settingsRequest) apply(current config.Settings) config.Settings {
	next := current
	next.Location = r.Location
	next.Units = r.Units
	next.RefreshMinutes = r.RefreshMinutes
	next.WakeHour = r.WakeHour
	next.SleepHour = r.SleepHour
	next.SSID = r.SSID
	if r.APIKey != "" {
		next.APIKey = r.APIKey
	}
	if r.Password != "" {
		next.Password = r.Password
	}
	if r.Language != "" {
		next.Language = r.Language
	}
	if r.Location != current.Location {
		next.Latitude = config.CoordinateSentinel
		next.Longitude = config.CoordinateSentinel
	}
	return next
}

// settingsResponse is the settings shape returned to clients. Secrets never
// leave the device.
type settingsResponse struct {
	Location       string  `json:"location"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Language       string  `json:"language"`
	Units          string  `json:"units"`
	RefreshMinutes int     `json:"refresh_minutes"`
	WakeHour       int     `json:"wake_hour"`
	SleepHour      int     `json:"sleep_hour"`
	SSID           string  `json:"ssid"`
	HasAPIKey      bool    `json:"has_api_key"`
	Configured     bool    `json:"configured"`
}

func redactSettings(s config.Settings, configured bool) settingsResponse {
	return settingsResponse{
		Location:       s.Location,
		Latitude:       s.Latitude,
		Longitude:      s.Longitude,
		Language:       s.Language,
		Units:          s.Units,
		RefreshMinutes: s.RefreshMinutes,
		WakeHour:       s.WakeHour,
		SleepHour:      s.SleepHour,
		SSID:           s.SSID,
		HasAPIKey:      s.APIKey != "",
		Configured:     configured,
	}
}

// locationRequest is the body of the validate endpoint.
type locationRequest struct {
	Location string `json:"location" validate:"required"`
}
