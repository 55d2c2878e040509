package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// CoordinateSentinel marks a coordinate that has not been resolved yet. The
// geocoder fills real values in on the first successful cycle after the
// location string changes.
const CoordinateSentinel = -181

var validate = validator.New()

// Settings are the persisted device settings, editable through the setup API.
type Settings struct {
	APIKey   string `json:"api_key" validate:"required"`
	Location string `json:"location" validate:"required"`

	// Resolved from Location by the geocoder; CoordinateSentinel until then.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Language string `json:"language" validate:"required"`
	Units    string `json:"units" validate:"oneof=metric imperial"`

	// RefreshMinutes is the display refresh interval. Wake times align to
	// multiples of it past the hour.
	RefreshMinutes int `json:"refresh_minutes" validate:"min=1,max=1439"`

	// WakeHour and SleepHour bound the daily refresh window. SleepHour 24
	// disables dormancy.
	WakeHour  int `json:"wake_hour" validate:"gte=0,lte=23"`
	SleepHour int `json:"sleep_hour" validate:"gte=1,lte=24"`

	// Wifi credentials are stored for boards that manage their own
	// interface; the agent itself never dials with them.
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// Default returns the factory settings the device ships with.
func Default() Settings {
	return Settings{
		Location:       "Chicago,IL,US",
		Latitude:       41.8832,
		Longitude:      87.6324,
		Language:       "en",
		Units:          "metric",
		RefreshMinutes: 60,
		WakeHour:       0,
		SleepHour:      24,
	}
}

// HasCoordinates reports whether both coordinates hold resolved values
// rather than the sentinel.
func (s Settings) HasCoordinates() bool {
	return s.Latitude > -180 && s.Latitude < 180 && s.Longitude > -180 && s.Longitude < 180
}

// Imperial reports whether the display renders imperial units.
func (s Settings) Imperial() bool {
	return s.Units == "imperial"
}

// Validate checks field constraints before settings are persisted.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if s.Latitude != CoordinateSentinel && (s.Latitude < -90 || s.Latitude > 90) {
		return fmt.Errorf("latitude %.4f out of range", s.Latitude)
	}
	if s.Longitude != CoordinateSentinel && (s.Longitude < -180 || s.Longitude > 180) {
		return fmt.Errorf("longitude %.4f out of range", s.Longitude)
	}
	return nil
}

// AppConfig holds process-level configuration that never changes at runtime.
// Device behavior lives in Settings instead.
type AppConfig struct {
	// SettingsPath is where persisted settings live.
	SettingsPath string

	Port string

	// OWMBaseURL and OWMGeoURL override the OpenWeatherMap endpoints,
	// mainly for tests. Empty selects the production endpoints.
	OWMBaseURL string
	OWMGeoURL  string

	// Display selects the frame sink: "png" or "epd".
	Display        string
	DisplayPNGPath string

	// BatterySensor selects the voltage source: "none" or "ads1115".
	BatterySensor string
	// BatteryScale compensates for the voltage divider in front of the ADC.
	BatteryScale float64

	// DriftSeconds pads every computed sleep past the refresh boundary.
	DriftSeconds int

	// LowBatteryMillivolts is the refresh cutoff voltage.
	LowBatteryMillivolts int

	// ConnectivityHost is the TCP endpoint dialed by the reachability check.
	ConnectivityHost string

	// SetupURL overrides the address shown on the provisioning screen.
	// Empty derives one from the hostname and port.
	SetupURL string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.SettingsPath = getenvDefault("SETTINGS_PATH", "settings.json")
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.OWMBaseURL = os.Getenv("OWM_BASE_URL")
	cfg.OWMGeoURL = os.Getenv("OWM_GEO_URL")

	cfg.Display = getenvDefault("DISPLAY_DRIVER", "png")
	if cfg.Display != "png" && cfg.Display != "epd" {
		return nil, fmt.Errorf("invalid DISPLAY_DRIVER %q: want png or epd", cfg.Display)
	}
	cfg.DisplayPNGPath = getenvDefault("DISPLAY_PNG_PATH", "frame.png")

	cfg.BatterySensor = getenvDefault("BATTERY_SENSOR", "none")
	if cfg.BatterySensor != "none" && cfg.BatterySensor != "ads1115" {
		return nil, fmt.Errorf("invalid BATTERY_SENSOR %q: want none or ads1115", cfg.BatterySensor)
	}
	cfg.BatteryScale = getenvFloat("BATTERY_SCALE", 1.0)

	cfg.DriftSeconds = getenvInt("DRIFT_SECONDS", 30)

	// 3.2V, the discharge knee of a single LiPo cell.
	cfg.LowBatteryMillivolts = getenvInt("LOW_BATTERY_MILLIVOLTS", 3200)

	cfg.ConnectivityHost = getenvDefault("CONNECTIVITY_HOST", "api.openweathermap.org:443")
	cfg.SetupURL = os.Getenv("SETUP_URL")

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

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
