package owm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/inkwx/epaper-weather/internal/clock"
	"github.com/inkwx/epaper-weather/internal/weather"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/3.0/onecall"
	defaultGeoURL  = "https://api.openweathermap.org/geo/1.0/direct"
)

// ClientConfig carries the dependencies of a Client. Zero URL fields fall
// back to the public OpenWeatherMap endpoints.
type ClientConfig struct {
	HTTPClient *http.Client

	// APIKey is a static credential. KeyFunc takes precedence when set, so
	// the key can follow settings changes without rebuilding the client.
	APIKey  string
	KeyFunc func() string

	BaseURL string
	GeoURL  string
	Clock   *clock.Clock
}

// Client talks to the OpenWeatherMap One-Call 3.0 and Geocoding APIs. A
// successful forecast response also synchronizes the wall clock from the
// server-reported observation time.
type Client struct {
	keyFunc func() string
	baseURL string
	geoURL  string
	httpCfg HTTPClientConfig
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	clk     *clock.Clock
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	geoURL := cfg.GeoURL
	if geoURL == "" {
		geoURL = defaultGeoURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		key := cfg.APIKey
		keyFunc = func() string { return key }
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "owm",
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		keyFunc: keyFunc,
		baseURL: baseURL,
		geoURL:  geoURL,
		httpCfg: HTTPClientConfig{
			Client: httpClient,
			Backoff: BackoffConfig{
				MaxRetries:      1,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		cb:      cb,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		clk:     cfg.Clock,
	}
}

// oneCallResponse mirrors the subset of the One-Call payload the display
// consumes. Absent rain/snow objects decode to zero accumulations.
type oneCallResponse struct {
	TimezoneOffset int `json:"timezone_offset"`
	Current        struct {
		Dt         int64   `json:"dt"`
		Sunrise    int64   `json:"sunrise"`
		Sunset     int64   `json:"sunset"`
		Temp       float64 `json:"temp"`
		FeelsLike  float64 `json:"feels_like"`
		Pressure   float64 `json:"pressure"`
		Humidity   float64 `json:"humidity"`
		Clouds     float64 `json:"clouds"`
		Visibility float64 `json:"visibility"`
		WindSpeed  float64 `json:"wind_speed"`
		WindDeg    float64 `json:"wind_deg"`
		Weather    []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"current"`
	Hourly []struct {
		Dt        int64   `json:"dt"`
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
		Clouds    float64 `json:"clouds"`
		WindSpeed float64 `json:"wind_speed"`
		WindDeg   float64 `json:"wind_deg"`
		Pop       float64 `json:"pop"`
		Rain      struct {
			OneHour float64 `json:"1h"`
		} `json:"rain"`
		Snow struct {
			OneHour float64 `json:"1h"`
		} `json:"snow"`
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"hourly"`
	Daily []struct {
		Dt      int64 `json:"dt"`
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
		Temp    struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
		Clouds    float64 `json:"clouds"`
		WindSpeed float64 `json:"wind_speed"`
		WindDeg   float64 `json:"wind_deg"`
		Pop       float64 `json:"pop"`
		Rain      float64 `json:"rain"`
		Snow      float64 `json:"snow"`
		Weather   []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"daily"`
}

// Forecast fetches current, hourly and daily conditions for the coordinates.
// Hourly periods beyond 48 and daily periods beyond 8 are discarded.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, units weather.Units, lang string) (*weather.ForecastData, error) {
	buildRequest := func() (*http.Request, error) {
		params := url.Values{}
		params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
		params.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
		params.Set("units", string(units))
		params.Set("lang", lang)
		params.Set("exclude", "minutely,alerts")
		params.Set("appid", c.keyFunc())

		reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
		return http.NewRequest(http.MethodGet, reqURL, nil)
	}

	// The wake cycle owns the retry budget for forecast fetches, so each
	// call performs a single HTTP attempt.
	cfg := c.httpCfg
	cfg.Backoff.MaxRetries = 0

	resp, err := doRequestWithResilience(ctx, cfg, c.cb, c.limiter, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("openweathermap request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload oneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode openweathermap response: %w", err)
	}

	if c.clk != nil {
		c.clk.SetClock(payload.Current.Dt, payload.TimezoneOffset)
	}

	data := &weather.ForecastData{}

	cur := &data.Current
	cur.Timestamp = payload.Current.Dt
	cur.Sunrise = payload.Current.Sunrise
	cur.Sunset = payload.Current.Sunset
	cur.Temp = payload.Current.Temp
	cur.FeelsLike = payload.Current.FeelsLike
	cur.Pressure = payload.Current.Pressure
	cur.Humidity = payload.Current.Humidity
	cur.CloudCover = payload.Current.Clouds
	cur.Visibility = payload.Current.Visibility
	cur.WindSpeed = payload.Current.WindSpeed
	cur.WindDeg = payload.Current.WindDeg
	cur.TimezoneOffset = payload.TimezoneOffset
	if len(payload.Current.Weather) > 0 {
		cur.Icon = weather.Icon(payload.Current.Weather[0].Icon)
	}

	hourly := payload.Hourly
	if len(hourly) > weather.MaxHourly {
		hourly = hourly[:weather.MaxHourly]
	}
	data.Hourly = make([]weather.ForecastRecord, 0, len(hourly))
	for _, h := range hourly {
		rec := weather.ForecastRecord{
			Timestamp:  h.Dt,
			Temp:       h.Temp,
			FeelsLike:  h.FeelsLike,
			High:       h.Temp,
			Low:        h.Temp,
			Humidity:   h.Humidity,
			Pressure:   h.Pressure,
			CloudCover: h.Clouds,
			WindSpeed:  h.WindSpeed,
			WindDeg:    h.WindDeg,
			Pop:        h.Pop,
			Rainfall:   h.Rain.OneHour,
			Snowfall:   h.Snow.OneHour,
		}
		if len(h.Weather) > 0 {
			rec.Icon = weather.Icon(h.Weather[0].Icon)
		}
		data.Hourly = append(data.Hourly, rec)
	}

	daily := payload.Daily
	if len(daily) > weather.MaxDaily {
		daily = daily[:weather.MaxDaily]
	}
	data.Daily = make([]weather.ForecastRecord, 0, len(daily))
	for _, d := range daily {
		rec := weather.ForecastRecord{
			Timestamp:  d.Dt,
			Sunrise:    d.Sunrise,
			Sunset:     d.Sunset,
			High:       d.Temp.Max,
			Low:        d.Temp.Min,
			Humidity:   d.Humidity,
			Pressure:   d.Pressure,
			CloudCover: d.Clouds,
			WindSpeed:  d.WindSpeed,
			WindDeg:    d.WindDeg,
			Pop:        d.Pop,
			Rainfall:   d.Rain,
			Snowfall:   d.Snow,
		}
		if len(d.Weather) > 0 {
			rec.Icon = weather.Icon(d.Weather[0].Icon)
		}
		data.Daily = append(data.Daily, rec)
	}

	// Today's extremes come from the first daily period, not the
	// instantaneous observation.
	if len(data.Daily) > 0 {
		data.Current.High = data.Daily[0].High
		data.Current.Low = data.Daily[0].Low
	}
	data.Current.Trend = weather.ComputeTrend(data.Daily)

	return data, nil
}

// geoResult is one entry of the geocoding response array.
type geoResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

// Geocode resolves a free-form "City,State,Country" string to coordinates.
// An empty result set, a malformed entry, or out-of-range coordinates all
// report ErrLocationUnresolved; a rejected key reports ErrCredentialsInvalid.
func (c *Client) Geocode(ctx context.Context, query string) (float64, float64, error) {
	if query == "" {
		return 0, 0, fmt.Errorf("%w: empty location string", ErrLocationUnresolved)
	}
	key := c.keyFunc()
	if key == "" {
		return 0, 0, fmt.Errorf("%w: missing api key", ErrCredentialsInvalid)
	}

	buildRequest := func() (*http.Request, error) {
		params := url.Values{}
		params.Set("q", query)
		params.Set("limit", "1")
		params.Set("appid", key)

		reqURL := fmt.Sprintf("%s?%s", c.geoURL, params.Encode())
		return http.NewRequest(http.MethodGet, reqURL, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.cb, c.limiter, buildRequest)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	var results []geoResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("%w: malformed geocoding response", ErrLocationUnresolved)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("%w: no match for %q", ErrLocationUnresolved, query)
	}

	lat, lon := results[0].Lat, results[0].Lon
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%w: coordinates out of range", ErrLocationUnresolved)
	}

	return lat, lon, nil
}
