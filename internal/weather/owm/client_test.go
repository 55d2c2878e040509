package owm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inkwx/epaper-weather/internal/clock"
	"github.com/inkwx/epaper-weather/internal/weather"
)

func oneCallPayload(hourlyCount, dailyCount int) map[string]interface{} {
	hourly := make([]map[string]interface{}, 0, hourlyCount)
	for i := 0; i < hourlyCount; i++ {
		h := map[string]interface{}{
			"dt":         1700000000 + int64(i)*3600,
			"temp":       10.0 + float64(i)*0.1,
			"pressure":   1013.0,
			"humidity":   60.0,
			"clouds":     20.0,
			"wind_speed": 3.0,
			"wind_deg":   180.0,
			"pop":        0.1,
			"weather":    []map[string]interface{}{{"icon": "02d"}},
		}
		if i == 0 {
			h["rain"] = map[string]interface{}{"1h": 0.4}
		}
		hourly = append(hourly, h)
	}

	daily := make([]map[string]interface{}, 0, dailyCount)
	for i := 0; i < dailyCount; i++ {
		pressure := 1013.3
		if i > 0 {
			pressure = 1010.1
		}
		daily = append(daily, map[string]interface{}{
			"dt":       1700000000 + int64(i)*86400,
			"sunrise":  1700020000 + int64(i)*86400,
			"sunset":   1700060000 + int64(i)*86400,
			"temp":     map[string]interface{}{"min": 4.5, "max": 14.5},
			"pressure": pressure,
			"humidity": 55.0,
			"clouds":   30.0,
			"pop":      0.2,
			"weather":  []map[string]interface{}{{"icon": "03d"}},
		})
	}

	return map[string]interface{}{
		"timezone_offset": 3600,
		"current": map[string]interface{}{
			"dt":         1700000000,
			"sunrise":    1700020000,
			"sunset":     1700060000,
			"temp":       11.2,
			"feels_like": 9.8,
			"pressure":   1013.0,
			"humidity":   62.0,
			"clouds":     25.0,
			"visibility": 10000.0,
			"wind_speed": 4.2,
			"wind_deg":   210.0,
			"weather":    []map[string]interface{}{{"icon": "02d"}},
		},
		"hourly": hourly,
		"daily":  daily,
	}
}

func TestForecastDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(oneCallPayload(60, 9))
	}))
	defer server.Close()

	clk := clock.New()
	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Clock:      clk,
	})

	data, err := client.Forecast(context.Background(), 41.8832, -87.6324, weather.UnitsMetric, "en")
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}

	if len(data.Hourly) != weather.MaxHourly {
		t.Errorf("expected %d hourly periods, got %d", weather.MaxHourly, len(data.Hourly))
	}
	if len(data.Daily) != weather.MaxDaily {
		t.Errorf("expected %d daily periods, got %d", weather.MaxDaily, len(data.Daily))
	}

	if data.Current.High != 14.5 || data.Current.Low != 4.5 {
		t.Errorf("current extremes should come from the first daily period, got high=%v low=%v",
			data.Current.High, data.Current.Low)
	}
	if data.Current.Trend != weather.TrendRising {
		t.Errorf("expected rising pressure trend, got %q", data.Current.Trend)
	}
	if data.Current.Icon != "02d" {
		t.Errorf("expected current icon 02d, got %q", data.Current.Icon)
	}

	if data.Hourly[0].Rainfall != 0.4 {
		t.Errorf("expected first hourly rainfall 0.4, got %v", data.Hourly[0].Rainfall)
	}
	if data.Hourly[1].Rainfall != 0 || data.Hourly[1].Snowfall != 0 {
		t.Errorf("absent accumulation objects should decode to zero, got rain=%v snow=%v",
			data.Hourly[1].Rainfall, data.Hourly[1].Snowfall)
	}
	if data.Hourly[0].High != data.Hourly[0].Temp || data.Hourly[0].Low != data.Hourly[0].Temp {
		t.Errorf("hourly extremes should mirror the point temperature")
	}

	if !clk.Synced() {
		t.Error("expected clock to be synchronized after a successful fetch")
	}
	if clk.OffsetSeconds() != 3600 {
		t.Errorf("expected clock offset 3600, got %d", clk.OffsetSeconds())
	}
}

func TestForecastRequestParams(t *testing.T) {
	var query map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"lat":     r.URL.Query().Get("lat"),
			"lon":     r.URL.Query().Get("lon"),
			"units":   r.URL.Query().Get("units"),
			"lang":    r.URL.Query().Get("lang"),
			"exclude": r.URL.Query().Get("exclude"),
			"appid":   r.URL.Query().Get("appid"),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(oneCallPayload(2, 2))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		APIKey:     "test-key",
		BaseURL:    server.URL,
	})

	if _, err := client.Forecast(context.Background(), 41.8832, -87.6324, weather.UnitsImperial, "de"); err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}

	expected := map[string]string{
		"lat":     "41.883200",
		"lon":     "-87.632400",
		"units":   "imperial",
		"lang":    "de",
		"exclude": "minutely,alerts",
		"appid":   "test-key",
	}
	for key, want := range expected {
		if query[key] != want {
			t.Errorf("query param %s: expected %q, got %q", key, want, query[key])
		}
	}
}

func TestForecastUnauthorized(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		APIKey:     "bad-key",
		BaseURL:    server.URL,
	})

	_, err := client.Forecast(context.Background(), 0, 0, weather.UnitsMetric, "en")
	if !errors.Is(err, ErrCredentialsInvalid) {
		t.Fatalf("expected ErrCredentialsInvalid, got %v", err)
	}
	if requests != 1 {
		t.Errorf("401 must not be retried, got %d requests", requests)
	}
}

func TestForecastServerError(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		APIKey:     "test-key",
		BaseURL:    server.URL,
	})

	_, err := client.Forecast(context.Background(), 0, 0, weather.UnitsMetric, "en")
	if err == nil {
		t.Fatal("expected error for server failure")
	}
	if errors.Is(err, ErrCredentialsInvalid) {
		t.Fatalf("server failure must not classify as invalid credentials: %v", err)
	}
	if requests != 1 {
		t.Errorf("forecast fetch should not retry internally, got %d requests", requests)
	}
}

func TestGeocode(t *testing.T) {
	t.Run("resolves coordinates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("q"); got != "Chicago,IL,US" {
				t.Errorf("expected q=Chicago,IL,US, got %q", got)
			}
			if got := r.URL.Query().Get("limit"); got != "1" {
				t.Errorf("expected limit=1, got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"name": "Chicago", "lat": 41.8832, "lon": -87.6324, "country": "US"},
			})
		}))
		defer server.Close()

		client := NewClient(ClientConfig{
			HTTPClient: server.Client(),
			APIKey:     "test-key",
			GeoURL:     server.URL,
		})

		lat, lon, err := client.Geocode(context.Background(), "Chicago,IL,US")
		if err != nil {
			t.Fatalf("Geocode returned error: %v", err)
		}
		if lat != 41.8832 || lon != -87.6324 {
			t.Errorf("expected 41.8832,-87.6324, got %v,%v", lat, lon)
		}
	})

	t.Run("empty result set", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte("[]"))
		}))
		defer server.Close()

		client := NewClient(ClientConfig{
			HTTPClient: server.Client(),
			APIKey:     "test-key",
			GeoURL:     server.URL,
		})

		_, _, err := client.Geocode(context.Background(), "Nowhere,ZZ")
		if !errors.Is(err, ErrLocationUnresolved) {
			t.Fatalf("expected ErrLocationUnresolved, got %v", err)
		}
	})

	t.Run("out of range coordinates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"name": "Broken", "lat": 95.0, "lon": 10.0, "country": "XX"},
			})
		}))
		defer server.Close()

		client := NewClient(ClientConfig{
			HTTPClient: server.Client(),
			APIKey:     "test-key",
			GeoURL:     server.URL,
		})

		_, _, err := client.Geocode(context.Background(), "Broken")
		if !errors.Is(err, ErrLocationUnresolved) {
			t.Fatalf("expected ErrLocationUnresolved, got %v", err)
		}
	})

	t.Run("rejected key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{
			HTTPClient: server.Client(),
			APIKey:     "bad-key",
			GeoURL:     server.URL,
		})

		_, _, err := client.Geocode(context.Background(), "Chicago,IL,US")
		if !errors.Is(err, ErrCredentialsInvalid) {
			t.Fatalf("expected ErrCredentialsInvalid, got %v", err)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		client := NewClient(ClientConfig{APIKey: "test-key"})
		_, _, err := client.Geocode(context.Background(), "")
		if !errors.Is(err, ErrLocationUnresolved) {
			t.Fatalf("expected ErrLocationUnresolved, got %v", err)
		}
	})
}
