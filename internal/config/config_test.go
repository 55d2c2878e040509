package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SETTINGS_PATH", "PORT", "DISPLAY_DRIVER", "DISPLAY_PNG_PATH",
		"BATTERY_SENSOR", "BATTERY_SCALE", "DRIFT_SECONDS",
		"LOW_BATTERY_MILLIVOLTS", "CONNECTIVITY_HOST",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.Display != "png" {
		t.Errorf("display = %q, want png", cfg.Display)
	}
	if cfg.BatterySensor != "none" {
		t.Errorf("battery sensor = %q, want none", cfg.BatterySensor)
	}
	if cfg.BatteryScale != 1.0 {
		t.Errorf("battery scale = %v, want 1.0", cfg.BatteryScale)
	}
	if cfg.DriftSeconds != 30 {
		t.Errorf("drift = %d, want 30", cfg.DriftSeconds)
	}
	if cfg.LowBatteryMillivolts != 3200 {
		t.Errorf("low battery cutoff = %d, want 3200", cfg.LowBatteryMillivolts)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DISPLAY_DRIVER", "oled")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown display driver")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DISPLAY_DRIVER", "epd")
	t.Setenv("BATTERY_SENSOR", "ads1115")
	t.Setenv("BATTERY_SCALE", "2.0")
	t.Setenv("DRIFT_SECONDS", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Display != "epd" {
		t.Errorf("display = %q, want epd", cfg.Display)
	}
	if cfg.BatterySensor != "ads1115" {
		t.Errorf("battery sensor = %q, want ads1115", cfg.BatterySensor)
	}
	if cfg.BatteryScale != 2.0 {
		t.Errorf("battery scale = %v, want 2.0", cfg.BatteryScale)
	}
	if cfg.DriftSeconds != 45 {
		t.Errorf("drift = %d, want 45", cfg.DriftSeconds)
	}
}

func TestSettingsValidate(t *testing.T) {
	base := Default()
	base.APIKey = "abc123"

	cases := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"factory settings with key", func(s *Settings) {}, false},
		{"missing api key", func(s *Settings) { s.APIKey = "" }, true},
		{"missing location", func(s *Settings) { s.Location = "" }, true},
		{"unknown units", func(s *Settings) { s.Units = "kelvin" }, true},
		{"imperial units", func(s *Settings) { s.Units = "imperial" }, false},
		{"refresh too small", func(s *Settings) { s.RefreshMinutes = 0 }, true},
		{"refresh too large", func(s *Settings) { s.RefreshMinutes = 1440 }, true},
		{"wake hour too large", func(s *Settings) { s.WakeHour = 24 }, true},
		{"sleep hour zero", func(s *Settings) { s.SleepHour = 0 }, true},
		{"sentinel coordinates", func(s *Settings) {
			s.Latitude, s.Longitude = CoordinateSentinel, CoordinateSentinel
		}, false},
		{"latitude out of range", func(s *Settings) { s.Latitude = 95 }, true},
		{"longitude out of range", func(s *Settings) { s.Longitude = 181 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			tc.mutate(&s)
			err := s.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestHasCoordinates(t *testing.T) {
	s := Default()
	if !s.HasCoordinates() {
		t.Fatal("factory coordinates should count as resolved")
	}
	s.Latitude = CoordinateSentinel
	if s.HasCoordinates() {
		t.Fatal("sentinel latitude should not count as resolved")
	}
	s = Default()
	s.Longitude = CoordinateSentinel
	if s.HasCoordinates() {
		t.Fatal("sentinel longitude should not count as resolved")
	}
}
