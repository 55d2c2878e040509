package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/inkwx/epaper-weather/internal/config"
)

func testSettings() config.Settings {
	s := config.Default()
	s.APIKey = "abc123"
	return s
}

func TestOpenMissingFile(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	settings, configured := st.Current()
	if configured {
		t.Fatal("expected unconfigured store")
	}
	if settings.Location != "Chicago,IL,US" {
		t.Errorf("location = %q, want factory default", settings.Location)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	in := testSettings()
	in.Location = "Berlin,DE"
	in.Latitude = config.CoordinateSentinel
	in.Longitude = config.CoordinateSentinel
	if err := st.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	st2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	settings, configured := st2.Current()
	if !configured {
		t.Fatal("expected configured store after save")
	}
	if settings.Location != "Berlin,DE" {
		t.Errorf("location = %q, want Berlin,DE", settings.Location)
	}
	if settings.HasCoordinates() {
		t.Error("sentinel coordinates should survive the round trip")
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	in := testSettings()
	in.Units = "kelvin"
	if err := st.Save(in); err == nil {
		t.Fatal("expected validation error")
	}
	if _, configured := st.Current(); configured {
		t.Fatal("failed save must not configure the store")
	}
}

func TestOpenWrongMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	raw, err := json.Marshal(filePayload{Magic: 0xBADC0DE, Settings: testSettings()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, configured := st.Current(); configured {
		t.Fatal("wrong magic must not configure the store")
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	settings, configured := st.Current()
	if configured {
		t.Fatal("corrupt file must not configure the store")
	}
	if settings.Location != "Chicago,IL,US" {
		t.Errorf("location = %q, want factory default", settings.Location)
	}
}

func TestUpdateCoordinates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	in := testSettings()
	in.Latitude = config.CoordinateSentinel
	in.Longitude = config.CoordinateSentinel
	if err := st.Save(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := st.UpdateCoordinates(41.88325111, -87.63241999); err != nil {
		t.Fatalf("update coordinates: %v", err)
	}
	settings, _ := st.Current()
	if settings.Latitude != 41.883251 {
		t.Errorf("latitude = %v, want 41.883251", settings.Latitude)
	}
	if settings.Longitude != -87.63242 {
		t.Errorf("longitude = %v, want -87.63242", settings.Longitude)
	}

	st2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	settings, configured := st2.Current()
	if !configured || !settings.HasCoordinates() {
		t.Fatal("resolved coordinates should persist across reopen")
	}
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Save(testSettings()); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := st.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, configured := st.Current(); configured {
		t.Fatal("expected unconfigured store after reset")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("settings file should be gone, stat err = %v", err)
	}
}
