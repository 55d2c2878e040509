package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/inkwx/epaper-weather/internal/config"
)

// settingsMagic marks a settings file written by this program ("WEAT"). A
// file without it is treated as garbage, not as settings.
const settingsMagic = 0x57454154

// filePayload is the on-disk representation.
type filePayload struct {
	Magic    uint32          `json:"magic"`
	Settings config.Settings `json:"settings"`
}

// FileStore persists device settings as a JSON file. It is concurrency-safe;
// the setup API writes while the agent reads.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	settings   config.Settings
	configured bool
}

// Open loads settings from path. A missing, corrupt, or foreign file yields
// factory defaults with the store reporting unconfigured; only a real I/O
// failure is an error.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path, settings: config.Default()}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("INFO: no settings at %s, starting unconfigured", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var payload filePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("ERROR: settings file %s is corrupt, using defaults: %v", path, err)
		return s, nil
	}
	if payload.Magic != settingsMagic {
		log.Printf("ERROR: settings file %s has wrong magic %#x, using defaults", path, payload.Magic)
		return s, nil
	}
	if err := payload.Settings.Validate(); err != nil {
		log.Printf("ERROR: stored settings invalid, using defaults: %v", err)
		return s, nil
	}

	s.settings = payload.Settings
	s.configured = true
	return s, nil
}

// Current returns the active settings and whether the device has been
// configured at least once.
func (s *FileStore) Current() (config.Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.configured
}

// Save validates and persists new settings, marking the store configured.
func (s *FileStore) Save(settings config.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(settings); err != nil {
		return err
	}
	s.settings = settings
	s.configured = true
	return nil
}

// UpdateCoordinates persists geocoder results for the current location
// string, rounded to six decimal places.
func (s *FileStore) UpdateCoordinates(lat, lon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	next.Latitude = round6(lat)
	next.Longitude = round6(lon)
	if err := s.write(next); err != nil {
		return err
	}
	s.settings = next
	return nil
}

// Reset removes the settings file and returns to factory defaults.
func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove settings: %w", err)
	}
	s.settings = config.Default()
	s.configured = false
	return nil
}

// write replaces the settings file atomically. Callers hold the lock.
func (s *FileStore) write(settings config.Settings) error {
	payload := filePayload{Magic: settingsMagic, Settings: settings}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
