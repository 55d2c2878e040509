// Package power drives the wake/fetch/render/sleep cycle of the display
// agent and owns the battery and connectivity concerns around it.
package power

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/inkwx/epaper-weather/internal/clock"
	"github.com/inkwx/epaper-weather/internal/config"
	"github.com/inkwx/epaper-weather/internal/display"
	"github.com/inkwx/epaper-weather/internal/weather"
	"github.com/inkwx/epaper-weather/internal/weather/owm"
)

// State identifies the phase a wake cycle finished in.
type State string

const (
	StateBoot         State = "boot"
	StateProvisioning State = "provisioning"
	StateLowBattery   State = "low-battery"
	StateConnecting   State = "connecting"
	StateFetching     State = "fetching"
	StateRendering    State = "rendering"
	StateErrorDisplay State = "error-display"
	StateSleeping     State = "sleeping"
)

// fetchAttempts bounds forecast fetches per cycle. The HTTP layer retries
// transport errors internally, so two attempts here already cover a breaker
// half-open probe plus one regular call.
const fetchAttempts = 2

// SettingsStore provides the persisted device settings.
type SettingsStore interface {
	// Current returns the active settings and whether the device has been
	// configured at least once.
	Current() (config.Settings, bool)
	// UpdateCoordinates persists resolved coordinates for the current
	// location string.
	UpdateCoordinates(lat, lon float64) error
}

// ForecastSource fetches weather data and resolves location strings.
type ForecastSource interface {
	Forecast(ctx context.Context, lat, lon float64, units weather.Units, lang string) (*weather.ForecastData, error)
	Geocode(ctx context.Context, query string) (float64, float64, error)
}

// TimeSource is the agent's view of the wall clock. Synced reports whether
// the clock has ever been set from an authoritative source.
type TimeSource interface {
	Now() time.Time
	Synced() bool
	LocalFields(ts int64) clock.Fields
}

// FrameRenderer composes the frames the agent pushes to the display.
type FrameRenderer interface {
	WeatherFrame(data *weather.ForecastData, units weather.Units, location string, refreshedAt int64, rssi, batteryMV int) *image.Gray
	LowBatteryFrame() *image.Gray
	ConnectionErrorFrame() *image.Gray
	SetupFrame(configURL string) *image.Gray
	InvalidLocationFrame() *image.Gray
	InvalidKeyFrame() *image.Gray
	DataErrorFrame() *image.Gray
}

// status tracks the most recent cycle. Fields are atomics so the setup API
// can read them while a cycle runs.
type status struct {
	state        atomic.String
	cycleID      atomic.String
	lastRefresh  atomic.Int64
	lastError    atomic.String
	batteryMV    atomic.Int64
	rssi         atomic.Int64
	sleepSeconds atomic.Int64

	hasWeather atomic.Bool
	temp       atomic.Float64
	icon       atomic.String
	windSpeed  atomic.Float64
	windDeg    atomic.Float64
}

// Snapshot is a point-in-time copy of the agent status for the setup API.
type Snapshot struct {
	State         string  `json:"state"`
	CycleID       string  `json:"cycle_id,omitempty"`
	Configured    bool    `json:"configured"`
	ClockSynced   bool    `json:"clock_synced"`
	LastRefresh   int64   `json:"last_refresh,omitempty"`
	LastError     string  `json:"last_error,omitempty"`
	SleepSeconds  int     `json:"sleep_seconds"`
	BatteryMV     int     `json:"battery_millivolts"`
	BatteryPct    int     `json:"battery_percent"`
	Charging      bool    `json:"charging"`
	RSSI          int     `json:"rssi_db"`
	Temperature   float64 `json:"temperature,omitempty"`
	Icon          string  `json:"icon,omitempty"`
	WindSpeed     float64 `json:"wind_speed,omitempty"`
	WindDirection string  `json:"wind_direction,omitempty"`
}

// CycleResult summarizes a finished wake cycle.
type CycleResult struct {
	Outcome      State
	SleepSeconds int
	Err          error
}

// AgentConfig carries the collaborators and tunables for an Agent.
type AgentConfig struct {
	Store    SettingsStore
	Source   ForecastSource
	Net      Connectivity
	Battery  BatterySensor
	Renderer FrameRenderer
	Display  display.Device
	Clock    TimeSource

	// SetupURL is shown on the provisioning screen.
	SetupURL string
	// DriftSeconds pads every computed sleep, see SleepSeconds.
	DriftSeconds int
	// LowBatteryMillivolts is the threshold below which the agent stops
	// refreshing. 0 applies the default.
	LowBatteryMillivolts int
}

// Agent owns one display and runs its power cycle. RunCycle is not safe for
// concurrent use; the scheduler serializes cycles.
type Agent struct {
	store    SettingsStore
	source   ForecastSource
	net      Connectivity
	battery  BatterySensor
	renderer FrameRenderer
	display  display.Device
	clk      TimeSource

	setupURL     string
	driftSeconds int
	lowBatteryMV int

	status status

	// lowBatteryLatch suppresses repeated low battery refreshes. Each full
	// e-paper refresh costs real charge, so the screen is drawn once and
	// the agent then idles until the battery recovers.
	lowBatteryLatch bool
	// provisioningShown works the same way for the setup screen.
	provisioningShown bool
}

// NewAgent wires an agent from its collaborators.
func NewAgent(cfg AgentConfig) *Agent {
	a := &Agent{
		store:        cfg.Store,
		source:       cfg.Source,
		net:          cfg.Net,
		battery:      cfg.Battery,
		renderer:     cfg.Renderer,
		display:      cfg.Display,
		clk:          cfg.Clock,
		setupURL:     cfg.SetupURL,
		driftSeconds: cfg.DriftSeconds,
		lowBatteryMV: cfg.LowBatteryMillivolts,
	}
	if a.lowBatteryMV <= 0 {
		a.lowBatteryMV = DefaultLowBatteryMillivolts
	}
	if a.battery == nil {
		a.battery = NoSensor{}
	}
	a.status.state.Store(string(StateBoot))
	return a
}

// RunCycle executes one wake cycle: read the battery, check the wake window,
// fetch, render, push, and compute how long to sleep. Every branch ends with
// an interval-aligned sleep duration so the device keeps its refresh rhythm
// even through errors.
func (a *Agent) RunCycle(ctx context.Context) CycleResult {
	cycleID := uuid.New().String()[:8]
	a.status.cycleID.Store(cycleID)
	log.Printf("INFO: [%s] wake cycle started", cycleID)

	settings, configured := a.store.Current()

	// Battery first. Refreshing the panel on a dying battery browns the
	// controller out mid-waveform and leaves a corrupted image.
	mv := a.readBattery(cycleID)
	if mv > 0 && mv <= a.lowBatteryMV {
		return a.lowBattery(cycleID, mv, settings)
	}
	if a.lowBatteryLatch {
		log.Printf("INFO: [%s] battery recovered at %dmV", cycleID, mv)
		a.lowBatteryLatch = false
	}

	if !configured {
		return a.provisioning(cycleID, settings)
	}
	a.provisioningShown = false

	// An unsynced clock reports a meaningless hour, so the wake window only
	// applies once a fetch has synced it.
	fields := a.clk.LocalFields(a.clk.Now().Unix())
	if a.clk.Synced() && !InWakeWindow(settings.WakeHour, settings.SleepHour, fields.Hour) {
		log.Printf("INFO: [%s] hour %d outside wake window %d-%d, staying dormant",
			cycleID, fields.Hour, settings.WakeHour, settings.SleepHour)
		return a.finish(settings, StateSleeping, nil)
	}

	a.setState(StateConnecting)
	if err := a.net.Check(ctx); err != nil {
		log.Printf("ERROR: [%s] connectivity check failed: %v", cycleID, err)
		a.showFrame(cycleID, a.renderer.ConnectionErrorFrame())
		return a.finish(settings, StateErrorDisplay, err)
	}
	rssi := a.net.RSSI()
	a.status.rssi.Store(int64(rssi))

	if !settings.HasCoordinates() {
		lat, lon, err := a.source.Geocode(ctx, settings.Location)
		if err != nil {
			log.Printf("ERROR: [%s] geocode %q failed: %v", cycleID, settings.Location, err)
			if errors.Is(err, owm.ErrCredentialsInvalid) {
				a.showFrame(cycleID, a.renderer.InvalidKeyFrame())
			} else {
				a.showFrame(cycleID, a.renderer.InvalidLocationFrame())
			}
			return a.finish(settings, StateErrorDisplay, err)
		}
		log.Printf("INFO: [%s] resolved %q to %.4f,%.4f", cycleID, settings.Location, lat, lon)
		if err := a.store.UpdateCoordinates(lat, lon); err != nil {
			// Carry on with the in-memory coordinates; the next cycle
			// geocodes again.
			log.Printf("ERROR: [%s] persisting coordinates failed: %v", cycleID, err)
		}
		settings.Latitude, settings.Longitude = lat, lon
	}

	a.setState(StateFetching)
	units := weather.Units(settings.Units)
	var (
		data     *weather.ForecastData
		fetchErr error
	)
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		data, fetchErr = a.source.Forecast(ctx, settings.Latitude, settings.Longitude, units, settings.Language)
		if fetchErr == nil {
			break
		}
		log.Printf("ERROR: [%s] forecast fetch attempt %d/%d failed: %v", cycleID, attempt, fetchAttempts, fetchErr)
		if errors.Is(fetchErr, owm.ErrCredentialsInvalid) || ctx.Err() != nil {
			break
		}
	}
	if fetchErr != nil {
		if errors.Is(fetchErr, owm.ErrCredentialsInvalid) {
			a.showFrame(cycleID, a.renderer.InvalidKeyFrame())
		} else {
			a.showFrame(cycleID, a.renderer.DataErrorFrame())
		}
		return a.finish(settings, StateErrorDisplay, fetchErr)
	}

	a.setState(StateRendering)
	refreshed := a.clk.Now().Unix()
	frame := a.renderer.WeatherFrame(data, units, settings.Location, refreshed, rssi, mv)
	if err := a.pushFrame(frame); err != nil {
		log.Printf("ERROR: [%s] frame push failed: %v", cycleID, err)
		return a.finish(settings, StateRendering, err)
	}
	a.status.lastRefresh.Store(refreshed)
	a.recordWeather(data)
	log.Printf("INFO: [%s] frame pushed", cycleID)
	return a.finish(settings, StateSleeping, nil)
}

// Snapshot returns the agent status for the setup API.
func (a *Agent) Snapshot() Snapshot {
	_, configured := a.store.Current()
	s := Snapshot{
		State:        a.status.state.Load(),
		CycleID:      a.status.cycleID.Load(),
		Configured:   configured,
		ClockSynced:  a.clk.Synced(),
		LastRefresh:  a.status.lastRefresh.Load(),
		LastError:    a.status.lastError.Load(),
		SleepSeconds: int(a.status.sleepSeconds.Load()),
		BatteryMV:    int(a.status.batteryMV.Load()),
		RSSI:         int(a.status.rssi.Load()),
	}
	if s.BatteryMV > 0 {
		s.BatteryPct = BatteryPercent(s.BatteryMV)
		s.Charging = Charging(s.BatteryMV)
	} else {
		s.BatteryPct = 100
	}
	if a.status.hasWeather.Load() {
		s.Temperature = a.status.temp.Load()
		s.Icon = a.status.icon.Load()
		s.WindSpeed = a.status.windSpeed.Load()
		s.WindDirection = weather.WindOrdinal(a.status.windDeg.Load())
	}
	return s
}

func (a *Agent) lowBattery(cycleID string, mv int, settings config.Settings) CycleResult {
	if !a.lowBatteryLatch {
		log.Printf("ERROR: [%s] battery critical at %dmV, showing low battery screen", cycleID, mv)
		a.showFrame(cycleID, a.renderer.LowBatteryFrame())
		a.lowBatteryLatch = true
	} else {
		log.Printf("INFO: [%s] battery still low at %dmV", cycleID, mv)
	}
	return a.finish(settings, StateLowBattery, nil)
}

func (a *Agent) provisioning(cycleID string, settings config.Settings) CycleResult {
	if !a.provisioningShown {
		log.Printf("INFO: [%s] device not configured, showing setup screen at %s", cycleID, a.setupURL)
		a.showFrame(cycleID, a.renderer.SetupFrame(a.setupURL))
		a.provisioningShown = true
	}
	return a.finish(settings, StateProvisioning, nil)
}

// finish records the outcome and computes the interval-aligned sleep.
func (a *Agent) finish(settings config.Settings, outcome State, err error) CycleResult {
	fields := a.clk.LocalFields(a.clk.Now().Unix())
	sleep := SleepSeconds(settings.RefreshMinutes, fields.Minute, fields.Second, a.driftSeconds)
	a.status.state.Store(string(outcome))
	a.status.sleepSeconds.Store(int64(sleep))
	if err != nil {
		a.status.lastError.Store(err.Error())
	} else {
		a.status.lastError.Store("")
	}
	return CycleResult{Outcome: outcome, SleepSeconds: sleep, Err: err}
}

func (a *Agent) readBattery(cycleID string) int {
	mv, err := a.battery.ReadMillivolts()
	if err != nil {
		log.Printf("ERROR: [%s] battery read failed: %v", cycleID, err)
		return 0
	}
	a.status.batteryMV.Store(int64(mv))
	return mv
}

// pushFrame writes the frame and immediately puts the panel back to sleep.
func (a *Agent) pushFrame(img *image.Gray) error {
	if err := a.display.Push(img); err != nil {
		return fmt.Errorf("push frame: %w", err)
	}
	if err := a.display.Sleep(); err != nil {
		return fmt.Errorf("display sleep: %w", err)
	}
	return nil
}

// showFrame pushes an error or setup screen. Push failures are logged but do
// not replace the causal error.
func (a *Agent) showFrame(cycleID string, img *image.Gray) {
	if err := a.pushFrame(img); err != nil {
		log.Printf("ERROR: [%s] %v", cycleID, err)
	}
}

func (a *Agent) recordWeather(data *weather.ForecastData) {
	a.status.temp.Store(data.Current.Temp)
	a.status.icon.Store(string(data.Current.Icon))
	a.status.windSpeed.Store(data.Current.WindSpeed)
	a.status.windDeg.Store(data.Current.WindDeg)
	a.status.hasWeather.Store(true)
}

func (a *Agent) setState(s State) {
	a.status.state.Store(string(s))
}
