package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkwx/epaper-weather/internal/clock"
	"github.com/inkwx/epaper-weather/internal/config"
	"github.com/inkwx/epaper-weather/internal/display"
	"github.com/inkwx/epaper-weather/internal/power"
	"github.com/inkwx/epaper-weather/internal/provision"
	"github.com/inkwx/epaper-weather/internal/render"
	"github.com/inkwx/epaper-weather/internal/scheduler"
	"github.com/inkwx/epaper-weather/internal/store"
	"github.com/inkwx/epaper-weather/internal/weather/owm"
)

func main() {
	once := flag.Bool("once", false, "run a single wake cycle and exit")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Persisted device settings, written through the setup API.
	settingsStore, err := store.Open(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("failed to open settings store: %v", err)
	}

	clk := clock.New()

	fonts, err := render.LoadFonts()
	if err != nil {
		log.Fatalf("failed to load fonts: %v", err)
	}
	composer := render.NewComposer(fonts, clk)

	dev, err := newDisplay(cfg)
	if err != nil {
		log.Fatalf("failed to open display: %v", err)
	}
	defer dev.Close()

	sensor, err := newBatterySensor(cfg)
	if err != nil {
		log.Fatalf("failed to open battery sensor: %v", err)
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{Timeout: 10 * time.Second}

	source := owm.NewClient(owm.ClientConfig{
		HTTPClient: httpClient,
		KeyFunc: func() string {
			settings, _ := settingsStore.Current()
			return settings.APIKey
		},
		BaseURL: cfg.OWMBaseURL,
		GeoURL:  cfg.OWMGeoURL,
		Clock:   clk,
	})

	agent := power.NewAgent(power.AgentConfig{
		Store:                settingsStore,
		Source:               source,
		Net:                  power.NewTCPCheck(cfg.ConnectivityHost, 5*time.Second),
		Battery:              sensor,
		Renderer:             composer,
		Display:              dev,
		Clock:                clk,
		SetupURL:             setupURL(cfg),
		DriftSeconds:         cfg.DriftSeconds,
		LowBatteryMillivolts: cfg.LowBatteryMillivolts,
	})

	if *once {
		res := agent.RunCycle(context.Background())
		if res.Err != nil {
			log.Fatalf("cycle finished in %s: %v", res.Outcome, res.Err)
		}
		log.Printf("INFO: cycle finished in %s, next wake in %ds", res.Outcome, res.SleepSeconds)
		return
	}

	// First refresh immediately; the runner takes over at the next boundary.
	agent.RunCycle(context.Background())

	runner := scheduler.New(agent, settingsStore)
	if err := runner.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer runner.Stop()

	// Setup and status API.
	app := provision.New(provision.Deps{
		Store:    settingsStore,
		Status:   agent,
		Geocoder: source,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func newDisplay(cfg *config.AppConfig) (display.Device, error) {
	if cfg.Display == "epd" {
		return display.NewEPD()
	}
	return display.NewPNGSink(cfg.DisplayPNGPath), nil
}

func newBatterySensor(cfg *config.AppConfig) (power.BatterySensor, error) {
	if cfg.BatterySensor == "ads1115" {
		return power.NewADS1115Sensor(cfg.BatteryScale)
	}
	return power.NoSensor{}, nil
}

// setupURL derives the address shown on the provisioning screen.
func setupURL(cfg *config.AppConfig) string {
	if cfg.SetupURL != "" {
		return cfg.SetupURL
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s/", host, cfg.Port)
}
