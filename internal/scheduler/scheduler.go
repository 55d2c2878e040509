// Package scheduler drives wake cycles on refresh boundaries, the daemon's
// stand-in for the deep-sleep timer on battery hardware.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/inkwx/epaper-weather/internal/config"
	"github.com/inkwx/epaper-weather/internal/power"
)

// Cycler runs one wake cycle and reports its outcome.
type Cycler interface {
	RunCycle(ctx context.Context) power.CycleResult
}

// SettingsSource exposes the refresh interval the runner aligns to.
type SettingsSource interface {
	Current() (config.Settings, bool)
}

// Runner periodically runs wake cycles, aligned to multiples of the refresh
// interval past the hour so on-screen times land on round values.
type Runner struct {
	scheduler *gocron.Scheduler
	agent     Cycler
	settings  SettingsSource

	// interval armed into the scheduler; jobs re-arm when it changes.
	interval int

	cycleTimeout time.Duration
}

// New creates a Runner for the agent.
func New(agent Cycler, settings SettingsSource) *Runner {
	return &Runner{
		scheduler:    gocron.NewScheduler(time.UTC),
		agent:        agent,
		settings:     settings,
		cycleTimeout: 2 * time.Minute,
	}
}

// Start arms the boundary-aligned job and starts the underlying scheduler.
func (r *Runner) Start() error {
	if err := r.arm(r.currentInterval()); err != nil {
		return err
	}
	r.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Runner) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

func (r *Runner) currentInterval() int {
	settings, _ := r.settings.Current()
	minutes := settings.RefreshMinutes
	if minutes < 1 {
		minutes = 60
	}
	return minutes
}

func (r *Runner) arm(minutes int) error {
	r.interval = minutes
	start := nextBoundary(time.Now().UTC(), minutes)
	_, err := r.scheduler.Every(minutes).Minutes().StartAt(start).Do(r.runJob)
	if err != nil {
		return err
	}
	log.Printf("INFO: scheduler: cycles every %dm starting %s", minutes, start.Format(time.RFC3339))
	return nil
}

func (r *Runner) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cycleTimeout)
	defer cancel()

	result := r.agent.RunCycle(ctx)
	if result.Err != nil {
		log.Printf("ERROR: scheduler: cycle finished in %s: %v", result.Outcome, result.Err)
	}

	// Follow interval changes made through the setup API.
	if minutes := r.currentInterval(); minutes != r.interval {
		log.Printf("INFO: scheduler: refresh interval changed %dm -> %dm, rescheduling", r.interval, minutes)
		r.scheduler.Clear()
		if err := r.arm(minutes); err != nil {
			log.Printf("ERROR: scheduler: rescheduling failed: %v", err)
		}
	}
}

// nextBoundary returns the next wall-clock multiple of the refresh interval
// past the hour, matching the wake times a deep-sleeping device computes.
func nextBoundary(now time.Time, refreshMinutes int) time.Time {
	if refreshMinutes < 1 {
		refreshMinutes = 1
	}
	over := now.Minute() % refreshMinutes
	return now.Truncate(time.Minute).Add(time.Duration(refreshMinutes-over) * time.Minute)
}
