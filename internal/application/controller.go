package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"home-climate/internal/domain"
)

const (
	// NormalInterval is the cadence between cycles while control is active.
	// It doubles as the hold duration tagged onto setpoint writes, so
	// consecutive cycles keep the schedule override alive.
	NormalInterval = 60 * time.Minute

	// RetryInterval reschedules a failed cycle soon, without busy-looping.
	RetryInterval = 5 * time.Minute

	// boundarySkew pads wakeups past a window boundary so clock skew cannot
	// land one exactly on it.
	boundarySkew = 15 * time.Second

	// idleInterval stands in for "sleep until the transition forces a wake"
	// outside the window; the min() against the transition bounds it.
	idleInterval = 24 * time.Hour
)

// Settings are the control parameters fixed at startup.
type Settings struct {
	Window     domain.TimeWindow
	TargetHeat float64
	TargetCool float64
	DryRun     bool
	Oneshot    bool
}

// Controller drives the adjustment loop: inside the configured window it runs
// one control cycle per interval, outside it sleeps until the window opens.
type Controller struct {
	sensor     SensorClient
	thermostat ThermostatClient
	telemetry  TelemetrySink
	notifier   Notifier
	settings   Settings
	logger     *slog.Logger

	now func() time.Time
}

func NewController(
	sensor SensorClient,
	thermostat ThermostatClient,
	telemetry TelemetrySink,
	notifier Notifier,
	settings Settings,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		sensor:     sensor,
		thermostat: thermostat,
		telemetry:  telemetry,
		notifier:   notifier,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
	}
}

// Run loops until ctx is cancelled, or returns after one iteration in
// oneshot mode. Sleep timing is recomputed from a fresh wall-clock read every
// iteration, so the loop cannot accumulate drift or sleep past a window
// transition by more than the skew pad.
func (c *Controller) Run(ctx context.Context) error {
	for {
		t := domain.TimeOfDayOf(c.now())
		next := c.settings.Window.NextTransition(t) + boundarySkew

		interval := idleInterval
		if c.settings.Window.Contains(t) {
			interval = c.RunCycle(ctx)
		} else {
			c.logger.Info("outside control window", "now", t.String())
		}

		if c.settings.Oneshot {
			return nil
		}

		sleep := interval
		if next < sleep {
			sleep = next
		}
		c.logger.Info("sleeping", "duration", sleep.String(), "until_transition", next.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// RunCycle performs one adjustment attempt and returns the delay before the
// next one. Errors are recovered here: the cycle aborts early, the failure is
// logged and notified, and the short retry interval is returned.
func (c *Controller) RunCycle(ctx context.Context) time.Duration {
	if err := c.thermostat.Sync(ctx); err != nil {
		c.fail(ctx, "thermostat sync failed", err)
		return RetryInterval
	}

	reading, err := c.sensor.GetTemperature(ctx)
	if err != nil {
		c.fail(ctx, "sensor read failed", err)
		return RetryInterval
	}

	oldHeat := c.thermostat.HeatSetpoint()
	oldCool := c.thermostat.CoolSetpoint()
	newHeat, newCool := domain.CalcNewSetpoints(
		reading.Temperature,
		c.thermostat.IndoorTemp(),
		c.settings.TargetHeat,
		c.settings.TargetCool,
	)

	// Away mode and dry-run suppress the write but still report the cycle.
	execute := !c.settings.DryRun && !c.thermostat.AwayMode()

	c.telemetry.Record(domain.ControlOutcome{
		TargetHeat:  c.settings.TargetHeat,
		TargetCool:  c.settings.TargetCool,
		AmbientTemp: reading.Temperature,
		IndoorTemp:  c.thermostat.IndoorTemp(),
		OutdoorTemp: c.thermostat.OutdoorTemp(),
		OldHeat:     oldHeat,
		OldCool:     oldCool,
		NewHeat:     newHeat,
		NewCool:     newCool,
		Executed:    execute,
	})

	if !execute {
		c.logger.Info("control suppressed",
			"away", c.thermostat.AwayMode(),
			"dry_run", c.settings.DryRun,
		)
		return NormalInterval
	}

	if err := c.thermostat.SetSetpoints(ctx, newHeat, newCool, int(NormalInterval.Minutes())); err != nil {
		c.fail(ctx, "setting setpoints failed", err)
		return RetryInterval
	}

	return NormalInterval
}

func (c *Controller) fail(ctx context.Context, msg string, err error) {
	c.logger.Error(msg, "error", err)
	if nerr := c.notifier.Notify(ctx, fmt.Sprintf("%s: %v", msg, err)); nerr != nil {
		c.logger.Error("notifying failure", "error", nerr)
	}
}
