package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"home-climate/config"
	"home-climate/internal/application"
	"home-climate/internal/infra/awair"
	"home-climate/internal/infra/daikin"
	"home-climate/internal/infra/pushover"
	"home-climate/internal/infra/telemetry"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	configTest := flag.Bool("config-test", false, "load and validate the config, then exit")
	dryRun := flag.Bool("dry-run", false, "compute setpoints but never write them")
	oneshot := flag.Bool("oneshot", false, "run a single iteration and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	if *configTest {
		return
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	sensor := awair.NewClient(cfg.Awair.DeviceType, cfg.Awair.DeviceID, cfg.Awair.Token)

	thermostat := daikin.NewClient(cfg.Daikin.Email, cfg.Daikin.Password, logger)
	if err := thermostat.Login(ctx); err != nil {
		logger.Error("connecting to thermostat", "error", err)
		os.Exit(1)
	}

	sinks := application.MultiSink{telemetry.NewLogSink(logger)}
	if cfg.Telemetry.MQTT.Enabled {
		mqttSink, err := telemetry.NewMQTTSink(
			cfg.Telemetry.MQTT.Broker,
			cfg.Telemetry.MQTT.Topic,
			cfg.Telemetry.MQTT.ClientID,
			logger,
		)
		if err != nil {
			logger.Error("connecting telemetry sink", "error", err)
			os.Exit(1)
		}
		defer mqttSink.Close()
		sinks = append(sinks, mqttSink)
	}

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	controller := application.NewController(sensor, thermostat, sinks, notifier, application.Settings{
		Window:     cfg.Window(),
		TargetHeat: cfg.Control.TargetTempHeat,
		TargetCool: cfg.Control.TargetTempCool,
		DryRun:     *dryRun,
		Oneshot:    *oneshot,
	}, logger)

	logger.Info("starting climate control agent",
		"control_start", cfg.Control.ControlStart,
		"control_end", cfg.Control.ControlEnd,
		"dry_run", *dryRun,
	)

	if err := controller.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("controller error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
