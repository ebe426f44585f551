package telemetry

import (
	"log/slog"

	"home-climate/internal/domain"
)

// LogSink writes one self-contained slog record per control cycle.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(o domain.ControlOutcome) {
	s.logger.Info("control cycle",
		"target_heat", o.TargetHeat,
		"target_cool", o.TargetCool,
		"ambient_temp", o.AmbientTemp,
		"indoor_temp", o.IndoorTemp,
		"outdoor_temp", o.OutdoorTemp,
		"old_heat_setpoint", o.OldHeat,
		"old_cool_setpoint", o.OldCool,
		"new_heat_setpoint", o.NewHeat,
		"new_cool_setpoint", o.NewCool,
		"execute_control", o.Executed,
	)
}
