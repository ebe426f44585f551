package telemetry_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"home-climate/internal/domain"
	"home-climate/internal/infra/telemetry"
)

func TestLogSink_Record(t *testing.T) {
	var buf bytes.Buffer
	sink := telemetry.NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	sink.Record(domain.ControlOutcome{
		TargetHeat:  21.0,
		TargetCool:  25.0,
		AmbientTemp: 23.5,
		IndoorTemp:  21.0,
		OutdoorTemp: 10.0,
		OldHeat:     20.0,
		OldCool:     26.0,
		NewHeat:     18.5,
		NewCool:     22.5,
		Executed:    true,
	})

	line := buf.String()
	assert.Contains(t, line, "control cycle")
	assert.Contains(t, line, "ambient_temp=23.5")
	assert.Contains(t, line, "new_heat_setpoint=18.5")
	assert.Contains(t, line, "execute_control=true")
}
