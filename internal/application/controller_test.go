package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"home-climate/internal/domain"
)

type mockSensor struct {
	reading domain.SensorReading
	err     error
	calls   int
}

func (m *mockSensor) GetTemperature(_ context.Context) (domain.SensorReading, error) {
	m.calls++
	return m.reading, m.err
}

type setCall struct {
	heat, cool  float64
	holdMinutes int
}

type mockThermostat struct {
	syncErr error
	setErr  error

	indoor  float64
	outdoor float64
	heat    float64
	cool    float64
	away    bool

	syncCalls int
	setCalls  []setCall
}

func (m *mockThermostat) Sync(_ context.Context) error {
	m.syncCalls++
	return m.syncErr
}

func (m *mockThermostat) IndoorTemp() float64   { return m.indoor }
func (m *mockThermostat) OutdoorTemp() float64  { return m.outdoor }
func (m *mockThermostat) HeatSetpoint() float64 { return m.heat }
func (m *mockThermostat) CoolSetpoint() float64 { return m.cool }
func (m *mockThermostat) AwayMode() bool        { return m.away }

func (m *mockThermostat) SetSetpoints(_ context.Context, heat, cool float64, holdMinutes int) error {
	m.setCalls = append(m.setCalls, setCall{heat: heat, cool: cool, holdMinutes: holdMinutes})
	return m.setErr
}

type mockSink struct {
	records []domain.ControlOutcome
}

func (m *mockSink) Record(o domain.ControlOutcome) {
	m.records = append(m.records, o)
}

type mockNotifier struct {
	messages []string
}

func (m *mockNotifier) Notify(_ context.Context, message string) error {
	m.messages = append(m.messages, message)
	return nil
}

func testWindow(t *testing.T, begin, end string) domain.TimeWindow {
	t.Helper()
	b, err := domain.ParseTimeOfDay(begin)
	require.NoError(t, err)
	e, err := domain.ParseTimeOfDay(end)
	require.NoError(t, err)
	return domain.NewTimeWindow(b, e)
}

func newTestController(sensor *mockSensor, thermostat *mockThermostat, sink *mockSink, notifier Notifier, settings Settings) *Controller {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewController(sensor, thermostat, sink, notifier, settings, logger)
}

func TestRunCycle_AppliesSetpoints(t *testing.T) {
	sensor := &mockSensor{reading: domain.SensorReading{Temperature: 23.5, ObservedAt: time.Now()}}
	thermostat := &mockThermostat{indoor: 21.0, outdoor: 10.0, heat: 20.0, cool: 26.0}
	sink := &mockSink{}

	c := newTestController(sensor, thermostat, sink, &NoopNotifier{}, Settings{
		TargetHeat: 23.5,
		TargetCool: 26.0,
	})

	interval := c.RunCycle(context.Background())
	assert.Equal(t, NormalInterval, interval)

	require.Len(t, thermostat.setCalls, 1)
	assert.InDelta(t, 21.0, thermostat.setCalls[0].heat, 0.01)
	assert.InDelta(t, 23.5, thermostat.setCalls[0].cool, 0.01)
	assert.Equal(t, 60, thermostat.setCalls[0].holdMinutes)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.True(t, rec.Executed)
	assert.InDelta(t, 23.5, rec.AmbientTemp, 0.01)
	assert.InDelta(t, 21.0, rec.IndoorTemp, 0.01)
	assert.InDelta(t, 10.0, rec.OutdoorTemp, 0.01)
	assert.InDelta(t, 20.0, rec.OldHeat, 0.01)
	assert.InDelta(t, 26.0, rec.OldCool, 0.01)
	assert.InDelta(t, 21.0, rec.NewHeat, 0.01)
	assert.InDelta(t, 23.5, rec.NewCool, 0.01)
}

func TestRunCycle_AwayModeSuppressesWrite(t *testing.T) {
	sensor := &mockSensor{reading: domain.SensorReading{Temperature: 23.0, ObservedAt: time.Now()}}
	thermostat := &mockThermostat{indoor: 21.0, away: true}
	sink := &mockSink{}

	c := newTestController(sensor, thermostat, sink, &NoopNotifier{}, Settings{
		TargetHeat: 21.0,
		TargetCool: 25.0,
	})

	interval := c.RunCycle(context.Background())
	assert.Equal(t, NormalInterval, interval)
	assert.Empty(t, thermostat.setCalls)

	require.Len(t, sink.records, 1)
	assert.False(t, sink.records[0].Executed)
}

func TestRunCycle_DryRunSuppressesWrite(t *testing.T) {
	sensor := &mockSensor{reading: domain.SensorReading{Temperature: 23.0, ObservedAt: time.Now()}}
	thermostat := &mockThermostat{indoor: 21.0}
	sink := &mockSink{}

	c := newTestController(sensor, thermostat, sink, &NoopNotifier{}, Settings{
		TargetHeat: 21.0,
		TargetCool: 25.0,
		DryRun:     true,
	})

	interval := c.RunCycle(context.Background())
	assert.Equal(t, NormalInterval, interval)
	assert.Empty(t, thermostat.setCalls)

	require.Len(t, sink.records, 1)
	assert.False(t, sink.records[0].Executed)
}

func TestRunCycle_SyncFailure(t *testing.T) {
	sensor := &mockSensor{}
	thermostat := &mockThermostat{syncErr: errors.New("connection refused")}
	sink := &mockSink{}
	notifier := &mockNotifier{}

	c := newTestController(sensor, thermostat, sink, notifier, Settings{})

	interval := c.RunCycle(context.Background())
	assert.Equal(t, RetryInterval, interval)
	assert.Zero(t, sensor.calls, "sensor must not be read after a failed sync")
	assert.Empty(t, sink.records, "no telemetry without readings")
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "connection refused")
}

func TestRunCycle_SensorFailure(t *testing.T) {
	sensor := &mockSensor{err: errors.New("stale data")}
	thermostat := &mockThermostat{}
	sink := &mockSink{}
	notifier := &mockNotifier{}

	c := newTestController(sensor, thermostat, sink, notifier, Settings{})

	interval := c.RunCycle(context.Background())
	assert.Equal(t, RetryInterval, interval)
	assert.Empty(t, thermostat.setCalls)
	assert.Empty(t, sink.records)
	assert.Len(t, notifier.messages, 1)
}

func TestRunCycle_SetSetpointsFailure(t *testing.T) {
	sensor := &mockSensor{reading: domain.SensorReading{Temperature: 23.0, ObservedAt: time.Now()}}
	thermostat := &mockThermostat{indoor: 21.0, setErr: errors.New("write rejected")}
	sink := &mockSink{}
	notifier := &mockNotifier{}

	c := newTestController(sensor, thermostat, sink, notifier, Settings{
		TargetHeat: 21.0,
		TargetCool: 25.0,
	})

	interval := c.RunCycle(context.Background())
	assert.Equal(t, RetryInterval, interval)
	// Readings existed by the time the write failed, so the record stands.
	assert.Len(t, sink.records, 1)
	assert.Len(t, notifier.messages, 1)
}

func TestRun_OneshotInsideWindow(t *testing.T) {
	sensor := &mockSensor{reading: domain.SensorReading{Temperature: 23.0, ObservedAt: time.Now()}}
	thermostat := &mockThermostat{indoor: 21.0}
	sink := &mockSink{}

	c := newTestController(sensor, thermostat, sink, &NoopNotifier{}, Settings{
		Window:     testWindow(t, "08:00", "13:00"),
		TargetHeat: 21.0,
		TargetCool: 25.0,
		Oneshot:    true,
	})
	c.now = func() time.Time {
		return time.Date(2023, 6, 1, 12, 0, 0, 0, time.Local)
	}

	err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, thermostat.syncCalls)
	assert.Len(t, sink.records, 1)
}

func TestRun_OneshotOutsideWindow(t *testing.T) {
	sensor := &mockSensor{}
	thermostat := &mockThermostat{}
	sink := &mockSink{}

	c := newTestController(sensor, thermostat, sink, &NoopNotifier{}, Settings{
		Window:  testWindow(t, "08:00", "13:00"),
		Oneshot: true,
	})
	c.now = func() time.Time {
		return time.Date(2023, 6, 1, 15, 0, 0, 0, time.Local)
	}

	err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, thermostat.syncCalls)
	assert.Empty(t, sink.records)
}

func TestRun_CancelledWhileSleeping(t *testing.T) {
	sensor := &mockSensor{}
	thermostat := &mockThermostat{}

	c := newTestController(sensor, thermostat, &mockSink{}, &NoopNotifier{}, Settings{
		Window: testWindow(t, "08:00", "13:00"),
	})
	c.now = func() time.Time {
		return time.Date(2023, 6, 1, 15, 0, 0, 0, time.Local)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop on cancellation")
	}
}
