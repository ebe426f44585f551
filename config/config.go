package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"home-climate/internal/domain"
)

type Config struct {
	Awair     AwairConfig     `yaml:"awair"`
	Daikin    DaikinConfig    `yaml:"daikin"`
	Control   ControlConfig   `yaml:"control"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	Log       LogConfig       `yaml:"log"`
}

type AwairConfig struct {
	DeviceType string `yaml:"device_type"`
	DeviceID   int64  `yaml:"device_id"`
	Token      string `yaml:"token"`
}

type DaikinConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type ControlConfig struct {
	TargetTempHeat float64 `yaml:"target_temp_heat"`
	TargetTempCool float64 `yaml:"target_temp_cool"`
	ControlStart   string  `yaml:"control_start"`
	ControlEnd     string  `yaml:"control_end"`
}

type TelemetryConfig struct {
	MQTT MQTTConfig `yaml:"mqtt"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Error is a configuration value rejected at load time.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Awair.DeviceType == "" {
		c.Awair.DeviceType = "awair"
	}
	if c.Telemetry.MQTT.Topic == "" {
		c.Telemetry.MQTT.Topic = "home-climate/telemetry"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Awair.Token == "" {
		return &Error{Field: "awair.token", Reason: "required"}
	}
	if c.Daikin.Email == "" {
		return &Error{Field: "daikin.email", Reason: "required"}
	}
	if c.Daikin.Password == "" {
		return &Error{Field: "daikin.password", Reason: "required"}
	}
	if c.Control.TargetTempHeat > c.Control.TargetTempCool {
		return &Error{
			Field:  "control.target_temp_heat",
			Reason: fmt.Sprintf("must not exceed target_temp_cool (%g > %g)", c.Control.TargetTempHeat, c.Control.TargetTempCool),
		}
	}
	if _, err := domain.ParseTimeOfDay(c.Control.ControlStart); err != nil {
		return &Error{Field: "control.control_start", Reason: err.Error()}
	}
	if _, err := domain.ParseTimeOfDay(c.Control.ControlEnd); err != nil {
		return &Error{Field: "control.control_end", Reason: err.Error()}
	}
	if c.Telemetry.MQTT.Enabled && c.Telemetry.MQTT.Broker == "" {
		return &Error{Field: "telemetry.mqtt.broker", Reason: "required when mqtt telemetry is enabled"}
	}
	return nil
}

// Window builds the control window from the validated start and end strings.
func (c *Config) Window() domain.TimeWindow {
	begin, _ := domain.ParseTimeOfDay(c.Control.ControlStart)
	end, _ := domain.ParseTimeOfDay(c.Control.ControlEnd)
	return domain.NewTimeWindow(begin, end)
}
