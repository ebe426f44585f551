package application

import "context"

// ThermostatClient is the capability surface of the thermostat session. Sync
// and SetSetpoints re-authenticate once on an expired credential before
// failing; the getters read the snapshot cached by the last Sync.
type ThermostatClient interface {
	Sync(ctx context.Context) error
	IndoorTemp() float64
	OutdoorTemp() float64
	HeatSetpoint() float64
	CoolSetpoint() float64
	AwayMode() bool
	SetSetpoints(ctx context.Context, heat, cool float64, holdMinutes int) error
}
