package domain

// ControlOutcome records the inputs and outputs of one control cycle.
// Write-only telemetry; one record per completed cycle.
type ControlOutcome struct {
	TargetHeat  float64 `json:"target_heat"`
	TargetCool  float64 `json:"target_cool"`
	AmbientTemp float64 `json:"ambient_temp"`
	IndoorTemp  float64 `json:"indoor_temp"`
	OutdoorTemp float64 `json:"outdoor_temp"`
	OldHeat     float64 `json:"old_heat_setpoint"`
	OldCool     float64 `json:"old_cool_setpoint"`
	NewHeat     float64 `json:"new_heat_setpoint"`
	NewCool     float64 `json:"new_cool_setpoint"`
	Executed    bool    `json:"execute_control"`
}
