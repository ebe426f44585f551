package domain

// CalcNewSetpoints shifts both target setpoints by the offset between the
// external sensor and the thermostat's own reading, so the external sensor
// tracks the target rather than the thermostat's local one.
func CalcNewSetpoints(ambientTemp, deviceTemp, targetHeat, targetCool float64) (newHeat, newCool float64) {
	diff := ambientTemp - deviceTemp
	return targetHeat - diff, targetCool - diff
}
