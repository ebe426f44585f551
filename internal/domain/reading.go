package domain

import "time"

// MaxReadingAge is how old a sensor observation may be before it can no
// longer be trusted to drive the thermostat.
const MaxReadingAge = 15 * time.Minute

// SensorReading is a point-in-time average temperature from the ambient
// sensor. Readings are produced fresh each cycle and never cached.
type SensorReading struct {
	Temperature float64
	ObservedAt  time.Time
}

// Stale reports whether the reading is too old relative to now.
func (r SensorReading) Stale(now time.Time) bool {
	return now.Sub(r.ObservedAt) > MaxReadingAge
}
