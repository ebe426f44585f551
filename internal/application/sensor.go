package application

import (
	"context"

	"home-climate/internal/domain"
)

// SensorClient reads the ambient temperature from the external air sensor.
// Implementations must reject readings older than domain.MaxReadingAge.
type SensorClient interface {
	GetTemperature(ctx context.Context) (domain.SensorReading, error)
}
