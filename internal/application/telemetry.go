package application

import "home-climate/internal/domain"

// TelemetrySink receives exactly one record per completed control cycle.
type TelemetrySink interface {
	Record(domain.ControlOutcome)
}

// MultiSink fans a record out to several sinks.
type MultiSink []TelemetrySink

func (m MultiSink) Record(o domain.ControlOutcome) {
	for _, s := range m {
		s.Record(o)
	}
}
