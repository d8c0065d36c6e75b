package telemetry

import "context"

// Fetcher retrieves the raw telemetry document
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Decoder turns a raw telemetry document into a Snapshot
type Decoder interface {
	Parse(raw []byte) (Snapshot, error)
}

// Snapshot is the pair of readings produced by one successful parse.
type Snapshot struct {
	RotationSpeed      float64
	TemperatureCelsius float64
}
