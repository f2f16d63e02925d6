package gps

import "context"

// Position represents a resolved device fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Provider interface defines the methods for positioning providers.
type Provider interface {
	GetPosition(ctx context.Context) (Position, error)
	Close() error
}
