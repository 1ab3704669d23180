// Package location resolves device coordinates to a city name and watches
// for movement between cities.
package location

import (
	"context"
	"errors"
)

// ErrPermissionDenied signals that the coordinate source refused access.
// Callers fall back to the location-independent path instead of failing.
var ErrPermissionDenied = errors.New("location permission denied")

// Coordinates is one position fix. Bearing is degrees clockwise from north.
type Coordinates struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Bearing float64 `json:"bearing"`
}

// Provider supplies the current position. Implementations return
// ErrPermissionDenied when access to the coordinate source is refused.
type Provider interface {
	Current(ctx context.Context) (Coordinates, error)
}

// Geocoder resolves coordinates to a city name.
type Geocoder interface {
	ReverseCity(ctx context.Context, lat, lon float64) (string, error)
}

// StaticProvider always reports the same fixed position. It backs the
// configured-location mode where no live coordinate source exists.
type StaticProvider struct {
	Position Coordinates
}

func (p StaticProvider) Current(ctx context.Context) (Coordinates, error) {
	return p.Position, nil
}

// DeniedProvider refuses every request. It models a host without a
// coordinate source and exercises the fallback path.
type DeniedProvider struct{}

func (DeniedProvider) Current(ctx context.Context) (Coordinates, error) {
	return Coordinates{}, ErrPermissionDenied
}
