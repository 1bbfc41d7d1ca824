// Package capture models the device capabilities a reporter uses before
// submission: one-shot geolocation, camera sessions with torch control, and
// the file-picker path. Providers have an explicit acquire/release lifecycle
// and never retry on their own; a failure is surfaced once and the caller
// decides whether to try again.
package capture

import (
	"context"
	"errors"
	"time"

	"littertrack/image"
	"littertrack/models"
)

// ErrNoFix is returned when a position cannot be resolved.
var ErrNoFix = errors.New("location unavailable")

// Fix is the result of a successful position acquisition.
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters, 0 when unknown
	Timestamp time.Time
}

// LocationProvider resolves the device position once per Acquire call.
type LocationProvider interface {
	Acquire(ctx context.Context) (*Fix, error)
	Release()
}

// StaticProvider serves a fixed position, e.g. from flags or a config file.
type StaticProvider struct {
	Lat float64
	Lon float64
}

func (p *StaticProvider) Acquire(ctx context.Context) (*Fix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !models.ValidCoordinates(p.Lat, p.Lon) {
		return nil, ErrNoFix
	}
	return &Fix{Latitude: p.Lat, Longitude: p.Lon, Timestamp: time.Now()}, nil
}

func (p *StaticProvider) Release() {}

// ExifProvider resolves the position from the GPS tags of a captured photo,
// used as a fallback when no live position is available.
type ExifProvider struct {
	Payload string // data-URL image payload
}

func (p *ExifProvider) Acquire(ctx context.Context) (*Fix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, data, err := image.DecodeDataURL(p.Payload)
	if err != nil {
		return nil, errors.Join(ErrNoFix, err)
	}
	lat, lon, err := image.GPS(data)
	if err != nil {
		return nil, errors.Join(ErrNoFix, err)
	}
	if !models.ValidCoordinates(lat, lon) {
		return nil, ErrNoFix
	}
	return &Fix{Latitude: lat, Longitude: lon, Timestamp: time.Now()}, nil
}

func (p *ExifProvider) Release() {}
