// Package geo provides the great-circle distance math behind visit
// verification. Everything here is stateless and safe for concurrent use.
package geo

import (
	"context"
	"math"
	"time"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

const (
	// earthRadiusMeters is the mean Earth radius used by the haversine
	// formula.
	earthRadiusMeters = 6371000.0

	// MetersPerFoot converts the caller-facing threshold unit.
	MetersPerFoot = 0.3048
)

// DistanceMeters returns the great-circle distance between two coordinate
// pairs using the haversine formula.
func DistanceMeters(a, b types.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// WithinFeet reports whether a and b are at most thresholdFeet apart. The
// boundary is inclusive. A nil point means the position is unknown, which
// verifies nothing: the result is false, not an error.
func WithinFeet(a, b *types.GeoPoint, thresholdFeet float64) bool {
	if a == nil || b == nil {
		return false
	}
	return DistanceMeters(*a, *b) <= thresholdFeet*MetersPerFoot
}

// Provider supplies the device's current position. Implementations live
// outside this core (platform bindings, test fakes).
type Provider interface {
	CurrentPosition(ctx context.Context, highAccuracy bool, timeout time.Duration) (*types.GeoPoint, error)
}
