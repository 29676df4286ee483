// Package geo computes great-circle distances on a spherical Earth.
package geo

import (
	"fmt"
	"math"

	"github.com/UnknownOlympus/asclepius/internal/models"
)

const (
	// EarthRadiusKm is the radius of the modeled sphere in kilometers.
	EarthRadiusKm = 6371
	// MaxDistanceKm is the largest possible distance on the sphere (half its circumference).
	MaxDistanceKm = math.Pi * EarthRadiusKm

	degToRad = math.Pi / 180
)

// ErrInvalidArgument is returned by ValidatedDistance for out-of-range coordinates.
var ErrInvalidArgument = models.ErrInvalidArgument

// DistanceKm returns the haversine distance in kilometers between
// (lat1, lon1) and (lat2, lon2), all in degrees.
//
// The arguments are strictly positional: latitude first, then longitude, for
// the start point and then the end point. Passing (lon, lat) pairs is not
// detected and yields a plausible but wrong distance. Prefer Distance, which
// takes named GeoPoint fields.
//
// Inputs are not range checked. Out-of-range values still produce a finite,
// non-negative result that carries no geographic meaning.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	// Deltas are taken from the degree values before either latitude is converted.
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	lat1Rad := lat1 * degToRad
	lat2Rad := lat2 * degToRad

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + sinLon*sinLon*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	// Rounding, or latitudes beyond the poles, can push a slightly outside [0, 1].
	a = math.Max(0, math.Min(1, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Distance returns the great-circle distance in kilometers between two points.
func Distance(from, to models.GeoPoint) float64 {
	return DistanceKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}

// ValidatedDistance behaves like Distance but rejects coordinates outside
// latitude [-90, 90] or longitude [-180, 180].
func ValidatedDistance(from, to models.GeoPoint) (float64, error) {
	if err := from.Validate(); err != nil {
		return 0, fmt.Errorf("invalid start point: %w", err)
	}
	if err := to.Validate(); err != nil {
		return 0, fmt.Errorf("invalid end point: %w", err)
	}

	return Distance(from, to), nil
}
