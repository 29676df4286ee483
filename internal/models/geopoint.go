package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidArgument is returned when a coordinate lies outside the valid
// latitude/longitude range or is not a finite number.
var ErrInvalidArgument = errors.New("invalid argument")

// GeoPoint represents a geographical point in degrees.
// Latitude comes first everywhere in this module; use named fields to avoid
// mixing it up with longitude.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`  // Latitude in degrees, [-90, 90].
	Longitude float64 `json:"longitude"` // Longitude in degrees, [-180, 180].
}

// Validate reports whether the point lies within the valid coordinate ranges.
func (p GeoPoint) Validate() error {
	if !isFinite(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidArgument, p.Latitude)
	}
	if !isFinite(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidArgument, p.Longitude)
	}

	return nil
}

// String formats the point as "lat,lon".
func (p GeoPoint) String() string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

// ParseGeoPoint parses a "lat,lon" pair. Non-finite values are rejected but
// ranges are not checked, call Validate for that.
func ParseGeoPoint(s string) (GeoPoint, error) {
	const pairLength = 2

	parts := strings.Split(s, ",")
	if len(parts) != pairLength {
		return GeoPoint{}, fmt.Errorf("%w: expected \"lat,lon\", got %q", ErrInvalidArgument, s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("%w: invalid latitude %q", ErrInvalidArgument, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("%w: invalid longitude %q", ErrInvalidArgument, parts[1])
	}

	if !isFinite(lat) || !isFinite(lon) {
		return GeoPoint{}, fmt.Errorf("%w: coordinates must be finite, got %q", ErrInvalidArgument, s)
	}

	return GeoPoint{Latitude: lat, Longitude: lon}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
