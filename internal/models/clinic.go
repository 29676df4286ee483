package models

import (
	"time"

	"github.com/google/uuid"
)

// ClinicSeed is a single entry of a clinic data file.
// Coordinates are optional; entries without them are geocoded by address.
type ClinicSeed struct {
	Name       string   `json:"name"        yaml:"name"        validate:"required"`
	Address    string   `json:"address"     yaml:"address"     validate:"required"`
	Latitude   *float64 `json:"latitude"    yaml:"latitude"    validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude"   yaml:"longitude"   validate:"omitempty,gte=-180,lte=180"`
	Type       string   `json:"type"        yaml:"type"        validate:"required"`
	IsVerified bool     `json:"is_verified" yaml:"is_verified"`
}

// HasLocation reports whether both coordinates are present.
func (s ClinicSeed) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Point returns the seed coordinates. It must only be called when HasLocation is true.
func (s ClinicSeed) Point() GeoPoint {
	return GeoPoint{Latitude: *s.Latitude, Longitude: *s.Longitude}
}

// WithLocation returns a copy of the seed with the given coordinates.
func (s ClinicSeed) WithLocation(p GeoPoint) ClinicSeed {
	lat, lon := p.Latitude, p.Longitude
	s.Latitude = &lat
	s.Longitude = &lon

	return s
}

// Clinic is the record stored in the remote clinics table.
type Clinic struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Type      string    `json:"type"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Point returns the clinic location.
func (c Clinic) Point() GeoPoint {
	return GeoPoint{Latitude: c.Latitude, Longitude: c.Longitude}
}
