package service

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/UnknownOlympus/asclepius/internal/geo"
	"github.com/UnknownOlympus/asclepius/internal/models"
)

// RankedClinic is a clinic together with its distance from a query point.
type RankedClinic struct {
	models.Clinic
	DistanceKm float64 `json:"distance_km"`
}

// Locator answers proximity queries over a fixed set of clinics.
// It is read-only after construction and safe for concurrent use.
type Locator struct {
	clinics []models.Clinic
}

// NewLocator copies clinics into a new Locator.
func NewLocator(clinics []models.Clinic) *Locator {
	return &Locator{clinics: slices.Clone(clinics)}
}

// Len returns the number of clinics known to the locator.
func (l *Locator) Len() int {
	return len(l.clinics)
}

// Nearest returns clinics ordered by distance from at, closest first.
// A limit of zero or less returns every match; a radius of zero or less disables the radius filter.
// Clinics at equal distance keep their original order.
func (l *Locator) Nearest(at models.GeoPoint, limit int, radiusKm float64) ([]RankedClinic, error) {
	if err := at.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query point: %w", err)
	}

	ranked := make([]RankedClinic, 0, len(l.clinics))
	for _, clinic := range l.clinics {
		d := geo.Distance(at, clinic.Point())
		if radiusKm > 0 && d > radiusKm {
			continue
		}
		ranked = append(ranked, RankedClinic{Clinic: clinic, DistanceKm: d})
	}

	slices.SortStableFunc(ranked, func(a, b RankedClinic) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked, nil
}
