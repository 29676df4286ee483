package geocoding

import (
	"context"

	"github.com/UnknownOlympus/asclepius/internal/models"
)

// Provider resolves a clinic address to the coordinates of the best match.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.GeoPoint, error)
}
