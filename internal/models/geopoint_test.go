package models_test

import (
	"math"
	"testing"

	"github.com/UnknownOlympus/asclepius/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoPoint_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		point   models.GeoPoint
		wantErr bool
	}{
		{name: "origin", point: models.GeoPoint{}},
		{name: "johor bahru", point: models.GeoPoint{Latitude: 1.5451, Longitude: 103.7952}},
		{name: "poles and antimeridian", point: models.GeoPoint{Latitude: -90, Longitude: 180}},
		{name: "latitude too large", point: models.GeoPoint{Latitude: 90.0001}, wantErr: true},
		{name: "longitude too small", point: models.GeoPoint{Longitude: -200}, wantErr: true},
		{name: "swapped pair", point: models.GeoPoint{Latitude: 101.6869, Longitude: 3.139}, wantErr: true},
		{name: "nan latitude", point: models.GeoPoint{Latitude: math.NaN()}, wantErr: true},
		{name: "infinite longitude", point: models.GeoPoint{Longitude: math.Inf(1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.point.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseGeoPoint(t *testing.T) {
	t.Parallel()

	t.Run("valid pair", func(t *testing.T) {
		t.Parallel()
		p, err := models.ParseGeoPoint("3.1390, 101.6869")

		require.NoError(t, err)
		assert.InEpsilon(t, 3.139, p.Latitude, 1e-12)
		assert.InEpsilon(t, 101.6869, p.Longitude, 1e-12)
	})

	t.Run("round trip through String", func(t *testing.T) {
		t.Parallel()
		want := models.GeoPoint{Latitude: -6.2, Longitude: 106.816}

		got, err := models.ParseGeoPoint(want.String())

		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, "-6.2,106.816", want.String())
	})

	t.Run("missing longitude", func(t *testing.T) {
		t.Parallel()
		_, err := models.ParseGeoPoint("3.1390")

		require.ErrorIs(t, err, models.ErrInvalidArgument)
	})

	t.Run("non-finite value", func(t *testing.T) {
		t.Parallel()
		_, err := models.ParseGeoPoint("NaN,101.6869")

		require.ErrorIs(t, err, models.ErrInvalidArgument)
		assert.ErrorContains(t, err, "finite")
	})

	t.Run("not a number", func(t *testing.T) {
		t.Parallel()
		_, err := models.ParseGeoPoint("north,101.6869")

		require.ErrorIs(t, err, models.ErrInvalidArgument)
		assert.ErrorContains(t, err, "invalid latitude")
	})
}

func TestClinicSeed_WithLocation(t *testing.T) {
	t.Parallel()
	seed := models.ClinicSeed{Name: "Hospital Permai", Address: "Persiaran Kempas Baru"}
	require.False(t, seed.HasLocation())

	located := seed.WithLocation(models.GeoPoint{Latitude: 1.5225, Longitude: 103.7027})

	require.True(t, located.HasLocation())
	assert.Equal(t, models.GeoPoint{Latitude: 1.5225, Longitude: 103.7027}, located.Point())
	assert.False(t, seed.HasLocation(), "original seed must stay untouched")
}
