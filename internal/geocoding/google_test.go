package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/asclepius/internal/geocoding"
	"github.com/UnknownOlympus/asclepius/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleProvider_Geocode(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, "my", "en", slog.Default())
	ctx := t.Context()
	address := "Jalan Salleh, 84000 Muar"
	req := &maps.GeocodingRequest{Address: address, Region: "my", Language: "en"}

	t.Run("api returns error", func(t *testing.T) {
		mockClient.On("Geocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Geocode(ctx, address)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("api return empty response", func(t *testing.T) {
		mockClient.On("Geocode", ctx, req).Return(nil, nil).Once()

		point, err := provider.Geocode(ctx, address)

		require.Nil(t, point)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
		mockClient.AssertExpectations(t)
	})

	t.Run("successful geocoding", func(t *testing.T) {
		mockResponse := []maps.GeocodingResult{
			{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 2.0435, Lng: 102.5694}}},
			{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 2.05, Lng: 102.57}}},
		}
		mockClient.On("Geocode", ctx, req).Return(mockResponse, nil).Once()

		point, err := provider.Geocode(ctx, address)

		require.NoError(t, err)
		require.NotNil(t, point)
		assert.InEpsilon(t, 2.0435, point.Latitude, 1e-9)
		assert.InEpsilon(t, 102.5694, point.Longitude, 1e-9)
		mockClient.AssertExpectations(t)
	})
}
