package gps

import (
	"context"
	"time"

	"googlemaps.github.io/maps"
)

// GoogleGeolocationProvider resolves fixes through the Google Maps
// Geolocation API. Used on devices without a GPS sensor, where an
// IP-derived fix is better than none.
type GoogleGeolocationProvider struct {
	client  *maps.Client
	timeout time.Duration
}

// NewGoogleGeolocationProvider creates a new GoogleGeolocationProvider instance.
func NewGoogleGeolocationProvider(apiKey string, timeout time.Duration) (*GoogleGeolocationProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GoogleGeolocationProvider{
		client:  c,
		timeout: timeout,
	}, nil
}

// GetPosition retrieves the device's position using the Geolocation API.
func (g *GoogleGeolocationProvider) GetPosition(ctx context.Context) (Position, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := &maps.GeolocationRequest{
		ConsiderIP: true,
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return Position{}, err
	}

	return Position{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
	}, nil
}

// Close is a no-op; the maps client holds no persistent resources.
func (g *GoogleGeolocationProvider) Close() error {
	return nil
}
