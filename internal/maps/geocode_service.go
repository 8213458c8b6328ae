// README: Google Maps geocoding client for meeting points.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"carpool/internal/types"
)

// GeocodeService resolves meeting-point descriptions through the Google
// Geocoding API.
type GeocodeService struct {
	client *maps.Client
	region string
}

// NewGeocodeService creates a new GeocodeService with the given API key.
// region biases results ("it" for Italy); empty means no bias.
func NewGeocodeService(apiKey, region string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client, region: region}, nil
}

// Geocode returns the coordinates of the best match for the query.
func (s *GeocodeService) Geocode(ctx context.Context, query string) (types.Point, error) {
	r := &maps.GeocodingRequest{
		Address: query,
		Region:  s.region,
	}
	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		return types.Point{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, fmt.Errorf("no match for %q", query)
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
