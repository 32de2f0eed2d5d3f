package geo

import (
	"context"
	"errors"
	"fmt"
	"math"

	"booking-service/src/internal/model"
	"booking-service/src/pkg/log"

	"googlemaps.github.io/maps"
)

const earthRadiusKm = 6371.0

// Haversine is the great-circle distance; used when no maps key is configured.
type Haversine struct{}

func (Haversine) Distance(_ context.Context, from, to model.Coordinates) (float64, error) {
	return HaversineKm(from, to), nil
}

func HaversineKm(from, to model.Coordinates) float64 {
	lat1 := radians(from.Latitude)
	lat2 := radians(to.Latitude)
	dLat := lat2 - lat1
	dLon := radians(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceMatrixAPI is the part of *maps.Client used for road distances.
type DistanceMatrixAPI interface {
	DistanceMatrix(ctx context.Context, r *maps.DistanceMatrixRequest) (*maps.DistanceMatrixResponse, error)
}

// RoadDistance asks Google for the driving distance and falls back to the straight line
// when the route cannot be resolved.
type RoadDistance struct {
	Client   DistanceMatrixAPI
	Log      log.Log
	Fallback Haversine
}

func NewRoadDistance(client DistanceMatrixAPI, log log.Log) *RoadDistance {
	return &RoadDistance{Client: client, Log: log}
}

func (d *RoadDistance) Distance(ctx context.Context, from, to model.Coordinates) (float64, error) {
	km, err := d.road(ctx, from, to)
	if err != nil {
		d.Log.Warn("geo", "road distance unavailable, using straight line", "Distance", err.Error())
		return d.Fallback.Distance(ctx, from, to)
	}
	return km, nil
}

func (d *RoadDistance) road(ctx context.Context, from, to model.Coordinates) (float64, error) {
	resp, err := d.Client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{latLng(from)},
		Destinations: []string{latLng(to)},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	})
	if err != nil {
		return 0, fmt.Errorf("distance matrix: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, errors.New("distance matrix: empty response")
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return 0, fmt.Errorf("distance matrix: element status %s", el.Status)
	}
	return float64(el.Distance.Meters) / 1000, nil
}

func latLng(c model.Coordinates) string {
	return fmt.Sprintf("%f,%f", c.Latitude, c.Longitude)
}
