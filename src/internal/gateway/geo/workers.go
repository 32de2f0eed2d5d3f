package geo

import (
	"context"
	"errors"
	"fmt"

	"booking-service/src/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	WorkerLocationsKey = "workers-locations"
	defaultRadiusKm    = 10.0
	defaultLimit       = 20
)

// GeoStore is the subset of redis.UniversalClient the worker index needs.
type GeoStore interface {
	GeoAdd(ctx context.Context, key string, geoLocation ...*redis.GeoLocation) *redis.IntCmd
	GeoPos(ctx context.Context, key string, members ...string) *redis.GeoPosCmd
	GeoRadius(ctx context.Context, key string, longitude, latitude float64, query *redis.GeoRadiusQuery) *redis.GeoLocationCmd
	SIsMember(ctx context.Context, key string, member interface{}) *redis.BoolCmd
}

// WorkerIndex keeps worker positions in a Redis GEO set and answers proximity searches.
// Category membership lives in plain sets keyed by category id.
type WorkerIndex struct {
	Store    GeoStore
	RadiusKm float64
}

func NewWorkerIndex(store GeoStore, radiusKm float64) *WorkerIndex {
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}
	return &WorkerIndex{Store: store, RadiusKm: radiusKm}
}

func CategoryKey(categoryID string) string {
	return "workers:category:" + categoryID
}

func (w *WorkerIndex) UpdateLocation(ctx context.Context, workerID string, at model.Coordinates) error {
	return w.Store.GeoAdd(ctx, WorkerLocationsKey, &redis.GeoLocation{
		Name:      workerID,
		Longitude: at.Longitude,
		Latitude:  at.Latitude,
	}).Err()
}

func (w *WorkerIndex) Locate(ctx context.Context, workerID string) (*model.Coordinates, error) {
	pos, err := w.Store.GeoPos(ctx, WorkerLocationsKey, workerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("locate worker %s: %w", workerID, err)
	}
	if len(pos) == 0 || pos[0] == nil {
		return nil, nil
	}
	return &model.Coordinates{Latitude: pos[0].Latitude, Longitude: pos[0].Longitude}, nil
}

// FindAssignable lists workers near the booking address, closest first.
func (w *WorkerIndex) FindAssignable(ctx context.Context, search model.WorkerSearch) ([]model.AssignableWorker, error) {
	limit := search.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	found, err := w.Store.GeoRadius(ctx, WorkerLocationsKey, search.Location.Longitude, search.Location.Latitude, &redis.GeoRadiusQuery{
		Radius:   w.RadiusKm,
		Unit:     "km",
		WithDist: true,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("search workers: %w", err)
	}

	out := make([]model.AssignableWorker, 0, len(found))
	for _, loc := range found {
		if search.CategoryID != "" {
			ok, err := w.Store.SIsMember(ctx, CategoryKey(search.CategoryID), loc.Name).Result()
			if err != nil {
				return nil, fmt.Errorf("check worker category: %w", err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, model.AssignableWorker{WorkerID: loc.Name, DistanceKm: loc.Dist})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
