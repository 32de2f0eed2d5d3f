package config

import (
	"booking-service/src/internal/gateway/geo"
	"booking-service/src/internal/usecase"
	"booking-service/src/pkg/log"

	"github.com/spf13/viper"
	"googlemaps.github.io/maps"
)

// NewDistanceCalculator uses Google road distances when distance.driver is google and a
// key is configured, otherwise the great-circle distance.
func NewDistanceCalculator(viper *viper.Viper, log log.Log) (usecase.DistanceCalculator, error) {
	key := viper.GetString("thirdparty.google.api_key")
	if viper.GetString("distance.driver") != "google" || key == "" {
		return geo.Haversine{}, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(key))
	if err != nil {
		return nil, err
	}
	return geo.NewRoadDistance(client, log), nil
}
