package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// NewViper reads config.yaml from the working directory or ./config and lets BOOKING_*
// environment variables override any key.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix("BOOKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "BOOKING_SERVICE")
	v.SetDefault("web.port", 8080)
	v.SetDefault("log.level", "DEBUG")
	v.SetDefault("database.driver", "memory")
	v.SetDefault("lock.driver", "local")
	v.SetDefault("notification.driver", "log")
	v.SetDefault("distance.driver", "haversine")
	v.SetDefault("otp.ttl", "15m")
	v.SetDefault("worker.search_radius_km", 10)
	v.SetDefault("kafka.producer.acks", "all")
	v.SetDefault("kafka.producer.idempotent", true)

	if err := v.ReadInConfig(); err != nil {
		var missing viper.ConfigFileNotFoundError
		if !errors.As(err, &missing) {
			return nil, err
		}
	}
	return v, nil
}
