package config

import (
	"context"

	redisModule "booking-service/src/pkg/redis"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

func redisConfig(viper *viper.Viper) redisModule.CfgRedis {
	return redisModule.CfgRedis{
		UseCluster:           viper.GetString("redis.use_cluster") == "true",
		EnableTLS:            viper.GetBool("redis.tls"),
		RedisHost:            viper.GetString("redis.host"),
		RedisPort:            viper.GetString("redis.port"),
		RedisPassword:        viper.GetString("redis.password"),
		RedisDB:              viper.GetInt("redis.db"),
		RedisClusterNode:     viper.GetString("redis.cluster.node"),
		RedisClusterPassword: viper.GetString("redis.cluster.password"),
	}
}

// NewRedis returns nil when redis.enabled is false; callers fall back to in-process
// implementations.
func NewRedis(ctx context.Context, viper *viper.Viper) (redis.UniversalClient, error) {
	if !viper.GetBool("redis.enabled") {
		return nil, nil
	}
	return redisModule.NewClient(ctx, redisConfig(viper))
}
