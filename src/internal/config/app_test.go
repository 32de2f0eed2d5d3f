package config

import (
	"context"
	"testing"

	"booking-service/src/internal/gateway/messaging"
	"booking-service/src/pkg/lock"
	"booking-service/src/pkg/log"

	"github.com/hibiken/asynq"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	k "gopkg.in/confluentinc/confluent-kafka-go.v1/kafka"
)

type nopProducer struct{}

func (nopProducer) Publish(*k.Message) error { return nil }
func (nopProducer) Close()                   {}

func TestNewNotifierSelection(t *testing.T) {
	v := viper.New()
	cfg := &BootstrapConfig{Config: v, Log: log.Discard()}

	v.Set("notification.driver", "log")
	cfg.Producer = nopProducer{}
	publish, deliver := NewNotifier(cfg)
	assert.IsType(t, messaging.LogDispatcher{}, publish)
	assert.IsType(t, messaging.LogDispatcher{}, deliver)

	v.Set("notification.driver", "kafka")
	publish, _ = NewNotifier(cfg)
	assert.IsType(t, &messaging.NotificationProducer{}, publish)

	v.Set("notification.driver", "asynq")
	cfg.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{Addr: "127.0.0.1:0"})
	defer cfg.AsynqClient.Close()
	publish, deliver = NewNotifier(cfg)
	assert.IsType(t, &messaging.AsynqDispatcher{}, publish)
	assert.IsType(t, &messaging.NotificationProducer{}, deliver)
}

func TestNewLockerFallsBackToLocal(t *testing.T) {
	v := viper.New()
	v.Set("lock.driver", "redis")
	assert.IsType(t, &lock.Local{}, NewLocker(&BootstrapConfig{Config: v}))
}

func TestNewViperDefaults(t *testing.T) {
	t.Setenv("BOOKING_WEB_PORT", "9090")
	v, err := NewViper("")
	assert.NoError(t, err)
	assert.Equal(t, 9090, v.GetInt("web.port"))
	assert.Equal(t, "memory", v.GetString("database.driver"))
}

func TestNewRepositoriesSeedsMemoryStore(t *testing.T) {
	v := viper.New()
	v.Set("database.driver", "memory")
	v.Set("database.memory.services", []map[string]interface{}{
		{"id": "svc-clean", "name": "Deep Cleaning", "category_id": "cleaning", "base_price": 1000},
	})
	v.Set("database.memory.fees.platform_fee", 49)
	v.Set("database.memory.fees.travel_charge_per_km", 10)

	repos, err := NewRepositories(context.Background(), v, log.Discard())
	require.NoError(t, err)
	svc, err := repos.Services.FindByID(context.Background(), "svc-clean")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, svc.BasePrice)
	fees, err := repos.Configs.FeeConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 49.0, fees.PlatformFee)
	assert.True(t, fees.IsActive)

	v.Set("database.driver", "sqlite")
	_, err = NewRepositories(context.Background(), v, log.Discard())
	assert.Error(t, err)
}

func TestNewKafkaConfigReadsProducerSettings(t *testing.T) {
	t.Setenv("BOOKING_KAFKA_PRODUCER_LINGER", "10ms")
	v, err := NewViper("")
	require.NoError(t, err)
	v.Set("kafka.bootstrap.servers", "broker:9092")
	v.Set("kafka.producer.request_timeout", "3s")

	cfg, err := NewKafkaConfig(v).GetKafkaConfig()
	require.NoError(t, err)
	m := *cfg
	assert.Equal(t, "broker:9092", m["bootstrap.servers"])
	assert.Equal(t, "all", m["acks"])
	assert.Equal(t, true, m["enable.idempotence"])
	assert.Equal(t, 3000, m["request.timeout.ms"])
	assert.Equal(t, 10, m["linger.ms"])
}
