package config

import (
	"fmt"

	kafkaPkgConfluent "booking-service/src/pkg/kafka/confluent"
	"booking-service/src/pkg/log"

	"github.com/spf13/viper"
)

func NewKafkaConfig(viper *viper.Viper) kafkaPkgConfluent.KafkaConfig {
	return kafkaPkgConfluent.KafkaConfig{
		Brokers:   viper.GetString("kafka.bootstrap.servers"),
		ClientID:  viper.GetString("kafka.app.name"),
		Username:  viper.GetString("kafka.username"),
		Password:  viper.GetString("kafka.password"),
		Mechanism: viper.GetString("kafka.sasl.mechanism"),
		CaCert:    viper.GetString("kafka.cacert"),
		Producer: kafkaPkgConfluent.ProducerSettings{
			Acks:              viper.GetString("kafka.producer.acks"),
			Idempotent:        viper.GetBool("kafka.producer.idempotent"),
			RetryBackoff:      viper.GetDuration("kafka.producer.retry_backoff"),
			RequestTimeout:    viper.GetDuration("kafka.producer.request_timeout"),
			ReconnectBackoff:  viper.GetDuration("kafka.producer.reconnect_backoff"),
			ReconnectMaxDelay: viper.GetDuration("kafka.producer.reconnect_backoff_max"),
			Linger:            viper.GetDuration("kafka.producer.linger"),
		},
	}
}

func NewKafkaProducer(config *viper.Viper, log log.Log) (kafkaPkgConfluent.Producer, error) {
	if !config.GetBool("kafka.producer.enabled") {
		log.Info("kafka-config", "Kafka producer is disabled in configuration", "kafka", "")
		return nil, nil
	}
	cfg, err := NewKafkaConfig(config).GetKafkaConfig()
	if err != nil {
		return nil, fmt.Errorf("kafka config: %w", err)
	}
	return kafkaPkgConfluent.NewProducer(cfg, log)
}
