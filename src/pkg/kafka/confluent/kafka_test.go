package kafka

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKafkaConfigDefaults(t *testing.T) {
	cfg, err := KafkaConfig{Brokers: "localhost:9092", ClientID: "booking"}.GetKafkaConfig()
	require.NoError(t, err)

	m := *cfg
	assert.Equal(t, "localhost:9092", m["bootstrap.servers"])
	assert.Equal(t, "booking", m["client.id"])
	assert.Equal(t, "all", m["acks"])
	assert.Equal(t, false, m["enable.idempotence"])
	assert.Equal(t, 500, m["retry.backoff.ms"])
	assert.Equal(t, 5000, m["request.timeout.ms"])
	assert.NotContains(t, m, "linger.ms")
	assert.NotContains(t, m, "sasl.username")
}

func TestGetKafkaConfigAppliesProducerSettings(t *testing.T) {
	cfg, err := KafkaConfig{
		Brokers: "b:9092",
		Producer: ProducerSettings{
			Acks:           "1",
			RetryBackoff:   time.Second,
			RequestTimeout: 2 * time.Second,
			Linger:         5 * time.Millisecond,
		},
	}.GetKafkaConfig()
	require.NoError(t, err)

	m := *cfg
	assert.Equal(t, "1", m["acks"])
	assert.Equal(t, 1000, m["retry.backoff.ms"])
	assert.Equal(t, 2000, m["request.timeout.ms"])
	assert.Equal(t, 200, m["reconnect.backoff.ms"])
	assert.Equal(t, 5, m["linger.ms"])
}

func TestGetKafkaConfigIdempotenceForcesAcksAll(t *testing.T) {
	cfg, err := KafkaConfig{Producer: ProducerSettings{Acks: "1", Idempotent: true}}.GetKafkaConfig()
	require.NoError(t, err)
	assert.Equal(t, "all", (*cfg)["acks"])
	assert.Equal(t, true, (*cfg)["enable.idempotence"])
}

func TestGetKafkaConfigSASL(t *testing.T) {
	cfg, err := KafkaConfig{
		Username: "svc",
		Password: "pw",
		CaCert:   base64.StdEncoding.EncodeToString([]byte("PEM")),
	}.GetKafkaConfig()
	require.NoError(t, err)
	m := *cfg
	assert.Equal(t, "PLAIN", m["sasl.mechanism"])
	assert.Equal(t, "PEM", m["ssl.ca.pem"])
	assert.Equal(t, "sasl_ssl", m["security.protocol"])

	_, err = KafkaConfig{Username: "svc", CaCert: "%%%"}.GetKafkaConfig()
	assert.Error(t, err)
}
