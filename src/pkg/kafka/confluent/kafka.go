package kafka

import (
	"encoding/base64"
	"time"

	k "gopkg.in/confluentinc/confluent-kafka-go.v1/kafka"
)

type Producer interface {
	Publish(message *k.Message) error
	Close()
}

// ProducerSettings tunes delivery guarantees. Empty Acks and zero durations fall back to
// DefaultProducerSettings.
type ProducerSettings struct {
	Acks              string
	Idempotent        bool
	RetryBackoff      time.Duration
	RequestTimeout    time.Duration
	ReconnectBackoff  time.Duration
	ReconnectMaxDelay time.Duration
	Linger            time.Duration
}

func DefaultProducerSettings() ProducerSettings {
	return ProducerSettings{
		Acks:              "all",
		Idempotent:        true,
		RetryBackoff:      500 * time.Millisecond,
		RequestTimeout:    5 * time.Second,
		ReconnectBackoff:  200 * time.Millisecond,
		ReconnectMaxDelay: 5 * time.Second,
	}
}

func (s ProducerSettings) withDefaults() ProducerSettings {
	d := DefaultProducerSettings()
	if s.Acks == "" {
		s.Acks = d.Acks
	}
	if s.RetryBackoff <= 0 {
		s.RetryBackoff = d.RetryBackoff
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = d.RequestTimeout
	}
	if s.ReconnectBackoff <= 0 {
		s.ReconnectBackoff = d.ReconnectBackoff
	}
	if s.ReconnectMaxDelay <= 0 {
		s.ReconnectMaxDelay = d.ReconnectMaxDelay
	}
	return s
}

type KafkaConfig struct {
	Brokers   string
	ClientID  string
	Username  string
	Password  string
	Mechanism string
	CaCert    string
	Producer  ProducerSettings
}

// SASL reports whether the brokers need authenticated TLS.
func (kc KafkaConfig) SASL() bool { return kc.Username != "" }

func decodeKey(secret string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// GetKafkaConfig builds the librdkafka producer map. Idempotence forces acks=all.
func (kc KafkaConfig) GetKafkaConfig() (*k.ConfigMap, error) {
	p := kc.Producer.withDefaults()
	cfg := k.ConfigMap{
		"bootstrap.servers":        kc.Brokers,
		"client.id":                kc.ClientID,
		"acks":                     p.Acks,
		"enable.idempotence":       p.Idempotent,
		"retry.backoff.ms":         int(p.RetryBackoff.Milliseconds()),
		"request.timeout.ms":       int(p.RequestTimeout.Milliseconds()),
		"reconnect.backoff.ms":     int(p.ReconnectBackoff.Milliseconds()),
		"reconnect.backoff.max.ms": int(p.ReconnectMaxDelay.Milliseconds()),
	}
	if p.Idempotent {
		cfg["acks"] = "all"
	}
	if p.Linger > 0 {
		cfg["linger.ms"] = int(p.Linger.Milliseconds())
	}
	if kc.SASL() {
		ca, err := decodeKey(kc.CaCert)
		if err != nil {
			return nil, err
		}
		mechanism := kc.Mechanism
		if mechanism == "" {
			mechanism = "PLAIN"
		}
		cfg["sasl.mechanism"] = mechanism
		cfg["sasl.username"] = kc.Username
		cfg["sasl.password"] = kc.Password
		cfg["ssl.ca.pem"] = ca
		cfg["security.protocol"] = "sasl_ssl"
	}
	return &cfg, nil
}
