package kafka

import (
	"fmt"

	"booking-service/src/pkg/log"

	k "gopkg.in/confluentinc/confluent-kafka-go.v1/kafka"
)

type producer struct {
	kafka *k.Producer
	log   log.Log
}

func NewProducer(cfg *k.ConfigMap, log log.Log) (Producer, error) {
	p, err := k.NewProducer(cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	kp := &producer{kafka: p, log: log}
	go kp.drainEvents()
	return kp, nil
}

func (p *producer) drainEvents() {
	for e := range p.kafka.Events() {
		if m, ok := e.(*k.Message); ok && m.TopicPartition.Error != nil {
			p.log.Error("kafka-producer", m.TopicPartition.Error.Error(), "delivery", *m.TopicPartition.Topic)
		}
	}
}

func (p *producer) Publish(message *k.Message) error {
	return p.kafka.Produce(message, nil)
}

func (p *producer) Close() {
	p.kafka.Flush(5000)
	p.kafka.Close()
}
